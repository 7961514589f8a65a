package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/tgrbin/relay/internal/domain"
	"github.com/tgrbin/relay/internal/errs"
	"github.com/tgrbin/relay/internal/repository"
	"github.com/tgrbin/relay/internal/storage"
)

// sniffLen bounds how much of the upload is buffered for type detection.
const sniffLen = 3072

type AttachmentService struct {
	attachmentRepo repository.AttachmentRepository
	store          storage.Store
}

func NewAttachmentService(attachmentRepo repository.AttachmentRepository, store storage.Store) *AttachmentService {
	return &AttachmentService{attachmentRepo: attachmentRepo, store: store}
}

// Upload stores the bytes behind the gateway and records the metadata. The
// storage key is the attachment id; bytes go in first so a failed upload
// leaves no dangling metadata row.
func (s *AttachmentService) Upload(ctx context.Context, fileName, contentType string, r io.Reader, size int64) (*domain.Attachment, error) {
	if contentType == "" {
		var err error
		contentType, r, err = sniffContentType(r)
		if err != nil {
			return nil, fmt.Errorf("detecting content type: %w", err)
		}
	}

	att := &domain.Attachment{
		ID:          uuid.New(),
		FileName:    fileName,
		Size:        size,
		ContentType: contentType,
		CreatedAt:   time.Now(),
	}
	att.StorageKey = att.ID.String()

	if err := s.store.Put(ctx, att.StorageKey, r, size, contentType); err != nil {
		return nil, err
	}
	if err := s.attachmentRepo.Create(ctx, att); err != nil {
		return nil, fmt.Errorf("recording attachment: %w", err)
	}
	return att, nil
}

func (s *AttachmentService) Get(ctx context.Context, id uuid.UUID) (*domain.Attachment, error) {
	att, err := s.attachmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if att == nil {
		return nil, errs.NotFound("attachment", id.String())
	}
	return att, nil
}

// Open returns the raw byte stream, backend-agnostic.
func (s *AttachmentService) Open(ctx context.Context, id uuid.UUID) (*domain.Attachment, io.ReadCloser, error) {
	att, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.store.Get(ctx, att.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	return att, rc, nil
}

// ServeDownload delegates delivery to the active backend: direct stream for
// local disk, presigned redirect for the object store.
func (s *AttachmentService) ServeDownload(w http.ResponseWriter, r *http.Request, id uuid.UUID) error {
	att, err := s.Get(r.Context(), id)
	if err != nil {
		return err
	}
	return s.store.ServeDownload(w, r, att)
}

// Delete removes an orphan attachment. Attachments referenced by a message
// go away with the message, not through this path.
func (s *AttachmentService) Delete(ctx context.Context, id uuid.UUID) error {
	att, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if att.MessageID != nil {
		return errs.Forbidden("attachment is referenced by a message")
	}
	return s.attachmentRepo.Delete(ctx, id)
}

// sniffContentType detects the content type from the stream head and returns
// a reader that replays the consumed bytes.
func sniffContentType(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, err
	}
	head = head[:n]

	mt := mimetype.Detect(head)
	return mt.String(), io.MultiReader(bytes.NewReader(head), r), nil
}
