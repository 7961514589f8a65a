package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/tgrbin/relay/internal/domain"
	"github.com/tgrbin/relay/internal/errs"
)

// LocalStore keeps attachment bytes as flat files under a root directory,
// one file per key. Writes are write-once: a second put under the same key
// is a conflict, never a silent overwrite.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	f, err := os.OpenFile(s.path(key), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return errs.StorageConflict(key)
		}
		return errs.StorageUnavailable(err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(s.path(key))
		return errs.StorageUnavailable(err)
	}
	if err := f.Close(); err != nil {
		return errs.StorageUnavailable(err)
	}
	return nil
}

func (s *LocalStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.NotFound("attachment", key)
		}
		return nil, errs.StorageUnavailable(err)
	}
	return f, nil
}

// ServeDownload streams the file directly with headers derived from the
// attachment metadata.
func (s *LocalStore) ServeDownload(w http.ResponseWriter, r *http.Request, att *domain.Attachment) error {
	f, err := s.Get(r.Context(), att.StorageKey)
	if err != nil {
		return err
	}
	defer f.Close()

	w.Header().Set("Content-Type", att.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.FileName))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", att.Size))
	_, err = io.Copy(w, f)
	return err
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.root, filepath.Base(key))
}
