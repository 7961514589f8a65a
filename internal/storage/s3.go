package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/tgrbin/relay/internal/domain"
	"github.com/tgrbin/relay/internal/errs"
)

// extByContentType maps image content types to a download extension for
// keys stored without one.
var extByContentType = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
}

const defaultExt = "jpg"

// S3Store keeps attachment bytes in an S3-compatible bucket. Downloads are
// not proxied: the client is redirected to a presigned URL so the object
// store carries the bandwidth.
type S3Store struct {
	client        *minio.Client
	bucket        string
	presignExpiry time.Duration
}

func NewS3Store(client *minio.Client, bucket string, presignExpiry time.Duration) *S3Store {
	return &S3Store{client: client, bucket: bucket, presignExpiry: presignExpiry}
}

// Put uploads under key. Overwrite is allowed: keys are caller-generated
// UUIDs, so a repeated put for the same key is the same object.
func (s *S3Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return errs.StorageUnavailable(err)
	}
	return nil
}

func (s *S3Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errs.StorageUnavailable(err)
	}
	// GetObject is lazy; Stat surfaces a missing key before the caller reads.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, errs.NotFound("attachment", key)
		}
		return nil, errs.StorageUnavailable(err)
	}
	return obj, nil
}

// ServeDownload issues a time-bounded presigned URL and redirects to it.
func (s *S3Store) ServeDownload(w http.ResponseWriter, r *http.Request, att *domain.Attachment) error {
	params := make(url.Values)
	params.Set("response-content-disposition",
		fmt.Sprintf("attachment; filename=%q", downloadName(att)))
	params.Set("response-content-type", att.ContentType)

	signed, err := s.client.PresignedGetObject(r.Context(), s.bucket, att.StorageKey, s.presignExpiry, params)
	if err != nil {
		return errs.StorageUnavailable(err)
	}

	http.Redirect(w, r, signed.String(), http.StatusFound)
	return nil
}

// downloadName picks the client-facing filename, appending an extension
// inferred from the content type when there is none.
func downloadName(att *domain.Attachment) string {
	name := att.FileName
	if name == "" {
		name = att.StorageKey
	}
	if filepath.Ext(name) != "" {
		return name
	}
	ext, ok := extByContentType[att.ContentType]
	if !ok {
		ext = defaultExt
	}
	return name + "." + ext
}
