package storage

import (
	"context"
	"io"
	"net/http"

	"github.com/tgrbin/relay/internal/domain"
)

// Store is the attachment byte gateway. Exactly one implementation is active
// per deployment; callers never branch on the backend.
type Store interface {
	// Put stores bytes under the given key. Whether an existing key is a
	// conflict is backend-defined: local disk is write-once, the object
	// store overwrites (its keys are caller-generated and globally unique).
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Get opens the stored bytes for reading.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// ServeDownload delivers the attachment to an HTTP client: the local
	// backend streams bytes directly, the object-store backend redirects to
	// a time-bounded presigned URL.
	ServeDownload(w http.ResponseWriter, r *http.Request, att *domain.Attachment) error
}
