package domain

import (
	"time"

	"github.com/google/uuid"
)

// Attachment is file metadata only; bytes live behind the storage gateway
// under StorageKey. Immutable after creation.
type Attachment struct {
	ID          uuid.UUID  `json:"id"`
	MessageID   *uuid.UUID `json:"message_id,omitempty"`
	FileName    string     `json:"file_name"`
	Size        int64      `json:"size"`
	ContentType string     `json:"content_type"`
	StorageKey  string     `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
}
