package domain

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID        uuid.UUID  `json:"id"`
	ChannelID uuid.UUID  `json:"channel_id"`
	AuthorID  uuid.UUID  `json:"author_id"`
	Content   string     `json:"content"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	// Joined fields
	Author      Author       `json:"author"`
	Attachments []Attachment `json:"attachments"`
}

// Author is the minimal sender projection joined onto feed messages.
// Online is computed from the presence record, never stored.
type Author struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Online      bool      `json:"online"`
}

// MessagePage is one slice of a channel feed, newest first. NextCursor is
// the created_at of the oldest returned message, nil once the feed is
// exhausted.
type MessagePage struct {
	Messages   []Message  `json:"messages"`
	HasNext    bool       `json:"has_next"`
	NextCursor *time.Time `json:"next_cursor,omitempty"`
}
