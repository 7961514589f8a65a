package domain

import (
	"time"

	"github.com/google/uuid"
)

type ChannelType string

const (
	ChannelPublic  ChannelType = "public"
	ChannelPrivate ChannelType = "private"
)

// Channel type is fixed at creation. Private channels carry no name or
// description; visibility for them is derived from membership records.
type Channel struct {
	ID          uuid.UUID   `json:"id"`
	Type        ChannelType `json:"type"`
	Name        *string     `json:"name,omitempty"`
	Description *string     `json:"description,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

func (c *Channel) IsPrivate() bool {
	return c.Type == ChannelPrivate
}
