package domain

import (
	"time"

	"github.com/google/uuid"
)

// Membership is the per (user, channel) read marker. For private channels
// the existence of this row is also the membership proof, so the pair is
// unique at the store level.
type Membership struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	ChannelID  uuid.UUID `json:"channel_id"`
	LastReadAt time.Time `json:"last_read_at"`
}
