package domain

import (
	"time"

	"github.com/google/uuid"
)

// OnlineWindow is how recent the last activity must be for a user to count
// as online.
const OnlineWindow = 300 * time.Second

type Presence struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	LastActiveAt time.Time `json:"last_active_at"`
}

// IsOnline derives online state from the last activity timestamp. The
// boundary is exclusive: exactly OnlineWindow ago is offline.
func IsOnline(lastActiveAt, now time.Time) bool {
	return now.Sub(lastActiveAt) < OnlineWindow
}

func (p *Presence) Online(now time.Time) bool {
	return IsOnline(p.LastActiveAt, now)
}
