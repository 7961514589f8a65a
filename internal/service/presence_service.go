package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tgrbin/relay/internal/domain"
	"github.com/tgrbin/relay/internal/errs"
	"github.com/tgrbin/relay/internal/repository"
)

// PresenceService records user-activity signals. Online state itself is
// never stored; it is derived from last_active_at on read.
type PresenceService struct {
	presenceRepo repository.PresenceRepository
}

func NewPresenceService(presenceRepo repository.PresenceRepository) *PresenceService {
	return &PresenceService{presenceRepo: presenceRepo}
}

// Touch bumps the user's last activity. The presence row is created with the
// user, never here; a missing row is a not-found. Future timestamps are
// rejected at the transport boundary before they reach this call.
func (s *PresenceService) Touch(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return s.presenceRepo.UpdateLastActive(ctx, userID, at)
}

// Status reports whether the user is online as of now.
func (s *PresenceService) Status(ctx context.Context, userID uuid.UUID) (*domain.Presence, bool, error) {
	p, err := s.presenceRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if p == nil {
		return nil, false, errs.NotFound("presence", userID.String())
	}
	return p, p.Online(time.Now()), nil
}
