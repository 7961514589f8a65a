package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tgrbin/relay/internal/domain"
	"github.com/tgrbin/relay/internal/errs"
	"github.com/tgrbin/relay/internal/repository"
)

// MembershipService manages the per (user, channel) read markers that double
// as private-channel membership proof.
type MembershipService struct {
	membershipRepo repository.MembershipRepository
	channelRepo    repository.ChannelRepository
	userRepo       repository.UserRepository
}

func NewMembershipService(
	membershipRepo repository.MembershipRepository,
	channelRepo repository.ChannelRepository,
	userRepo repository.UserRepository,
) *MembershipService {
	return &MembershipService{
		membershipRepo: membershipRepo,
		channelRepo:    channelRepo,
		userRepo:       userRepo,
	}
}

// Create adds a membership row. The pair's uniqueness is enforced by the
// store constraint, so the existence checks here only improve the error
// message; a lost race still comes back as already-exists.
func (s *MembershipService) Create(ctx context.Context, userID, channelID uuid.UUID, lastReadAt time.Time) (*domain.Membership, error) {
	exists, err := s.userRepo.ExistsByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errs.NotFound("user", userID.String())
	}

	ch, err := s.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, errs.NotFound("channel", channelID.String())
	}

	m := &domain.Membership{
		ID:         uuid.New(),
		UserID:     userID,
		ChannelID:  channelID,
		LastReadAt: lastReadAt,
	}
	if err := s.membershipRepo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// MarkRead bumps the read marker to the given timestamp.
func (s *MembershipService) MarkRead(ctx context.Context, membershipID uuid.UUID, readAt time.Time) error {
	if err := s.membershipRepo.UpdateLastRead(ctx, membershipID, readAt); err != nil {
		return err
	}
	return nil
}

func (s *MembershipService) Get(ctx context.Context, userID, channelID uuid.UUID) (*domain.Membership, error) {
	m, err := s.membershipRepo.GetByUserAndChannel(ctx, userID, channelID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errs.NotFound("membership", fmt.Sprintf("%s/%s", userID, channelID))
	}
	return m, nil
}

// RemoveForChannel and RemoveForUser support cascade cleanup when a channel
// or user goes away.
func (s *MembershipService) RemoveForChannel(ctx context.Context, channelID uuid.UUID) error {
	return s.membershipRepo.DeleteAllForChannel(ctx, channelID)
}

func (s *MembershipService) RemoveForUser(ctx context.Context, userID uuid.UUID) error {
	return s.membershipRepo.DeleteAllForUser(ctx, userID)
}
