package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/tgrbin/relay/internal/domain"
	"github.com/tgrbin/relay/internal/errs"
	"github.com/tgrbin/relay/internal/repository"
)

type ChannelService struct {
	channelRepo    repository.ChannelRepository
	membershipRepo repository.MembershipRepository
	userRepo       repository.UserRepository
}

func NewChannelService(
	channelRepo repository.ChannelRepository,
	membershipRepo repository.MembershipRepository,
	userRepo repository.UserRepository,
) *ChannelService {
	return &ChannelService{
		channelRepo:    channelRepo,
		membershipRepo: membershipRepo,
		userRepo:       userRepo,
	}
}

type CreatePublicChannelInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CreatePrivateChannelInput struct {
	ParticipantIDs []uuid.UUID `json:"participant_ids"`
}

type UpdateChannelInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// ListVisible returns every public channel plus every private channel the
// user holds a membership row for.
func (s *ChannelService) ListVisible(ctx context.Context, userID uuid.UUID) ([]domain.Channel, error) {
	exists, err := s.userRepo.ExistsByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errs.NotFound("user", userID.String())
	}

	channels, err := s.channelRepo.ListVisible(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing visible channels: %w", err)
	}
	if channels == nil {
		channels = []domain.Channel{}
	}
	return channels, nil
}

// Participants is the side query resolving who holds a membership row for a
// channel. Kept off the channel entity so visibility stays decoupled from
// projection shape.
func (s *ChannelService) Participants(ctx context.Context, channelID uuid.UUID) ([]uuid.UUID, error) {
	ch, err := s.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, errs.NotFound("channel", channelID.String())
	}
	return s.membershipRepo.ListUserIDs(ctx, channelID)
}

func (s *ChannelService) CreatePublic(ctx context.Context, input CreatePublicChannelInput) (*domain.Channel, error) {
	var desc *string
	if input.Description != "" {
		desc = &input.Description
	}

	ch := &domain.Channel{
		ID:          uuid.New(),
		Type:        domain.ChannelPublic,
		Name:        &input.Name,
		Description: desc,
		CreatedAt:   time.Now(),
	}

	if err := s.channelRepo.Create(ctx, ch); err != nil {
		return nil, fmt.Errorf("creating channel: %w", err)
	}
	return ch, nil
}

// CreatePrivate creates the channel and one membership per participant as a
// single unit. Any invalid participant id fails the whole operation; nothing
// is persisted.
func (s *ChannelService) CreatePrivate(ctx context.Context, input CreatePrivateChannelInput) (*domain.Channel, error) {
	participants := lo.Uniq(input.ParticipantIDs)
	if len(participants) == 0 {
		return nil, errs.Forbidden("private channel requires at least one participant")
	}

	for _, userID := range participants {
		exists, err := s.userRepo.ExistsByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, errs.NotFound("user", userID.String())
		}
	}

	now := time.Now()
	ch := &domain.Channel{
		ID:        uuid.New(),
		Type:      domain.ChannelPrivate,
		CreatedAt: now,
	}

	if err := s.channelRepo.CreatePrivate(ctx, ch, participants, now); err != nil {
		return nil, fmt.Errorf("creating private channel: %w", err)
	}
	return ch, nil
}

// Update renames a public channel. Private channels carry no name or
// description and are immutable.
func (s *ChannelService) Update(ctx context.Context, channelID uuid.UUID, input UpdateChannelInput) (*domain.Channel, error) {
	ch, err := s.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, errs.NotFound("channel", channelID.String())
	}
	if ch.IsPrivate() {
		return nil, errs.Forbidden("private channels cannot be updated")
	}

	if input.Name != nil {
		ch.Name = input.Name
	}
	if input.Description != nil {
		ch.Description = input.Description
	}

	if err := s.channelRepo.Update(ctx, ch); err != nil {
		return nil, fmt.Errorf("updating channel: %w", err)
	}
	return ch, nil
}

// Delete removes the channel with its messages and membership rows.
func (s *ChannelService) Delete(ctx context.Context, channelID uuid.UUID) error {
	ch, err := s.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		return err
	}
	if ch == nil {
		return errs.NotFound("channel", channelID.String())
	}
	return s.channelRepo.Delete(ctx, channelID)
}
