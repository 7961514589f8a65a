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

type UserService struct {
	userRepo       repository.UserRepository
	membershipRepo repository.MembershipRepository
}

func NewUserService(userRepo repository.UserRepository, membershipRepo repository.MembershipRepository) *UserService {
	return &UserService{userRepo: userRepo, membershipRepo: membershipRepo}
}

type CreateUserInput struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Create stores the user and its presence row as one unit, so activity
// updates always have a row to bump.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	user := &domain.User{
		ID:          uuid.New(),
		Email:       input.Email,
		DisplayName: input.DisplayName,
		CreatedAt:   time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errs.NotFound("user", id.String())
	}
	return user, nil
}

// Delete removes the user together with its membership rows; the presence
// row cascades at the store level.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return errs.NotFound("user", id.String())
	}
	if err := s.membershipRepo.DeleteAllForUser(ctx, id); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, id)
}
