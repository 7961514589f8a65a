package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tgrbin/relay/internal/domain"
)

type UserRepository interface {
	// Create stores the user together with its presence row.
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ChannelRepository interface {
	Create(ctx context.Context, ch *domain.Channel) error
	// CreatePrivate inserts the channel and one membership per participant
	// as a single transaction. A missing participant aborts the whole write.
	CreatePrivate(ctx context.Context, ch *domain.Channel, participantIDs []uuid.UUID, lastReadAt time.Time) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Channel, error)
	// ListVisible returns all public channels plus private channels the user
	// holds a membership row for.
	ListVisible(ctx context.Context, userID uuid.UUID) ([]domain.Channel, error)
	Update(ctx context.Context, ch *domain.Channel) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	// ListBefore returns up to limit author-joined messages with
	// created_at strictly before the cursor, newest first.
	ListBefore(ctx context.Context, channelID uuid.UUID, before time.Time, limit int) ([]domain.Message, error)
	Update(ctx context.Context, msg *domain.Message) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type MembershipRepository interface {
	// Create relies on the store's unique (user_id, channel_id) constraint;
	// a duplicate pair surfaces as an already-exists error, never as a
	// second row.
	Create(ctx context.Context, m *domain.Membership) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Membership, error)
	GetByUserAndChannel(ctx context.Context, userID, channelID uuid.UUID) (*domain.Membership, error)
	ListUserIDs(ctx context.Context, channelID uuid.UUID) ([]uuid.UUID, error)
	UpdateLastRead(ctx context.Context, id uuid.UUID, lastReadAt time.Time) error
	DeleteAllForChannel(ctx context.Context, channelID uuid.UUID) error
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
}

type PresenceRepository interface {
	Create(ctx context.Context, p *domain.Presence) error
	GetByUser(ctx context.Context, userID uuid.UUID) (*domain.Presence, error)
	// UpdateLastActive bumps an existing row; it does not create one.
	UpdateLastActive(ctx context.Context, userID uuid.UUID, lastActiveAt time.Time) error
}

type AttachmentRepository interface {
	Create(ctx context.Context, a *domain.Attachment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error)
	ListByMessages(ctx context.Context, messageIDs []uuid.UUID) (map[uuid.UUID][]domain.Attachment, error)
	AttachToMessage(ctx context.Context, attachmentID, messageID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}
