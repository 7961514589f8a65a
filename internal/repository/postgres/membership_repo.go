package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tgrbin/relay/internal/domain"
	"github.com/tgrbin/relay/internal/errs"
)

type MembershipRepo struct {
	pool *pgxpool.Pool
}

func NewMembershipRepo(pool *pgxpool.Pool) *MembershipRepo {
	return &MembershipRepo{pool: pool}
}

// Create inserts the read-marker row. Duplicate (user, channel) pairs are
// rejected by the unique constraint, so of two concurrent creates exactly
// one wins and the other sees already-exists.
func (r *MembershipRepo) Create(ctx context.Context, m *domain.Membership) error {
	query := `INSERT INTO memberships (id, user_id, channel_id, last_read_at) VALUES ($1, $2, $3, $4)`
	_, err := r.pool.Exec(ctx, query, m.ID, m.UserID, m.ChannelID, m.LastReadAt)
	if isUniqueViolation(err) {
		return errs.AlreadyExists("membership", fmt.Sprintf("%s/%s", m.UserID, m.ChannelID))
	}
	return err
}

func (r *MembershipRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Membership, error) {
	query := `SELECT id, user_id, channel_id, last_read_at FROM memberships WHERE id = $1`
	var m domain.Membership
	err := r.pool.QueryRow(ctx, query, id).Scan(&m.ID, &m.UserID, &m.ChannelID, &m.LastReadAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &m, err
}

func (r *MembershipRepo) GetByUserAndChannel(ctx context.Context, userID, channelID uuid.UUID) (*domain.Membership, error) {
	query := `SELECT id, user_id, channel_id, last_read_at FROM memberships WHERE user_id = $1 AND channel_id = $2`
	var m domain.Membership
	err := r.pool.QueryRow(ctx, query, userID, channelID).Scan(&m.ID, &m.UserID, &m.ChannelID, &m.LastReadAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &m, err
}

func (r *MembershipRepo) ListUserIDs(ctx context.Context, channelID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id FROM memberships WHERE channel_id = $1 ORDER BY user_id`, channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *MembershipRepo) UpdateLastRead(ctx context.Context, id uuid.UUID, lastReadAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE memberships SET last_read_at = $1 WHERE id = $2`, lastReadAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("membership", id.String())
	}
	return nil
}

func (r *MembershipRepo) DeleteAllForChannel(ctx context.Context, channelID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM memberships WHERE channel_id = $1`, channelID)
	return err
}

func (r *MembershipRepo) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM memberships WHERE user_id = $1`, userID)
	return err
}
