package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tgrbin/relay/internal/domain"
	"github.com/tgrbin/relay/internal/errs"
)

type PresenceRepo struct {
	pool *pgxpool.Pool
}

func NewPresenceRepo(pool *pgxpool.Pool) *PresenceRepo {
	return &PresenceRepo{pool: pool}
}

func (r *PresenceRepo) Create(ctx context.Context, p *domain.Presence) error {
	query := `INSERT INTO presence (id, user_id, last_active_at) VALUES ($1, $2, $3)`
	_, err := r.pool.Exec(ctx, query, p.ID, p.UserID, p.LastActiveAt)
	if isUniqueViolation(err) {
		return errs.AlreadyExists("presence", p.UserID.String())
	}
	return err
}

func (r *PresenceRepo) GetByUser(ctx context.Context, userID uuid.UUID) (*domain.Presence, error) {
	query := `SELECT id, user_id, last_active_at FROM presence WHERE user_id = $1`
	var p domain.Presence
	err := r.pool.QueryRow(ctx, query, userID).Scan(&p.ID, &p.UserID, &p.LastActiveAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &p, err
}

// UpdateLastActive is a single-row bump; last writer wins. The row must
// already exist (it is created with the user).
func (r *PresenceRepo) UpdateLastActive(ctx context.Context, userID uuid.UUID, lastActiveAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE presence SET last_active_at = $1 WHERE user_id = $2`, lastActiveAt, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("presence", userID.String())
	}
	return nil
}
