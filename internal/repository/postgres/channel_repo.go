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

type ChannelRepo struct {
	pool *pgxpool.Pool
}

func NewChannelRepo(pool *pgxpool.Pool) *ChannelRepo {
	return &ChannelRepo{pool: pool}
}

func (r *ChannelRepo) Create(ctx context.Context, ch *domain.Channel) error {
	query := `
		INSERT INTO channels (id, type, name, description, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, ch.ID, ch.Type, ch.Name, ch.Description, ch.CreatedAt)
	return err
}

// CreatePrivate writes the channel and one membership row per participant in
// one transaction. If any participant id has no user row the foreign key
// fires and the whole write rolls back.
func (r *ChannelRepo) CreatePrivate(ctx context.Context, ch *domain.Channel, participantIDs []uuid.UUID, lastReadAt time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO channels (id, type, name, description, created_at) VALUES ($1, $2, $3, $4, $5)`,
		ch.ID, ch.Type, ch.Name, ch.Description, ch.CreatedAt,
	)
	if err != nil {
		return err
	}

	for _, userID := range participantIDs {
		_, err = tx.Exec(ctx,
			`INSERT INTO memberships (id, user_id, channel_id, last_read_at) VALUES ($1, $2, $3, $4)`,
			uuid.New(), userID, ch.ID, lastReadAt,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return errs.NotFound("user", userID.String())
			}
			return fmt.Errorf("adding participant %s: %w", userID, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *ChannelRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Channel, error) {
	query := `SELECT id, type, name, description, created_at FROM channels WHERE id = $1`
	var ch domain.Channel
	err := r.pool.QueryRow(ctx, query, id).Scan(&ch.ID, &ch.Type, &ch.Name, &ch.Description, &ch.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &ch, err
}

// ListVisible returns public channels plus private channels the user holds a
// membership row for. The OR is resolved in one query so a channel can never
// appear twice.
func (r *ChannelRepo) ListVisible(ctx context.Context, userID uuid.UUID) ([]domain.Channel, error) {
	query := `
		SELECT c.id, c.type, c.name, c.description, c.created_at
		FROM channels c
		WHERE c.type = 'public'
			OR EXISTS (SELECT 1 FROM memberships m WHERE m.channel_id = c.id AND m.user_id = $1)
		ORDER BY c.created_at`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []domain.Channel
	for rows.Next() {
		var ch domain.Channel
		if err := rows.Scan(&ch.ID, &ch.Type, &ch.Name, &ch.Description, &ch.CreatedAt); err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

func (r *ChannelRepo) Update(ctx context.Context, ch *domain.Channel) error {
	query := `UPDATE channels SET name = $1, description = $2 WHERE id = $3`
	_, err := r.pool.Exec(ctx, query, ch.Name, ch.Description, ch.ID)
	return err
}

// Delete removes the channel; messages and memberships go with it via
// ON DELETE CASCADE.
func (r *ChannelRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM channels WHERE id = $1`, id)
	return err
}
