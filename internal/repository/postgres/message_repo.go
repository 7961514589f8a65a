package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tgrbin/relay/internal/domain"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (id, channel_id, author_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, msg.ID, msg.ChannelID, msg.AuthorID, msg.Content, msg.CreatedAt)
	return err
}

func (r *MessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	query := `
		SELECT m.id, m.channel_id, m.author_id, m.content, m.edited_at, m.created_at,
			u.display_name, u.email, p.last_active_at
		FROM messages m
		JOIN users u ON m.author_id = u.id
		JOIN presence p ON p.user_id = u.id
		WHERE m.id = $1`
	var msg domain.Message
	var lastActive time.Time
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&msg.ID, &msg.ChannelID, &msg.AuthorID, &msg.Content, &msg.EditedAt, &msg.CreatedAt,
		&msg.Author.DisplayName, &msg.Author.Email, &lastActive,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	msg.Author.ID = msg.AuthorID
	msg.Author.Online = domain.IsOnline(lastActive, time.Now())
	return &msg, nil
}

// ListBefore pages the channel feed by keyset: strictly older than the
// cursor, newest first. Equal timestamps are ordered by id descending so the
// total order is stable across identical queries.
func (r *MessageRepo) ListBefore(ctx context.Context, channelID uuid.UUID, before time.Time, limit int) ([]domain.Message, error) {
	query := `
		SELECT m.id, m.channel_id, m.author_id, m.content, m.edited_at, m.created_at,
			u.display_name, u.email, p.last_active_at
		FROM messages m
		JOIN users u ON m.author_id = u.id
		JOIN presence p ON p.user_id = u.id
		WHERE m.channel_id = $1 AND m.created_at < $2
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, channelID, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := time.Now()
	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		var lastActive time.Time
		if err := rows.Scan(
			&msg.ID, &msg.ChannelID, &msg.AuthorID, &msg.Content, &msg.EditedAt, &msg.CreatedAt,
			&msg.Author.DisplayName, &msg.Author.Email, &lastActive,
		); err != nil {
			return nil, err
		}
		msg.Author.ID = msg.AuthorID
		msg.Author.Online = domain.IsOnline(lastActive, now)
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// Update rewrites content and edited_at only; created_at never moves, so the
// message keeps its feed position.
func (r *MessageRepo) Update(ctx context.Context, msg *domain.Message) error {
	query := `UPDATE messages SET content = $1, edited_at = $2 WHERE id = $3`
	_, err := r.pool.Exec(ctx, query, msg.Content, time.Now(), msg.ID)
	return err
}

func (r *MessageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	return err
}
