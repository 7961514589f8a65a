package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tgrbin/relay/internal/domain"
)

type AttachmentRepo struct {
	pool *pgxpool.Pool
}

func NewAttachmentRepo(pool *pgxpool.Pool) *AttachmentRepo {
	return &AttachmentRepo{pool: pool}
}

func (r *AttachmentRepo) Create(ctx context.Context, a *domain.Attachment) error {
	query := `
		INSERT INTO attachments (id, message_id, file_name, size, content_type, storage_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, query, a.ID, a.MessageID, a.FileName, a.Size, a.ContentType, a.StorageKey, a.CreatedAt)
	return err
}

func (r *AttachmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error) {
	query := `SELECT id, message_id, file_name, size, content_type, storage_key, created_at FROM attachments WHERE id = $1`
	var a domain.Attachment
	err := r.pool.QueryRow(ctx, query, id).Scan(&a.ID, &a.MessageID, &a.FileName, &a.Size, &a.ContentType, &a.StorageKey, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &a, err
}

// ListByMessages resolves attachment metadata for a page of messages in one
// round trip, keyed by message id.
func (r *AttachmentRepo) ListByMessages(ctx context.Context, messageIDs []uuid.UUID) (map[uuid.UUID][]domain.Attachment, error) {
	if len(messageIDs) == 0 {
		return map[uuid.UUID][]domain.Attachment{}, nil
	}

	query := `
		SELECT id, message_id, file_name, size, content_type, storage_key, created_at
		FROM attachments
		WHERE message_id = ANY($1)
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, messageIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byMessage := make(map[uuid.UUID][]domain.Attachment)
	for rows.Next() {
		var a domain.Attachment
		if err := rows.Scan(&a.ID, &a.MessageID, &a.FileName, &a.Size, &a.ContentType, &a.StorageKey, &a.CreatedAt); err != nil {
			return nil, err
		}
		byMessage[*a.MessageID] = append(byMessage[*a.MessageID], a)
	}
	return byMessage, rows.Err()
}

func (r *AttachmentRepo) AttachToMessage(ctx context.Context, attachmentID, messageID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE attachments SET message_id = $1 WHERE id = $2`, messageID, attachmentID)
	return err
}

func (r *AttachmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM attachments WHERE id = $1`, id)
	return err
}
