package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	discussion "github.com/ShahiCrafts/civicpulse/internal/pkg/discussion/domain"
)

type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

func (r *PgMessageRepository) SaveMessage(ctx context.Context, m discussion.Message) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgMessageRepository: nil pool")
	}
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO discussion.message (
			conversation_type, conversation_id, author, text, attachments, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id::text
	`, m.ConversationType, m.ConversationID, m.Author, m.Text, m.Attachments, m.CreatedAt).Scan(&id)
	return id, err
}

func (r *PgMessageRepository) GetHistory(ctx context.Context, conversationType string, conversationID string) ([]discussion.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessageRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, conversation_type, conversation_id, author, text, attachments, created_at
		FROM discussion.message
		WHERE conversation_type = $1 AND conversation_id = $2
		ORDER BY created_at ASC, id ASC
	`, conversationType, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []discussion.Message
	for rows.Next() {
		var msg discussion.Message
		if err := rows.Scan(&msg.ID, &msg.ConversationType, &msg.ConversationID, &msg.Author, &msg.Text, &msg.Attachments, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return msgs, nil
}
