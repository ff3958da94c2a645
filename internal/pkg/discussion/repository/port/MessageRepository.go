package repository

import (
	"context"

	discussion "github.com/ShahiCrafts/civicpulse/internal/pkg/discussion/domain"
)

// MessageRepository defines persistence operations for conversation messages.
type MessageRepository interface {
	SaveMessage(ctx context.Context, m discussion.Message) (string, error)

	// GetHistory returns every message of the conversation ordered
	// oldest-to-newest, deterministically (created_at, then id).
	GetHistory(ctx context.Context, conversationType string, conversationID string) ([]discussion.Message, error)
}
