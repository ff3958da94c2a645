package usecase

import (
	"context"
	"fmt"

	discussion "github.com/ShahiCrafts/civicpulse/internal/pkg/discussion/domain"
	repository "github.com/ShahiCrafts/civicpulse/internal/pkg/discussion/repository/port"
)

// GetHistoryInput identifies the conversation whose messages are fetched.
type GetHistoryInput struct {
	ConversationType string
	ConversationID   string
}

// GetHistoryUseCase fetches the full ordered history of one conversation.
type GetHistoryUseCase struct {
	Repo repository.MessageRepository
}

func NewGetHistoryUseCase(repo repository.MessageRepository) *GetHistoryUseCase {
	return &GetHistoryUseCase{Repo: repo}
}

// Execute returns messages ordered oldest-to-newest.
func (uc *GetHistoryUseCase) Execute(ctx context.Context, in GetHistoryInput) ([]discussion.Message, error) {
	if in.ConversationType == "" || in.ConversationID == "" {
		return nil, fmt.Errorf("conversationType and conversationId are required")
	}
	msgs, err := uc.Repo.GetHistory(ctx, in.ConversationType, in.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return msgs, nil
}
