package usecase

import (
	"context"
	"fmt"

	discussion "github.com/ShahiCrafts/civicpulse/internal/pkg/discussion/domain"
	repository "github.com/ShahiCrafts/civicpulse/internal/pkg/discussion/repository/port"
)

// PostMessageInput carries the data needed to append a message to a conversation.
type PostMessageInput struct {
	ConversationType string
	ConversationID   string
	Author           string
	Text             string
	Attachments      []string
}

// PostMessageUseCase validates and persists a new message.
type PostMessageUseCase struct {
	Repo repository.MessageRepository
}

func NewPostMessageUseCase(repo repository.MessageRepository) *PostMessageUseCase {
	return &PostMessageUseCase{Repo: repo}
}

// Execute persists the message and returns it with its server-assigned id.
func (uc *PostMessageUseCase) Execute(ctx context.Context, in PostMessageInput) (*discussion.Message, error) {
	msg, err := discussion.NewMessage(discussion.Message{
		ConversationType: in.ConversationType,
		ConversationID:   in.ConversationID,
		Author:           in.Author,
		Text:             in.Text,
		Attachments:      in.Attachments,
	})
	if err != nil {
		return nil, err
	}

	id, err := uc.Repo.SaveMessage(ctx, *msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	msg.ID = id
	return msg, nil
}
