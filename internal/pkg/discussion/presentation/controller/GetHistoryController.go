package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	discussion "github.com/ShahiCrafts/civicpulse/internal/pkg/discussion/domain"
	repository "github.com/ShahiCrafts/civicpulse/internal/pkg/discussion/repository/port"
	"github.com/ShahiCrafts/civicpulse/internal/pkg/discussion/usecase"
)

// GetHistoryController handles fetching the message history of one conversation.
type GetHistoryController struct {
	UC *usecase.GetHistoryUseCase
}

func NewGetHistoryController(repo repository.MessageRepository) *GetHistoryController {
	return &GetHistoryController{UC: usecase.NewGetHistoryUseCase(repo)}
}

// messageJSON is the wire shape of a message. The platform uses camelCase
// field names end to end.
type messageJSON struct {
	ID               string    `json:"id"`
	ConversationType string    `json:"conversationType"`
	ConversationID   string    `json:"conversationId"`
	Author           string    `json:"author"`
	Text             string    `json:"text"`
	Attachments      []string  `json:"attachments"`
	CreatedAt        time.Time `json:"createdAt"`
}

func toMessageJSON(m discussion.Message) messageJSON {
	attachments := m.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	return messageJSON{
		ID:               m.ID,
		ConversationType: m.ConversationType,
		ConversationID:   m.ConversationID,
		Author:           m.Author,
		Text:             m.Text,
		Attachments:      attachments,
		CreatedAt:        m.CreatedAt,
	}
}

func (h *GetHistoryController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		convType := c.Query("conversationType")
		convID := c.Query("conversationId")
		if convType == "" || convID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "conversationType and conversationId are required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msgs, err := h.UC.Execute(ctx, usecase.GetHistoryInput{
			ConversationType: convType,
			ConversationID:   convID,
		})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"message": err.Error()})
			return
		}

		out := make([]messageJSON, 0, len(msgs))
		for _, m := range msgs {
			out = append(out, toMessageJSON(m))
		}

		c.JSON(http.StatusOK, gin.H{
			"data": gin.H{"messages": out},
		})
	}
}
