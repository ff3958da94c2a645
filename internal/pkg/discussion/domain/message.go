package discussion

import (
	"errors"
	"strings"
	"time"
)

// Conversation kinds a message can belong to. The pair (type, id) identifies
// one logical channel of messages; the realtime room is keyed by the id.
const (
	ConversationTypeDiscussion = "discussion"
	ConversationTypePost       = "post"
	ConversationTypeEvent      = "event"
)

// Message is an immutable log entry in a conversation. Ordering is by
// creation time with the server-assigned id as tie-break.
type Message struct {
	ID               string    `db:"id"`
	ConversationType string    `db:"conversation_type"`
	ConversationID   string    `db:"conversation_id"`
	Author           string    `db:"author"`
	Text             string    `db:"text"`
	Attachments      []string  `db:"attachments"`
	CreatedAt        time.Time `db:"created_at"`
}

// NewMessage validates and normalizes a message before persistence.
func NewMessage(m Message) (*Message, error) {
	if m.ConversationType == "" || m.ConversationID == "" {
		return nil, errors.New("conversationType and conversationId are required")
	}
	if m.Author == "" {
		return nil, errors.New("author is required")
	}

	m.Text = strings.TrimSpace(m.Text)
	if m.Text == "" && len(m.Attachments) == 0 {
		return nil, errors.New("message must contain either text or attachments")
	}

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	return &m, nil
}
