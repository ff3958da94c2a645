package client

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ShahiCrafts/civicpulse/internal/infrastructure/realtime"
	discussion "github.com/ShahiCrafts/civicpulse/internal/pkg/discussion/domain"
	"github.com/ShahiCrafts/civicpulse/internal/pkg/discussion/presentation/controller"
	repository "github.com/ShahiCrafts/civicpulse/internal/pkg/discussion/repository/port"
	"github.com/google/uuid"
)

// memMessageRepo is an in-memory MessageRepository for end-to-end tests.
type memMessageRepo struct {
	mu       sync.Mutex
	messages []discussion.Message
}

func (r *memMessageRepo) SaveMessage(ctx context.Context, m discussion.Message) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = uuid.NewString()
	r.messages = append(r.messages, m)
	return m.ID, nil
}

func (r *memMessageRepo) GetHistory(ctx context.Context, conversationType string, conversationID string) ([]discussion.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []discussion.Message
	for _, m := range r.messages {
		if m.ConversationType == conversationType && m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

var _ repository.MessageRepository = (*memMessageRepo)(nil)

// startDiscussionServer runs the real history and socket controllers over an
// in-memory repository.
func startDiscussionServer(t *testing.T, repo *memMessageRepo) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := realtime.NewHub()
	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.GET("/messages", controller.NewGetHistoryController(repo).Handle())
	v1.GET("/ws", controller.NewSocketController(repo, hub, nil).Handle())

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		hub.Close()
	})
	return srv.URL
}

func TestSynchronizerAgainstLiveServer(t *testing.T) {
	repo := &memMessageRepo{}
	_, _ = repo.SaveMessage(context.Background(), discussion.Message{
		ConversationType: "discussion",
		ConversationID:   "conv1",
		Author:           "u2",
		Text:             "earlier message",
	})
	baseURL := startDiscussionServer(t, repo)

	api := New(baseURL)
	ch, err := DialChannel(context.Background(), baseURL, "u1", nil)
	if err != nil {
		t.Fatalf("DialChannel: %v", err)
	}
	defer ch.Close()

	s := NewConversationSynchronizer(api, ch, nil)
	if err := s.Open(context.Background(), "discussion", "conv1", "u1"); err != nil {
		t.Fatalf("Open: %v", err)
	}

	got := s.Messages()
	if len(got) != 1 || got[0].Text != "earlier message" {
		t.Fatalf("history = %+v", got)
	}

	// The sent message appears only once the server echoes it back.
	if err := s.Send("hi", nil); err != nil {
		t.Fatalf("Send: %v", err)
	}
	waitFor(t, func() bool { return len(s.Messages()) == 2 })

	msgs := s.Messages()
	if msgs[1].Text != "hi" || msgs[1].Author != "u1" || msgs[1].ID == "" {
		t.Fatalf("echoed message = %+v", msgs[1])
	}
}

func TestTwoClientsConvergeOnOneConversation(t *testing.T) {
	repo := &memMessageRepo{}
	baseURL := startDiscussionServer(t, repo)
	api := New(baseURL)

	ch1, err := DialChannel(context.Background(), baseURL, "u1", nil)
	if err != nil {
		t.Fatalf("DialChannel u1: %v", err)
	}
	defer ch1.Close()
	ch2, err := DialChannel(context.Background(), baseURL, "u2", nil)
	if err != nil {
		t.Fatalf("DialChannel u2: %v", err)
	}
	defer ch2.Close()

	s1 := NewConversationSynchronizer(api, ch1, nil)
	s2 := NewConversationSynchronizer(api, ch2, nil)
	for name, s := range map[string]*ConversationSynchronizer{"u1": s1, "u2": s2} {
		if err := s.Open(context.Background(), "discussion", "conv1", name); err != nil {
			t.Fatalf("Open %s: %v", name, err)
		}
	}

	if err := s1.Send("from u1", nil); err != nil {
		t.Fatalf("Send: %v", err)
	}

	waitFor(t, func() bool { return len(s1.Messages()) == 1 && len(s2.Messages()) == 1 })
	if got := s2.Messages()[0]; got.Text != "from u1" || got.Author != "u1" {
		t.Fatalf("peer received %+v", got)
	}
}

func TestSwitchingConversationsAgainstLiveServer(t *testing.T) {
	repo := &memMessageRepo{}
	_, _ = repo.SaveMessage(context.Background(), discussion.Message{
		ConversationType: "discussion", ConversationID: "conv1", Author: "u2", Text: "in conv1",
	})
	_, _ = repo.SaveMessage(context.Background(), discussion.Message{
		ConversationType: "discussion", ConversationID: "conv2", Author: "u2", Text: "in conv2",
	})
	baseURL := startDiscussionServer(t, repo)

	api := New(baseURL)
	ch, err := DialChannel(context.Background(), baseURL, "u1", nil)
	if err != nil {
		t.Fatalf("DialChannel: %v", err)
	}
	defer ch.Close()

	s := NewConversationSynchronizer(api, ch, nil)
	if err := s.Open(context.Background(), "discussion", "conv1", "u1"); err != nil {
		t.Fatalf("Open conv1: %v", err)
	}
	if err := s.Open(context.Background(), "discussion", "conv2", "u1"); err != nil {
		t.Fatalf("Open conv2: %v", err)
	}

	got := s.Messages()
	if len(got) != 1 || got[0].Text != "in conv2" {
		t.Fatalf("messages = %+v, want conv2 history only", got)
	}
}
