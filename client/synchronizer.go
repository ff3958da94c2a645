package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// HistoryFetcher retrieves the full message history of one conversation,
// ordered oldest-to-newest. *Client satisfies it.
type HistoryFetcher interface {
	GetMessages(ctx context.Context, conversationType, conversationID string) ([]Message, error)
}

// ConversationSynchronizer maintains a live, append-only, time-ordered
// message log for exactly one active conversation. It reconciles an initial
// REST snapshot with the push stream: on every conversation switch it
// releases the previous room, fetches history, then subscribes to the new
// room, in that order. A switch that is superseded by a newer Open call
// discards its late-arriving results ("last request wins").
//
// Several synchronizers may share one Channel; each releases only the
// subscriptions it created.
type ConversationSynchronizer struct {
	fetcher HistoryFetcher
	channel Channel
	log     *slog.Logger

	mu               sync.Mutex
	epoch            uint64
	conversationType string
	conversationID   string
	userID           string
	messages         []Message
	seen             map[string]struct{}
	loading          bool
	sub              *Subscription
}

// NewConversationSynchronizer constructs a synchronizer in the empty state.
// The channel is an injected dependency, never a package-level singleton.
func NewConversationSynchronizer(fetcher HistoryFetcher, channel Channel, log *slog.Logger) *ConversationSynchronizer {
	if log == nil {
		log = slog.Default()
	}
	return &ConversationSynchronizer{
		fetcher: fetcher,
		channel: channel,
		log:     log,
		seen:    make(map[string]struct{}),
	}
}

// Open switches the synchronizer to the given conversation. An empty
// conversationID clears the log and releases any active subscription
// without fetching. A history fetch failure is logged and leaves the log
// empty, but does not prevent the room subscription. Returns an error only
// when the room subscription itself fails.
func (s *ConversationSynchronizer) Open(ctx context.Context, conversationType, conversationID, currentUserID string) error {
	s.mu.Lock()
	s.epoch++
	epoch := s.epoch

	// Unsubscribe first so at no point two rooms are joined.
	if s.sub != nil {
		s.sub.Release()
		s.sub = nil
	}

	s.conversationType = conversationType
	s.conversationID = conversationID
	s.userID = currentUserID
	s.messages = nil
	s.seen = make(map[string]struct{})

	if conversationID == "" {
		s.loading = false
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	s.mu.Unlock()

	history, err := s.fetcher.GetMessages(ctx, conversationType, conversationID)
	if err != nil {
		s.log.Error("history fetch failed",
			"conversationType", conversationType,
			"conversationId", conversationID,
			"error", err)
		history = nil
	}

	s.mu.Lock()
	if epoch != s.epoch {
		// Superseded while fetching; the newer Open owns the state now.
		s.mu.Unlock()
		return nil
	}
	for _, m := range history {
		s.appendLocked(m)
	}
	s.loading = false
	s.mu.Unlock()

	sub, err := s.channel.Subscribe(conversationID, func(m Message) {
		s.onIncoming(epoch, m)
	})
	if err != nil {
		return fmt.Errorf("subscribe %q: %w", conversationID, err)
	}

	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		sub.Release()
		return nil
	}
	s.sub = sub
	s.mu.Unlock()
	return nil
}

// Send transmits a message envelope over the active subscription. Without an
// active subscription the call is a no-op; callers should check Ready. The
// message is not appended locally: it enters the log only when the server
// echoes it back on the push stream.
func (s *ConversationSynchronizer) Send(text string, attachments []string) error {
	s.mu.Lock()
	if s.sub == nil {
		s.mu.Unlock()
		return nil
	}
	env := Envelope{
		ConversationType: s.conversationType,
		ConversationID:   s.conversationID,
		Author:           s.userID,
		Text:             text,
		Attachments:      attachments,
	}
	s.mu.Unlock()

	return s.channel.Send(env)
}

// Messages returns a snapshot of the current log in arrival order.
func (s *ConversationSynchronizer) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Loading reports whether a history fetch for the current conversation is in
// flight.
func (s *ConversationSynchronizer) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Ready reports whether an active room subscription exists, i.e. whether
// Send will transmit.
func (s *ConversationSynchronizer) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sub != nil
}

// Close releases the active subscription and clears the log. The
// synchronizer can be reused with a subsequent Open.
func (s *ConversationSynchronizer) Close() {
	s.mu.Lock()
	s.epoch++
	if s.sub != nil {
		s.sub.Release()
		s.sub = nil
	}
	s.messages = nil
	s.seen = make(map[string]struct{})
	s.loading = false
	s.mu.Unlock()
}

func (s *ConversationSynchronizer) onIncoming(epoch uint64, m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		// A handler surviving past its Release window must not touch the
		// log of a newer conversation.
		return
	}
	s.appendLocked(m)
}

// appendLocked appends in arrival order, idempotently by message id, so a
// message present in the history snapshot and replayed by the push stream
// appears once.
func (s *ConversationSynchronizer) appendLocked(m Message) {
	if m.ID != "" {
		if _, dup := s.seen[m.ID]; dup {
			return
		}
		s.seen[m.ID] = struct{}{}
	}
	s.messages = append(s.messages, m)
}
