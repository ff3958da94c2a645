package client

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const closeWriteWait = 5 * time.Second

// MessageHandler receives push-delivered messages for a subscribed room, in
// arrival order.
type MessageHandler func(Message)

// Channel is the realtime collaborator: one shared connection carrying room
// joins, leaves and message envelopes. Implementations deliver newMessage
// events only for rooms with live subscriptions. The channel is injected
// into consumers rather than held as a process-wide singleton so each
// consumer's subscription ownership stays testable.
type Channel interface {
	// Subscribe joins the room and registers handler for its pushes. The
	// returned Subscription must be released on every exit path.
	Subscribe(roomID string, handler MessageHandler) (*Subscription, error)

	// Send transmits an outbound message envelope.
	Send(env Envelope) error
}

// Subscription is a scoped room membership. Release is idempotent.
type Subscription struct {
	roomID  string
	once    sync.Once
	release func()
}

// NewSubscription wraps a release function; custom Channel implementations
// use it to hand out scoped memberships.
func NewSubscription(roomID string, release func()) *Subscription {
	return &Subscription{roomID: roomID, release: release}
}

// RoomID reports which room this subscription belongs to.
func (s *Subscription) RoomID() string { return s.roomID }

// Release leaves the room and deregisters the handler. Safe to call more
// than once; only the first call has effect.
func (s *Subscription) Release() {
	s.once.Do(s.release)
}

// WSChannel implements Channel over a single gorilla websocket connection.
// Room memberships are reference-counted across subscriptions so several
// consumers can share a connection without leaking each other's rooms.
type WSChannel struct {
	log  *slog.Logger
	conn *websocket.Conn

	writeMu sync.Mutex // serializes writes to the socket

	mu     sync.Mutex
	rooms  map[string]map[int]MessageHandler
	nextID int
	closed bool
}

type outboundFrame struct {
	Type             string   `json:"type"`
	ConversationType string   `json:"conversationType,omitempty"`
	ConversationID   string   `json:"conversationId,omitempty"`
	Author           string   `json:"author,omitempty"`
	Text             string   `json:"text,omitempty"`
	Attachments      []string `json:"attachments,omitempty"`
}

// DialChannel connects to the platform websocket endpoint for the given user
// and starts the read loop. baseURL uses the http(s) scheme of the REST API.
func DialChannel(ctx context.Context, baseURL, userID string, log *slog.Logger) (*WSChannel, error) {
	if log == nil {
		log = slog.Default()
	}

	wsURL := strings.Replace(baseURL, "https://", "wss://", 1)
	wsURL = strings.Replace(wsURL, "http://", "ws://", 1)
	wsURL = strings.TrimRight(wsURL, "/") + "/api/v1/ws?userId=" + url.QueryEscape(userID)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, err
	}

	ch := &WSChannel{
		log:   log,
		conn:  conn,
		rooms: make(map[string]map[int]MessageHandler),
	}
	go ch.readLoop()
	return ch, nil
}

var _ Channel = (*WSChannel)(nil)

// Subscribe joins the room (first subscriber sends joinRoom) and registers
// the handler. Releasing the last subscription of a room sends leaveRoom.
func (c *WSChannel) Subscribe(roomID string, handler MessageHandler) (*Subscription, error) {
	if roomID == "" {
		return nil, errors.New("channel: roomID is required")
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, errors.New("channel: closed")
	}
	first := len(c.rooms[roomID]) == 0
	if c.rooms[roomID] == nil {
		c.rooms[roomID] = make(map[int]MessageHandler)
	}
	c.nextID++
	id := c.nextID
	c.rooms[roomID][id] = handler
	c.mu.Unlock()

	if first {
		if err := c.writeFrame(outboundFrame{Type: "joinRoom", ConversationID: roomID}); err != nil {
			c.mu.Lock()
			delete(c.rooms[roomID], id)
			if len(c.rooms[roomID]) == 0 {
				delete(c.rooms, roomID)
			}
			c.mu.Unlock()
			return nil, err
		}
	}

	return NewSubscription(roomID, func() {
		c.mu.Lock()
		delete(c.rooms[roomID], id)
		last := len(c.rooms[roomID]) == 0
		if last {
			delete(c.rooms, roomID)
		}
		closed := c.closed
		c.mu.Unlock()

		if last && !closed {
			if err := c.writeFrame(outboundFrame{Type: "leaveRoom", ConversationID: roomID}); err != nil {
				c.log.Warn("leaveRoom failed", "roomId", roomID, "error", err)
			}
		}
	}), nil
}

// Send transmits a sendMessage frame. The server echoes the persisted
// message back as a newMessage push to all room members.
func (c *WSChannel) Send(env Envelope) error {
	return c.writeFrame(outboundFrame{
		Type:             "sendMessage",
		ConversationType: env.ConversationType,
		ConversationID:   env.ConversationID,
		Author:           env.Author,
		Text:             env.Text,
		Attachments:      env.Attachments,
	})
}

// Close tears down the connection. Outstanding subscriptions become inert.
func (c *WSChannel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client closed"),
		time.Now().Add(closeWriteWait))
	c.writeMu.Unlock()
	return c.conn.Close()
}

func (c *WSChannel) writeFrame(frame outboundFrame) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *WSChannel) readLoop() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if !closed {
				c.log.Warn("channel read loop ended", "error", err)
			}
			return
		}

		var head struct {
			Type string `json:"type"`
		}
		if json.Unmarshal(data, &head) != nil {
			continue
		}

		switch head.Type {
		case "newMessage":
			var frame struct {
				Message Message `json:"message"`
			}
			if err := json.Unmarshal(data, &frame); err != nil {
				c.log.Warn("malformed newMessage frame", "error", err)
				continue
			}
			c.dispatch(frame.Message)
		case "error":
			var frame struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			}
			if json.Unmarshal(data, &frame) == nil {
				c.log.Warn("channel error frame", "code", frame.Code, "message", frame.Message)
			}
		default:
			// acks and unknown frames are ignored
		}
	}
}

func (c *WSChannel) dispatch(msg Message) {
	c.mu.Lock()
	room := c.rooms[msg.ConversationID]
	handlers := make([]MessageHandler, 0, len(room))
	for _, h := range room {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()

	// Called outside the lock, synchronously, so delivery order within one
	// room equals arrival order.
	for _, h := range handlers {
		h(msg)
	}
}
