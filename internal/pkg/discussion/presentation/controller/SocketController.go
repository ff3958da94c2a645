package controller

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ShahiCrafts/civicpulse/internal/infrastructure/realtime"
	repository "github.com/ShahiCrafts/civicpulse/internal/pkg/discussion/repository/port"
	"github.com/ShahiCrafts/civicpulse/internal/pkg/discussion/usecase"
)

// SocketController handles the websocket endpoint for realtime conversation
// traffic. Frames mirror the client channel contract: joinRoom, leaveRoom and
// sendMessage inbound; newMessage, acks and errors outbound.
type SocketController struct {
	hub             *realtime.Hub
	postMessageUC   *usecase.PostMessageUseCase
	log             *slog.Logger
	inflightTimeout time.Duration
}

func NewSocketController(repo repository.MessageRepository, hub *realtime.Hub, log *slog.Logger) *SocketController {
	if log == nil {
		log = slog.Default()
	}
	return &SocketController{
		hub:             hub,
		postMessageUC:   usecase.NewPostMessageUseCase(repo),
		log:             log,
		inflightTimeout: 5 * time.Second,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now; plug a proper checker when auth lands.
		return true
	},
}

type inboundFrame struct {
	Type             string   `json:"type"`
	ConversationType string   `json:"conversationType,omitempty"`
	ConversationID   string   `json:"conversationId,omitempty"`
	Author           string   `json:"author,omitempty"`
	Text             string   `json:"text,omitempty"`
	Attachments      []string `json:"attachments,omitempty"`
}

type errorFrame struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ackFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversationId,omitempty"`
}

type newMessageFrame struct {
	Type    string      `json:"type"`
	Message messageJSON `json:"message"`
}

const defaultReadTimeout = 60 * time.Second

// Handle upgrades the HTTP connection and processes frames until the client
// disconnects. Detaching the connection leaves every joined room.
func (ctl *SocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("userId")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "userId is required"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response.
			return
		}

		conn := realtime.NewConnection(userID, ws)
		ctl.hub.Attach(conn)
		defer func() {
			ctl.hub.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(1 << 20)
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		ctl.reply(conn, ackFrame{Type: "connected"})

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				ctl.replyError(conn, "read_error", err.Error())
				return
			}

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "bad_request", "invalid payload")
				continue
			}

			switch frame.Type {
			case "joinRoom":
				ctl.handleJoin(conn, frame)
			case "leaveRoom":
				ctl.handleLeave(conn, frame)
			case "sendMessage":
				ctl.handleSendMessage(c, conn, userID, frame)
			default:
				ctl.replyError(conn, "unsupported_type", "unknown frame type")
			}
		}
	}
}

func (ctl *SocketController) handleJoin(conn *realtime.Connection, frame inboundFrame) {
	if frame.ConversationID == "" {
		ctl.replyError(conn, "bad_request", "conversationId is required")
		return
	}
	ctl.hub.Join(frame.ConversationID, conn)
	ctl.reply(conn, ackFrame{Type: "joined", ConversationID: frame.ConversationID})
}

func (ctl *SocketController) handleLeave(conn *realtime.Connection, frame inboundFrame) {
	if frame.ConversationID == "" {
		ctl.replyError(conn, "bad_request", "conversationId is required")
		return
	}
	ctl.hub.Leave(frame.ConversationID, conn)
	ctl.reply(conn, ackFrame{Type: "left", ConversationID: frame.ConversationID})
}

func (ctl *SocketController) handleSendMessage(c *gin.Context, conn *realtime.Connection, userID string, frame inboundFrame) {
	if frame.ConversationID == "" {
		ctl.replyError(conn, "bad_request", "conversationId is required")
		return
	}

	author := frame.Author
	if author == "" {
		author = userID
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	msg, err := ctl.postMessageUC.Execute(ctx, usecase.PostMessageInput{
		ConversationType: frame.ConversationType,
		ConversationID:   frame.ConversationID,
		Author:           author,
		Text:             frame.Text,
		Attachments:      frame.Attachments,
	})
	if err != nil {
		ctl.handleUseCaseError(conn, err)
		return
	}

	out := newMessageFrame{Type: "newMessage", Message: toMessageJSON(*msg)}
	payload, err := json.Marshal(out)
	if err != nil {
		ctl.replyError(conn, "internal_error", "failed to encode message")
		return
	}

	// Every room member gets the echo, sender included; the sender's log
	// only appends on this echo.
	delivered := ctl.hub.Broadcast(frame.ConversationID, payload)
	ctl.log.Debug("message broadcast",
		"conversationId", frame.ConversationID,
		"messageId", msg.ID,
		"delivered", delivered)
}

func (ctl *SocketController) handleUseCaseError(conn *realtime.Connection, err error) {
	switch {
	case errors.Is(err, usecase.ErrPersistence):
		ctl.replyError(conn, "internal_error", "unexpected persistence error")
	default:
		ctl.replyError(conn, "bad_request", err.Error())
	}
}

func (ctl *SocketController) reply(conn *realtime.Connection, frame any) {
	if payload, err := json.Marshal(frame); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *SocketController) replyError(conn *realtime.Connection, code string, message string) {
	ctl.reply(conn, errorFrame{Type: "error", Code: code, Message: message})
}
