package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ShahiCrafts/civicpulse/internal/infrastructure/realtime"
	"github.com/ShahiCrafts/civicpulse/internal/pkg/discussion/presentation/controller"
	"github.com/ShahiCrafts/civicpulse/internal/pkg/discussion/repository/adapter"
)

// RegisterRoutes registers discussion endpoints under the given router group.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, hub *realtime.Hub, log *slog.Logger) {
	repo := adapter.NewPgMessageRepository(pool)

	historyCtl := controller.NewGetHistoryController(repo)
	socketCtl := controller.NewSocketController(repo, hub, log)

	// GET /api/v1/messages?conversationType=&conversationId= -> ordered history
	g.GET("/messages", historyCtl.Handle())

	// GET /api/v1/ws?userId= -> websocket endpoint for realtime traffic
	g.GET("/ws", socketCtl.Handle())
}
