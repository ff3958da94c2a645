package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "github.com/ShahiCrafts/civicpulse/internal/infrastructure/cache/port"
	queueport "github.com/ShahiCrafts/civicpulse/internal/infrastructure/queue/port"
	"github.com/ShahiCrafts/civicpulse/internal/pkg/poll/presentation/controller"
	"github.com/ShahiCrafts/civicpulse/internal/pkg/poll/repository/adapter"
)

// RegisterRoutes registers the admin poll endpoints under the given router group.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, q queueport.Client, cache cacheport.Cache, log *slog.Logger) {
	repo := adapter.NewPgPollRepository(pool)

	listCtl := controller.NewListPollsController(repo, cache, log)
	getCtl := controller.NewGetPollController(repo, cache, log)
	createCtl := controller.NewCreatePollController(repo, q, cache, log)
	updateCtl := controller.NewUpdatePollController(repo, q, cache, log)
	deleteCtl := controller.NewDeletePollController(repo, q, cache, log)

	admin := g.Group("/admin")

	// GET /api/v1/admin/polls?page=&limit=&search=&status=&sortBy=&sortOrder=
	admin.GET("/polls", listCtl.Handle())
	admin.GET("/polls/:id", getCtl.Handle())
	admin.POST("/polls", createCtl.Handle())
	admin.PUT("/polls/:id", updateCtl.Handle())
	admin.DELETE("/polls/:id", deleteCtl.Handle())
}
