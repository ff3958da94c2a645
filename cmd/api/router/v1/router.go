package v1

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "github.com/ShahiCrafts/civicpulse/internal/infrastructure/cache/port"
	queueport "github.com/ShahiCrafts/civicpulse/internal/infrastructure/queue/port"
	"github.com/ShahiCrafts/civicpulse/internal/infrastructure/realtime"
	discussionHTTP "github.com/ShahiCrafts/civicpulse/internal/pkg/discussion/presentation/http"
	pollHTTP "github.com/ShahiCrafts/civicpulse/internal/pkg/poll/presentation/http"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1.
func RegisterRoutes(r *gin.Engine, pool *pgxpool.Pool, q queueport.Client, cache cacheport.Cache, hub *realtime.Hub, log *slog.Logger) {
	v1 := r.Group("/api/v1")
	discussionHTTP.RegisterRoutes(v1, pool, hub, log)
	pollHTTP.RegisterRoutes(v1, pool, q, cache, log)
}
