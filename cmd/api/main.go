package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	v1 "github.com/ShahiCrafts/civicpulse/cmd/api/router/v1"
	cacheadapter "github.com/ShahiCrafts/civicpulse/internal/infrastructure/cache/adapter"
	"github.com/ShahiCrafts/civicpulse/internal/infrastructure/database"
	queueadapter "github.com/ShahiCrafts/civicpulse/internal/infrastructure/queue/adapter"
	"github.com/ShahiCrafts/civicpulse/internal/infrastructure/realtime"
	"github.com/ShahiCrafts/civicpulse/internal/pkg/poll/application/task"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	if err := godotenv.Load(); err != nil {
		log.Warn(".env file not found or could not be loaded", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	pool, err := database.NewPoolFromEnv(ctx)
	cancel()
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	cache, err := cacheadapter.NewRedisAdapter()
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer cache.Close()

	queueClient, err := queueadapter.NewAsynqClientFromEnv()
	if err != nil {
		log.Error("failed to create queue client", "error", err)
		os.Exit(1)
	}
	defer queueClient.Close()

	hub := realtime.NewHub()
	defer hub.Close()

	// The worker runs inside the API process so invalidation tasks are
	// consumed without a separate deployment.
	worker, err := queueadapter.NewAsynqServer()
	if err != nil {
		log.Error("failed to create queue worker", "error", err)
		os.Exit(1)
	}
	task.RegisterInvalidatePollsTask(worker, cache, hub)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := worker.Run(runCtx); err != nil {
			log.Error("queue worker stopped", "error", err)
		}
	}()

	r := gin.Default()
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	v1.RegisterRoutes(r, pool, queueClient, cache, hub, log)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		<-runCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("api listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
