package controller

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	cacheport "github.com/ShahiCrafts/civicpulse/internal/infrastructure/cache/port"
	queueport "github.com/ShahiCrafts/civicpulse/internal/infrastructure/queue/port"
	"github.com/ShahiCrafts/civicpulse/internal/pkg/poll/application/task"
	pollcache "github.com/ShahiCrafts/civicpulse/internal/pkg/poll/cache"
	repository "github.com/ShahiCrafts/civicpulse/internal/pkg/poll/repository/port"
	"github.com/ShahiCrafts/civicpulse/internal/pkg/poll/usecase"
)

// invalidator schedules cache invalidation for a poll mutation through the
// queue, falling back to synchronous invalidation when enqueueing fails so a
// mutation can never leave stale data past the enqueue attempt.
type invalidator struct {
	Q     queueport.Client
	Cache cacheport.Cache
	Log   *slog.Logger
}

func (inv invalidator) invalidate(ctx context.Context, operation string, pollID string) {
	payload, err := json.Marshal(task.InvalidatePollsPayload{PollID: pollID, Operation: operation})
	if err == nil && inv.Q != nil {
		opts := queueport.EnqueueOption{Queue: "polls", MaxRetry: 10}
		if _, err = inv.Q.Enqueue(ctx, queueport.Task{Type: task.InvalidatePollsTaskType, Payload: payload}, opts); err == nil {
			return
		}
	}
	inv.Log.Warn("poll invalidation enqueue failed, invalidating inline", "error", err)
	if err := pollcache.Invalidate(ctx, inv.Cache, pollID); err != nil {
		inv.Log.Error("inline poll invalidation failed", "error", err)
	}
}

type pollRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// CreatePollController handles poll creation.
type CreatePollController struct {
	UC  *usecase.CreatePollUseCase
	inv invalidator
}

func NewCreatePollController(repo repository.PollRepository, q queueport.Client, cache cacheport.Cache, log *slog.Logger) *CreatePollController {
	if log == nil {
		log = slog.Default()
	}
	return &CreatePollController{
		UC:  usecase.NewCreatePollUseCase(repo),
		inv: invalidator{Q: q, Cache: cache, Log: log},
	}
}

func (h *CreatePollController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req pollRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		p, err := h.UC.Execute(ctx, usecase.CreatePollInput{
			Title:       req.Title,
			Description: req.Description,
			Status:      req.Status,
		})
		if err != nil {
			writePollError(c, err)
			return
		}

		h.inv.invalidate(ctx, "create", p.ID)
		c.JSON(http.StatusCreated, newPollResponse(*p))
	}
}

// UpdatePollController handles full updates of a poll.
type UpdatePollController struct {
	UC  *usecase.UpdatePollUseCase
	inv invalidator
}

func NewUpdatePollController(repo repository.PollRepository, q queueport.Client, cache cacheport.Cache, log *slog.Logger) *UpdatePollController {
	if log == nil {
		log = slog.Default()
	}
	return &UpdatePollController{
		UC:  usecase.NewUpdatePollUseCase(repo),
		inv: invalidator{Q: q, Cache: cache, Log: log},
	}
}

func (h *UpdatePollController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "poll id is required"})
			return
		}

		var req pollRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		p, err := h.UC.Execute(ctx, usecase.UpdatePollInput{
			ID:          id,
			Title:       req.Title,
			Description: req.Description,
			Status:      req.Status,
		})
		if err != nil {
			writePollError(c, err)
			return
		}

		h.inv.invalidate(ctx, "update", p.ID)
		c.JSON(http.StatusOK, newPollResponse(*p))
	}
}

// DeletePollController handles poll deletion.
type DeletePollController struct {
	UC  *usecase.DeletePollUseCase
	inv invalidator
}

func NewDeletePollController(repo repository.PollRepository, q queueport.Client, cache cacheport.Cache, log *slog.Logger) *DeletePollController {
	if log == nil {
		log = slog.Default()
	}
	return &DeletePollController{
		UC:  usecase.NewDeletePollUseCase(repo),
		inv: invalidator{Q: q, Cache: cache, Log: log},
	}
}

func (h *DeletePollController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "poll id is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := h.UC.Execute(ctx, usecase.DeletePollInput{ID: id}); err != nil {
			writePollError(c, err)
			return
		}

		h.inv.invalidate(ctx, "delete", id)
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id}})
	}
}
