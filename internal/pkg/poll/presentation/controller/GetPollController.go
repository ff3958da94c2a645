package controller

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	cacheport "github.com/ShahiCrafts/civicpulse/internal/infrastructure/cache/port"
	pollcache "github.com/ShahiCrafts/civicpulse/internal/pkg/poll/cache"
	poll "github.com/ShahiCrafts/civicpulse/internal/pkg/poll/domain"
	repository "github.com/ShahiCrafts/civicpulse/internal/pkg/poll/repository/port"
	"github.com/ShahiCrafts/civicpulse/internal/pkg/poll/usecase"
)

type pollResponse struct {
	Data struct {
		Poll pollJSON `json:"poll"`
	} `json:"data"`
}

func newPollResponse(p poll.Poll) pollResponse {
	var res pollResponse
	res.Data.Poll = toPollJSON(p)
	return res
}

// GetPollController serves a single poll, fronted by the detail cache.
type GetPollController struct {
	UC    *usecase.GetPollUseCase
	Cache cacheport.Cache
	Log   *slog.Logger
}

func NewGetPollController(repo repository.PollRepository, cache cacheport.Cache, log *slog.Logger) *GetPollController {
	if log == nil {
		log = slog.Default()
	}
	return &GetPollController{UC: usecase.NewGetPollUseCase(repo), Cache: cache, Log: log}
}

func (h *GetPollController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "poll id is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		key := pollcache.DetailKey(id)
		if cached, err := h.Cache.Get(ctx, key); err == nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
			return
		} else if err != cacheport.ErrMiss {
			h.Log.Warn("poll detail cache read failed", "error", err)
		}

		p, err := h.UC.Execute(ctx, usecase.GetPollInput{ID: id})
		if err != nil {
			writePollError(c, err)
			return
		}

		raw, err := json.Marshal(newPollResponse(*p))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to encode response"})
			return
		}
		if err := h.Cache.Set(ctx, key, string(raw), pollcache.DetailTTL); err != nil {
			h.Log.Warn("poll detail cache write failed", "error", err)
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
	}
}

func writePollError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, poll.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, usecase.ErrPersistence):
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"message": err.Error()})
}
