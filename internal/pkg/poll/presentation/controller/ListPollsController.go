package controller

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	cacheport "github.com/ShahiCrafts/civicpulse/internal/infrastructure/cache/port"
	pollcache "github.com/ShahiCrafts/civicpulse/internal/pkg/poll/cache"
	poll "github.com/ShahiCrafts/civicpulse/internal/pkg/poll/domain"
	repository "github.com/ShahiCrafts/civicpulse/internal/pkg/poll/repository/port"
	"github.com/ShahiCrafts/civicpulse/internal/pkg/poll/usecase"
)

// pollJSON is the wire shape of a poll.
type pollJSON struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toPollJSON(p poll.Poll) pollJSON {
	return pollJSON{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type listPollsData struct {
	Polls      []pollJSON `json:"polls"`
	TotalPolls int        `json:"totalPolls"`
	TotalPages int        `json:"totalPages"`
}

type listPollsResponse struct {
	Data listPollsData `json:"data"`
}

// ListPollsController serves the paginated/filtered poll listing, fronted by
// the Redis response cache. Cache keys are versioned so mutations retire the
// whole list family at once.
type ListPollsController struct {
	UC    *usecase.ListPollsUseCase
	Cache cacheport.Cache
	Log   *slog.Logger
}

func NewListPollsController(repo repository.PollRepository, cache cacheport.Cache, log *slog.Logger) *ListPollsController {
	if log == nil {
		log = slog.Default()
	}
	return &ListPollsController{UC: usecase.NewListPollsUseCase(repo), Cache: cache, Log: log}
}

func (h *ListPollsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		q := repository.ListQuery{
			Page:      intQuery(c, "page", 1),
			Limit:     intQuery(c, "limit", 10),
			Search:    c.Query("search"),
			Status:    c.Query("status"),
			SortBy:    c.DefaultQuery("sortBy", "createdAt"),
			SortOrder: c.DefaultQuery("sortOrder", "desc"),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		// Cache lookup is best-effort: a broken cache degrades to the DB.
		version, verErr := pollcache.Version(ctx, h.Cache)
		key := pollcache.ListKey(version, q)
		if verErr == nil {
			if cached, err := h.Cache.Get(ctx, key); err == nil {
				c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
				return
			} else if err != cacheport.ErrMiss {
				h.Log.Warn("poll list cache read failed", "error", err)
			}
		}

		res, err := h.UC.Execute(ctx, usecase.ListPollsInput{
			Page:      q.Page,
			Limit:     q.Limit,
			Search:    q.Search,
			Status:    q.Status,
			SortBy:    q.SortBy,
			SortOrder: q.SortOrder,
		})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"message": err.Error()})
			return
		}

		polls := make([]pollJSON, 0, len(res.Polls))
		for _, p := range res.Polls {
			polls = append(polls, toPollJSON(p))
		}
		body := listPollsResponse{Data: listPollsData{
			Polls:      polls,
			TotalPolls: res.TotalPolls,
			TotalPages: res.TotalPages,
		}}

		raw, err := json.Marshal(body)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to encode response"})
			return
		}
		if verErr == nil {
			if err := h.Cache.Set(ctx, key, string(raw), pollcache.ListTTL); err != nil {
				h.Log.Warn("poll list cache write failed", "error", err)
			}
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
	}
}

func intQuery(c *gin.Context, name string, fallback int) int {
	if v := c.Query(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
