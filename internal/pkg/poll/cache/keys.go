package pollcache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ShahiCrafts/civicpulse/internal/infrastructure/cache/port"
	repository "github.com/ShahiCrafts/civicpulse/internal/pkg/poll/repository/port"
)

// TTLs mirror the client-side freshness windows: list pages go stale fast,
// single polls survive longer.
const (
	ListTTL   = 60 * time.Second
	DetailTTL = 300 * time.Second
)

// versionKey namespaces every list cache key. Bumping it retires all list
// pages at once without tracking individual keys.
const versionKey = "polls:ver"

// DetailKey is the cache key for one poll's serialized response.
func DetailKey(id string) string {
	return "polls:detail:" + id
}

// ListKey builds the versioned cache key for one page of the poll listing.
func ListKey(version int64, q repository.ListQuery) string {
	return fmt.Sprintf("polls:v%d:p%d:l%d:s%s:st%s:sb%s:so%s",
		version, q.Page, q.Limit, q.Search, q.Status, q.SortBy, q.SortOrder)
}

// Version reads the current list namespace version. A missing key reads as
// version zero so cold caches still produce stable keys.
func Version(ctx context.Context, cache port.Cache) (int64, error) {
	raw, err := cache.Get(ctx, versionKey)
	if err == port.ErrMiss {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("pollcache: corrupt version key: %w", err)
	}
	return v, nil
}

// Invalidate retires every cached list page and, when pollID is non-empty,
// the poll's detail entry. Unrelated resource families are untouched.
func Invalidate(ctx context.Context, cache port.Cache, pollID string) error {
	if _, err := cache.Incr(ctx, versionKey); err != nil {
		return fmt.Errorf("pollcache: bump version: %w", err)
	}
	if pollID != "" {
		if _, err := cache.Del(ctx, DetailKey(pollID)); err != nil {
			return fmt.Errorf("pollcache: drop detail: %w", err)
		}
	}
	return nil
}
