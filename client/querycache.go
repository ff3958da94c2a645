package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// QueryKey structurally identifies one cached server query. Two keys with
// equal field values address the same cache entry regardless of where they
// were built. A non-empty ID marks a single-resource (detail) query.
type QueryKey struct {
	Resource  string
	ID        string
	Page      int
	Limit     int
	Search    string
	Status    string
	SortBy    string
	SortOrder string
}

// CacheEntry is one cached result set. Stale entries keep serving their data
// while a background revalidation refreshes them.
type CacheEntry struct {
	Key       QueryKey
	Data      any
	FetchedAt time.Time
	Stale     bool
}

// Fetcher resolves a QueryKey into fresh data from the server.
type Fetcher interface {
	Fetch(ctx context.Context, key QueryKey) (any, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, key QueryKey) (any, error)

func (f FetcherFunc) Fetch(ctx context.Context, key QueryKey) (any, error) { return f(ctx, key) }

// Mutation operations understood by the Coordinator.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Freshness windows applied by default: list pages go stale after a minute,
// single resources after five.
const (
	DefaultListFreshFor   = 60 * time.Second
	DefaultDetailFreshFor = 300 * time.Second
)

// Coordinator turns filter/sort/page parameter tuples into cached,
// invalidation-aware server queries with stale-while-revalidate semantics.
// One Coordinator is shared process-wide; entries are keyed structurally and
// indexed by resource family so a mutation invalidates exactly its family.
type Coordinator struct {
	fetcher Fetcher
	log     *slog.Logger

	listFreshFor   time.Duration
	detailFreshFor time.Duration
	now            func() time.Time

	mu       sync.Mutex
	entries  map[QueryKey]*CacheEntry
	families map[string]map[QueryKey]struct{}
	inflight map[QueryKey]struct{}
}

// CoordinatorOption customizes a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithFreshness overrides the list and detail freshness windows.
func WithFreshness(list, detail time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		c.listFreshFor = list
		c.detailFreshFor = detail
	}
}

// WithClock overrides the time source. Tests use it to age entries without
// sleeping.
func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) { c.now = now }
}

// NewCoordinator constructs a Coordinator over the given Fetcher.
func NewCoordinator(fetcher Fetcher, log *slog.Logger, opts ...CoordinatorOption) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	c := &Coordinator{
		fetcher:        fetcher,
		log:            log,
		listFreshFor:   DefaultListFreshFor,
		detailFreshFor: DefaultDetailFreshFor,
		now:            time.Now,
		entries:        make(map[QueryKey]*CacheEntry),
		families:       make(map[string]map[QueryKey]struct{}),
		inflight:       make(map[QueryKey]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query returns data for the key. A fresh cache hit returns without any
// fetch; an expired or stale hit returns the cached value immediately and
// triggers one background revalidation; a miss fetches synchronously.
func (c *Coordinator) Query(ctx context.Context, key QueryKey) (any, error) {
	if key.Resource == "" {
		return nil, fmt.Errorf("querycache: key.Resource is required")
	}

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		data := e.Data
		fresh := !e.Stale && c.now().Sub(e.FetchedAt) < c.freshFor(key)
		if !fresh {
			c.revalidateLocked(ctx, key)
		}
		c.mu.Unlock()
		return data, nil
	}
	c.mu.Unlock()

	return c.fetch(ctx, key)
}

// Mutate runs do and, on success, invalidates the resource family: every
// entry for resource is marked stale and scheduled for revalidation, and for
// update/delete the detail entry keyed by id is dropped outright. Concurrent
// mutations are not coalesced; each triggers its own invalidation.
func (c *Coordinator) Mutate(ctx context.Context, op string, resource string, id string, do func(context.Context) error) error {
	if resource == "" {
		return fmt.Errorf("querycache: resource is required")
	}
	if err := do(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	if op == OpDelete {
		// Refetching a deleted resource would just 404; drop its entry.
		c.removeLocked(QueryKey{Resource: resource, ID: id})
	}
	for key := range c.families[resource] {
		if e, ok := c.entries[key]; ok {
			e.Stale = true
		}
		c.revalidateLocked(ctx, key)
	}
	c.mu.Unlock()
	return nil
}

// Entry exposes the cache entry for a key, if present. Mostly useful for
// instrumentation and tests.
func (c *Coordinator) Entry(key QueryKey) (*CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e, ok
}

func (c *Coordinator) freshFor(key QueryKey) time.Duration {
	if key.ID != "" {
		return c.detailFreshFor
	}
	return c.listFreshFor
}

// revalidateLocked schedules one background refetch for the key unless a
// revalidation is already in flight. Caller holds c.mu.
func (c *Coordinator) revalidateLocked(ctx context.Context, key QueryKey) {
	if _, busy := c.inflight[key]; busy {
		return
	}
	c.inflight[key] = struct{}{}

	// The refetch must outlive the triggering call.
	bg := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			c.mu.Lock()
			delete(c.inflight, key)
			c.mu.Unlock()
		}()
		if _, err := c.fetch(bg, key); err != nil {
			c.log.Warn("background revalidation failed", "resource", key.Resource, "error", err)
		}
	}()
}

func (c *Coordinator) fetch(ctx context.Context, key QueryKey) (any, error) {
	data, err := c.fetcher.Fetch(ctx, key)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = &CacheEntry{Key: key, Data: data, FetchedAt: c.now()}
	family := c.families[key.Resource]
	if family == nil {
		family = make(map[QueryKey]struct{})
		c.families[key.Resource] = family
	}
	family[key] = struct{}{}
	c.mu.Unlock()
	return data, nil
}

// removeLocked drops an entry and its family index slot. Caller holds c.mu.
func (c *Coordinator) removeLocked(key QueryKey) {
	delete(c.entries, key)
	if family, ok := c.families[key.Resource]; ok {
		delete(family, key)
		if len(family) == 0 {
			delete(c.families, key.Resource)
		}
	}
}
