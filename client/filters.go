package client

import (
	"context"
	"sync"
	"time"
)

// SearchDebounce is the quiet window applied to free-typed search input.
const SearchDebounce = 300 * time.Millisecond

// PollsResource is the cache family name for poll queries.
const PollsResource = "polls"

// PollFilters manages the live filter state of a poll listing. The search
// term is debounced: the raw value updates on every keystroke for UI
// responsiveness, while the value used to key fetches commits only after
// 300ms of inactivity. Status, page and limit take effect immediately.
type PollFilters struct {
	search *Debounced[string]

	mu        sync.Mutex
	status    string
	page      int
	limit     int
	sortBy    string
	sortOrder string
}

// NewPollFilters constructs filters at page 1, limit 10, no search or
// status. onSearchCommit, when non-nil, fires each time a search term
// commits; consumers typically trigger a query from it.
func NewPollFilters(onSearchCommit func(string)) *PollFilters {
	return &PollFilters{
		search: NewDebounced("", SearchDebounce, onSearchCommit),
		page:   1,
		limit:  10,
	}
}

// SetSearch records a keystroke. The committed search value lags by the
// debounce window.
func (f *PollFilters) SetSearch(s string) {
	f.search.Set(s)
}

// Search returns the raw (un-debounced) search term for rendering.
func (f *PollFilters) Search() string {
	return f.search.Raw()
}

// SetStatus takes effect immediately.
func (f *PollFilters) SetStatus(status string) {
	f.mu.Lock()
	f.status = status
	f.mu.Unlock()
}

// SetPage takes effect immediately. Pages are 1-indexed; values below 1
// clamp to 1.
func (f *PollFilters) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	f.mu.Lock()
	f.page = page
	f.mu.Unlock()
}

// SetLimit takes effect immediately and resets the page to 1, since the old
// page number may be out of range against the new page size.
func (f *PollFilters) SetLimit(limit int) {
	if limit < 1 {
		limit = 1
	}
	f.mu.Lock()
	f.limit = limit
	f.page = 1
	f.mu.Unlock()
}

// SetSort takes effect immediately.
func (f *PollFilters) SetSort(sortBy, sortOrder string) {
	f.mu.Lock()
	f.sortBy = sortBy
	f.sortOrder = sortOrder
	f.mu.Unlock()
}

// Page returns the current 1-indexed page.
func (f *PollFilters) Page() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.page
}

// Key resolves the committed filter state into a QueryKey. Absent an
// explicit sort, polls order by creation time descending; the server breaks
// ties on id so identical keys paginate identically.
func (f *PollFilters) Key() QueryKey {
	f.mu.Lock()
	defer f.mu.Unlock()

	sortBy, sortOrder := f.sortBy, f.sortOrder
	if sortBy == "" {
		sortBy = "createdAt"
	}
	if sortOrder == "" {
		sortOrder = "desc"
	}

	return QueryKey{
		Resource:  PollsResource,
		Page:      f.page,
		Limit:     f.limit,
		Search:    f.search.Committed(),
		Status:    f.status,
		SortBy:    sortBy,
		SortOrder: sortOrder,
	}
}

// NewPollFetcher adapts a *Client into the Fetcher used by the Coordinator
// for the polls family: detail keys (non-empty ID) resolve through GetPoll,
// list keys through ListPolls.
func NewPollFetcher(c *Client) Fetcher {
	return FetcherFunc(func(ctx context.Context, key QueryKey) (any, error) {
		if key.ID != "" {
			return c.GetPoll(ctx, key.ID)
		}
		return c.ListPolls(ctx, PollListQuery{
			Page:      key.Page,
			Limit:     key.Limit,
			Search:    key.Search,
			Status:    key.Status,
			SortBy:    key.SortBy,
			SortOrder: key.SortOrder,
		})
	})
}
