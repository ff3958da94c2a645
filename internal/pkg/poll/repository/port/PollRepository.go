package repository

import (
	"context"

	poll "github.com/ShahiCrafts/civicpulse/internal/pkg/poll/domain"
)

// ListQuery carries the fully-resolved parameters of a paginated poll listing.
// Page is 1-indexed.
type ListQuery struct {
	Page      int
	Limit     int
	Search    string
	Status    string
	SortBy    string
	SortOrder string
}

// ListResult is one page of polls plus pagination totals.
type ListResult struct {
	Polls      []poll.Poll
	TotalPolls int
	TotalPages int
}

// PollRepository defines persistence operations for the poll domain.
// List ordering must be deterministic: equal sort keys break by poll id so
// repeated queries with identical parameters paginate identically.
type PollRepository interface {
	List(ctx context.Context, q ListQuery) (*ListResult, error)
	Get(ctx context.Context, id string) (*poll.Poll, error)
	Create(ctx context.Context, p poll.Poll) (string, error)
	Update(ctx context.Context, p poll.Poll) error
	Delete(ctx context.Context, id string) error
}
