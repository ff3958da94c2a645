package usecase

import (
	"context"
	"errors"
	"fmt"

	poll "github.com/ShahiCrafts/civicpulse/internal/pkg/poll/domain"
	repository "github.com/ShahiCrafts/civicpulse/internal/pkg/poll/repository/port"
)

// ListPollsInput carries listing parameters as received from the client.
// Zero values resolve to defaults: page 1, limit 10, sort createdAt desc.
type ListPollsInput struct {
	Page      int
	Limit     int
	Search    string
	Status    string
	SortBy    string
	SortOrder string
}

// ListPollsUseCase resolves defaults and fetches one page of polls.
type ListPollsUseCase struct {
	Repo repository.PollRepository
}

func NewListPollsUseCase(repo repository.PollRepository) *ListPollsUseCase {
	return &ListPollsUseCase{Repo: repo}
}

func (uc *ListPollsUseCase) Execute(ctx context.Context, in ListPollsInput) (*repository.ListResult, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit <= 0 {
		in.Limit = 10
	}
	if in.SortBy == "" {
		in.SortBy = "createdAt"
	}
	if in.SortOrder == "" {
		in.SortOrder = "desc"
	}
	if in.Status != "" && !poll.ValidStatus(in.Status) {
		return nil, poll.ErrInvalidStatus
	}

	res, err := uc.Repo.List(ctx, repository.ListQuery{
		Page:      in.Page,
		Limit:     in.Limit,
		Search:    in.Search,
		Status:    in.Status,
		SortBy:    in.SortBy,
		SortOrder: in.SortOrder,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return res, nil
}

// GetPollInput identifies a single poll.
type GetPollInput struct {
	ID string
}

// GetPollUseCase fetches one poll by id.
type GetPollUseCase struct {
	Repo repository.PollRepository
}

func NewGetPollUseCase(repo repository.PollRepository) *GetPollUseCase {
	return &GetPollUseCase{Repo: repo}
}

func (uc *GetPollUseCase) Execute(ctx context.Context, in GetPollInput) (*poll.Poll, error) {
	if in.ID == "" {
		return nil, fmt.Errorf("poll id is required")
	}
	p, err := uc.Repo.Get(ctx, in.ID)
	if errors.Is(err, poll.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return p, nil
}
