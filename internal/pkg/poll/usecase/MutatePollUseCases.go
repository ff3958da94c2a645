package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	poll "github.com/ShahiCrafts/civicpulse/internal/pkg/poll/domain"
	repository "github.com/ShahiCrafts/civicpulse/internal/pkg/poll/repository/port"
)

// CreatePollInput carries the data needed to create a poll.
type CreatePollInput struct {
	Title       string
	Description string
	Status      string
}

// CreatePollUseCase validates and persists a new poll.
type CreatePollUseCase struct {
	Repo repository.PollRepository
}

func NewCreatePollUseCase(repo repository.PollRepository) *CreatePollUseCase {
	return &CreatePollUseCase{Repo: repo}
}

func (uc *CreatePollUseCase) Execute(ctx context.Context, in CreatePollInput) (*poll.Poll, error) {
	p, err := poll.NewPoll(poll.Poll{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
	})
	if err != nil {
		return nil, err
	}

	id, err := uc.Repo.Create(ctx, *p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	p.ID = id
	return p, nil
}

// UpdatePollInput carries a full replacement of a poll's mutable fields.
type UpdatePollInput struct {
	ID          string
	Title       string
	Description string
	Status      string
}

// UpdatePollUseCase validates and applies an update to an existing poll.
type UpdatePollUseCase struct {
	Repo repository.PollRepository
}

func NewUpdatePollUseCase(repo repository.PollRepository) *UpdatePollUseCase {
	return &UpdatePollUseCase{Repo: repo}
}

func (uc *UpdatePollUseCase) Execute(ctx context.Context, in UpdatePollInput) (*poll.Poll, error) {
	if in.ID == "" {
		return nil, fmt.Errorf("poll id is required")
	}

	current, err := uc.Repo.Get(ctx, in.ID)
	if errors.Is(err, poll.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	updated, err := poll.NewPoll(poll.Poll{
		ID:          current.ID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		CreatedAt:   current.CreatedAt,
		UpdatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	if err := uc.Repo.Update(ctx, *updated); err != nil {
		if errors.Is(err, poll.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return updated, nil
}

// DeletePollInput identifies the poll to remove.
type DeletePollInput struct {
	ID string
}

// DeletePollUseCase removes a poll by id.
type DeletePollUseCase struct {
	Repo repository.PollRepository
}

func NewDeletePollUseCase(repo repository.PollRepository) *DeletePollUseCase {
	return &DeletePollUseCase{Repo: repo}
}

func (uc *DeletePollUseCase) Execute(ctx context.Context, in DeletePollInput) error {
	if in.ID == "" {
		return fmt.Errorf("poll id is required")
	}
	if err := uc.Repo.Delete(ctx, in.ID); err != nil {
		if errors.Is(err, poll.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
