package poll

import (
	"errors"
	"strings"
	"time"
)

// Poll lifecycle statuses.
const (
	StatusDraft  = "draft"
	StatusActive = "active"
	StatusClosed = "closed"
)

// Domain-level errors for poll behaviors.
var (
	ErrNotFound      = errors.New("poll: not found")
	ErrInvalidStatus = errors.New("poll: invalid status")
)

// Poll is a civic poll managed through the admin dashboard.
type Poll struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// ValidStatus reports whether s is a known poll status.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusActive, StatusClosed:
		return true
	}
	return false
}

// NewPoll validates and normalizes a poll before persistence.
func NewPoll(p Poll) (*Poll, error) {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return nil, errors.New("title is required")
	}

	if p.Status == "" {
		p.Status = StatusDraft
	}
	if !ValidStatus(p.Status) {
		return nil, ErrInvalidStatus
	}

	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}

	return &p, nil
}
