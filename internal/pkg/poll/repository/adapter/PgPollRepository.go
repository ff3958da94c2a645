package adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	poll "github.com/ShahiCrafts/civicpulse/internal/pkg/poll/domain"
	repository "github.com/ShahiCrafts/civicpulse/internal/pkg/poll/repository/port"
)

type PgPollRepository struct {
	pool *pgxpool.Pool
}

func NewPgPollRepository(pool *pgxpool.Pool) *PgPollRepository {
	return &PgPollRepository{pool: pool}
}

// sortColumns whitelists client-supplied sort fields against real columns.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
	"status":    "status",
}

func (r *PgPollRepository) List(ctx context.Context, q repository.ListQuery) (*repository.ListResult, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgPollRepository: nil pool")
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if q.SortOrder == "asc" {
		direction = "ASC"
	}

	where := "WHERE ($1 = '' OR title ILIKE '%' || $1 || '%') AND ($2 = '' OR status = $2)"

	var total int
	if err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM poll.poll "+where, q.Search, q.Status,
	).Scan(&total); err != nil {
		return nil, err
	}

	// Secondary order on id keeps pagination stable across equal sort keys.
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT id::text, title, description, status, created_at, updated_at
		FROM poll.poll
		%s
		ORDER BY %s %s, id ASC
		LIMIT $3 OFFSET $4
	`, where, column, direction), q.Search, q.Status, q.Limit, (q.Page-1)*q.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var polls []poll.Poll
	for rows.Next() {
		var p poll.Poll
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		polls = append(polls, p)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	totalPages := (total + q.Limit - 1) / q.Limit
	return &repository.ListResult{Polls: polls, TotalPolls: total, TotalPages: totalPages}, nil
}

func (r *PgPollRepository) Get(ctx context.Context, id string) (*poll.Poll, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgPollRepository: nil pool")
	}
	var p poll.Poll
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, title, description, status, created_at, updated_at
		FROM poll.poll
		WHERE id = $1::uuid
	`, id).Scan(&p.ID, &p.Title, &p.Description, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, poll.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PgPollRepository) Create(ctx context.Context, p poll.Poll) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgPollRepository: nil pool")
	}
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO poll.poll (title, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id::text
	`, p.Title, p.Description, p.Status, p.CreatedAt, p.UpdatedAt).Scan(&id)
	return id, err
}

func (r *PgPollRepository) Update(ctx context.Context, p poll.Poll) error {
	if r == nil || r.pool == nil {
		return errors.New("PgPollRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE poll.poll
		SET title = $2, description = $3, status = $4, updated_at = $5
		WHERE id = $1::uuid
	`, p.ID, p.Title, p.Description, p.Status, p.UpdatedAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return poll.ErrNotFound
	}
	return nil
}

func (r *PgPollRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgPollRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, "DELETE FROM poll.poll WHERE id = $1::uuid", id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return poll.ErrNotFound
	}
	return nil
}
