package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jknack0/streamer-poc/internal/domain"
	"github.com/jknack0/streamer-poc/pkg/database"
)

// uniqueViolation is the PostgreSQL error code for unique constraint failures.
const uniqueViolation = "23505"

type PostgresPollRepository struct {
	db *database.PostgresDB
}

func NewPostgresPollRepository(db *database.PostgresDB) *PostgresPollRepository {
	return &PostgresPollRepository{db: db}
}

// Create inserts a new poll row
func (r *PostgresPollRepository) Create(ctx context.Context, id string, status domain.PollStatus) (*domain.Poll, error) {
	if !domain.IsValidStatus(status) {
		return nil, &domain.InvalidStatusError{Status: status}
	}

	query := `
		INSERT INTO polls (id, status)
		VALUES ($1, $2)
		RETURNING id, status, created_at, updated_at
	`

	var poll domain.Poll
	err := r.db.Pool.QueryRow(ctx, query, id, status).Scan(
		&poll.ID,
		&poll.Status,
		&poll.CreatedAt,
		&poll.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrPollExists
		}
		return nil, fmt.Errorf("failed to create poll: %w", err)
	}

	return &poll, nil
}

// FindByID gets a poll by id
func (r *PostgresPollRepository) FindByID(ctx context.Context, id string) (*domain.Poll, error) {
	var poll domain.Poll
	query := `
		SELECT id, status, created_at, updated_at
		FROM polls
		WHERE id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&poll.ID,
		&poll.Status,
		&poll.CreatedAt,
		&poll.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}

	return &poll, nil
}

// SetStatus updates a poll's status and refreshes updated_at
func (r *PostgresPollRepository) SetStatus(ctx context.Context, id string, status domain.PollStatus) (*domain.Poll, error) {
	if !domain.IsValidStatus(status) {
		return nil, &domain.InvalidStatusError{Status: status}
	}

	query := `
		UPDATE polls
		SET status = $1, updated_at = now()
		WHERE id = $2
		RETURNING id, status, created_at, updated_at
	`

	var poll domain.Poll
	err := r.db.Pool.QueryRow(ctx, query, status, id).Scan(
		&poll.ID,
		&poll.Status,
		&poll.CreatedAt,
		&poll.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update poll status: %w", err)
	}

	return &poll, nil
}
