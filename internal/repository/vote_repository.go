package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jknack0/streamer-poc/internal/domain"
	"github.com/jknack0/streamer-poc/pkg/database"
)

type PostgresVoteRepository struct {
	db *database.PostgresDB
}

func NewPostgresVoteRepository(db *database.PostgresDB) *PostgresVoteRepository {
	return &PostgresVoteRepository{db: db}
}

// RecordVote inserts exactly one vote for the (poll, voter) pair. The
// existence check and the insert run in one transaction; the unique
// constraint on (poll_id, voter_id) backs the check against concurrent
// submissions racing past it.
func (r *PostgresVoteRepository) RecordVote(ctx context.Context, pollID, voterID, optionSlug string) error {
	voterID = strings.TrimSpace(voterID)
	if voterID == "" {
		return domain.ErrVoterIDRequired
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM poll_votes WHERE poll_id = $1 AND voter_id = $2)`,
		pollID, voterID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check existing vote: %w", err)
	}
	if exists {
		return domain.ErrAlreadyVoted
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO poll_votes (poll_id, voter_id, option_slug) VALUES ($1, $2, $3)`,
		pollID, voterID, optionSlug,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrAlreadyVoted
		}
		return fmt.Errorf("failed to record vote: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit vote: %w", err)
	}

	return nil
}

// AllVotes lists a poll's votes in insertion order
func (r *PostgresVoteRepository) AllVotes(ctx context.Context, pollID string) ([]domain.Vote, error) {
	query := `
		SELECT id, poll_id, voter_id, option_slug, created_at
		FROM poll_votes
		WHERE poll_id = $1
		ORDER BY id ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	defer rows.Close()

	var votes []domain.Vote
	for rows.Next() {
		var vote domain.Vote
		err := rows.Scan(
			&vote.ID,
			&vote.PollID,
			&vote.VoterID,
			&vote.OptionSlug,
			&vote.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, vote)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read votes: %w", err)
	}

	return votes, nil
}

// ClearVotes deletes all votes for a poll
func (r *PostgresVoteRepository) ClearVotes(ctx context.Context, pollID string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM poll_votes WHERE poll_id = $1`, pollID)
	if err != nil {
		return fmt.Errorf("failed to clear votes: %w", err)
	}
	return nil
}
