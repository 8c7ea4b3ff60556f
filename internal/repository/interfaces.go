package repository

import (
	"context"

	"github.com/jknack0/streamer-poc/internal/domain"
)

// PollRepository defines the interface for poll record operations
type PollRepository interface {
	// Create inserts a new poll. Returns domain.ErrPollExists when the id is
	// taken and domain.InvalidStatusError for a status outside the enum.
	Create(ctx context.Context, id string, status domain.PollStatus) (*domain.Poll, error)

	// FindByID retrieves a poll by id. Returns (nil, nil) when absent.
	FindByID(ctx context.Context, id string) (*domain.Poll, error)

	// SetStatus updates a poll's status, refreshing updated_at. Returns
	// (nil, nil) when the poll is absent.
	SetStatus(ctx context.Context, id string, status domain.PollStatus) (*domain.Poll, error)
}

// VoteRepository defines the interface for vote ledger operations
type VoteRepository interface {
	// RecordVote appends one vote. Returns domain.ErrVoterIDRequired for an
	// empty voter id and domain.ErrAlreadyVoted when the (poll, voter) pair
	// already holds a vote.
	RecordVote(ctx context.Context, pollID, voterID, optionSlug string) error

	// AllVotes lists a poll's votes in insertion order.
	AllVotes(ctx context.Context, pollID string) ([]domain.Vote, error)

	// ClearVotes deletes every vote for a poll. Idempotent.
	ClearVotes(ctx context.Context, pollID string) error
}
