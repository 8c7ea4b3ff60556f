package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jknack0/streamer-poc/internal/domain"
)

// MemoryPollRepository is an in-memory PollRepository. It backs tests and
// mirrors the Postgres implementation's contract, including the (nil, nil)
// absent convention.
type MemoryPollRepository struct {
	mu    sync.RWMutex
	polls map[string]domain.Poll
}

func NewMemoryPollRepository() *MemoryPollRepository {
	return &MemoryPollRepository{
		polls: make(map[string]domain.Poll),
	}
}

func (r *MemoryPollRepository) Create(ctx context.Context, id string, status domain.PollStatus) (*domain.Poll, error) {
	if !domain.IsValidStatus(status) {
		return nil, &domain.InvalidStatusError{Status: status}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.polls[id]; ok {
		return nil, domain.ErrPollExists
	}

	now := time.Now().UTC()
	poll := domain.Poll{
		ID:        id,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.polls[id] = poll

	return &poll, nil
}

func (r *MemoryPollRepository) FindByID(ctx context.Context, id string) (*domain.Poll, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	poll, ok := r.polls[id]
	if !ok {
		return nil, nil
	}
	return &poll, nil
}

func (r *MemoryPollRepository) SetStatus(ctx context.Context, id string, status domain.PollStatus) (*domain.Poll, error) {
	if !domain.IsValidStatus(status) {
		return nil, &domain.InvalidStatusError{Status: status}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	poll, ok := r.polls[id]
	if !ok {
		return nil, nil
	}

	poll.Status = status
	poll.UpdatedAt = time.Now().UTC()
	r.polls[id] = poll

	return &poll, nil
}

// MemoryVoteRepository is an in-memory VoteRepository enforcing the same
// one-vote-per-voter invariant as the Postgres ledger.
type MemoryVoteRepository struct {
	mu    sync.RWMutex
	votes map[string][]domain.Vote
	next  int64
}

func NewMemoryVoteRepository() *MemoryVoteRepository {
	return &MemoryVoteRepository{
		votes: make(map[string][]domain.Vote),
	}
}

func (r *MemoryVoteRepository) RecordVote(ctx context.Context, pollID, voterID, optionSlug string) error {
	voterID = strings.TrimSpace(voterID)
	if voterID == "" {
		return domain.ErrVoterIDRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, vote := range r.votes[pollID] {
		if vote.VoterID == voterID {
			return domain.ErrAlreadyVoted
		}
	}

	r.next++
	r.votes[pollID] = append(r.votes[pollID], domain.Vote{
		ID:         r.next,
		PollID:     pollID,
		VoterID:    voterID,
		OptionSlug: optionSlug,
		CreatedAt:  time.Now().UTC(),
	})

	return nil
}

func (r *MemoryVoteRepository) AllVotes(ctx context.Context, pollID string) ([]domain.Vote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	votes := r.votes[pollID]
	out := make([]domain.Vote, len(votes))
	copy(out, votes)
	return out, nil
}

func (r *MemoryVoteRepository) ClearVotes(ctx context.Context, pollID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.votes, pollID)
	return nil
}
