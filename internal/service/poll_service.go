package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jknack0/streamer-poc/internal/domain"
	"github.com/jknack0/streamer-poc/internal/repository"
	apperrors "github.com/jknack0/streamer-poc/pkg/errors"
)

// PollService orchestrates poll lifecycle and vote submission against the
// record store and the vote ledger, and pushes resulting state to the
// notifier after every mutation.
type PollService struct {
	polls    repository.PollRepository
	votes    repository.VoteRepository
	guard    *VoteGuard
	notifier Notifier
	logger   *zap.Logger
}

func NewPollService(
	polls repository.PollRepository,
	votes repository.VoteRepository,
	guard *VoteGuard,
	notifier Notifier,
	logger *zap.Logger,
) *PollService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &PollService{
		polls:    polls,
		votes:    votes,
		guard:    guard,
		notifier: notifier,
		logger:   logger,
	}
}

// CreatePoll creates a poll, generating an id when the caller omits one.
func (s *PollService) CreatePoll(ctx context.Context, id string, status domain.PollStatus) (*domain.Poll, error) {
	if id = strings.TrimSpace(id); id == "" {
		id = uuid.NewString()
	}
	if status == "" {
		status = domain.StatusIdle
	}

	poll, err := s.polls.Create(ctx, id, status)
	if err != nil {
		if errors.Is(err, domain.ErrPollExists) {
			return nil, apperrors.NewConflictError("Poll already exists")
		}
		if domain.IsInvalidStatus(err) {
			return nil, apperrors.NewValidationError(err.Error(), nil)
		}
		s.logger.Error("failed to create poll", zap.String("poll_id", id), zap.Error(err))
		return nil, apperrors.NewInternalError("Failed to create poll", err)
	}

	s.logger.Info("poll created",
		zap.String("poll_id", poll.ID),
		zap.String("status", string(poll.Status)))

	return poll, nil
}

// GetPoll fetches a poll by id.
func (s *PollService) GetPoll(ctx context.Context, id string) (*domain.Poll, error) {
	poll, err := s.polls.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to get poll", err)
	}
	if poll == nil {
		return nil, apperrors.NewNotFoundError("Poll not found")
	}
	return poll, nil
}

// UpdateStatus transitions a poll's status and broadcasts the new snapshot.
// The status value is validated before the store is touched so a bad value
// against an unknown poll reports the validation error.
func (s *PollService) UpdateStatus(ctx context.Context, id string, status domain.PollStatus) (*domain.Poll, error) {
	if !domain.IsValidStatus(status) {
		return nil, apperrors.NewValidationError("Status must be one of idle, active, stopped", nil)
	}

	poll, err := s.polls.SetStatus(ctx, id, status)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to update poll status", err)
	}
	if poll == nil {
		return nil, apperrors.NewNotFoundError("Poll not found")
	}

	s.logger.Info("poll status updated",
		zap.String("poll_id", poll.ID),
		zap.String("status", string(poll.Status)))

	s.notifier.NotifyStatusChange(poll)

	return poll, nil
}

// SubmitVote records one vote and broadcasts the recomputed standings.
// Validation order is fixed: shape checks, then poll existence, then the
// ledger's duplicate check.
func (s *PollService) SubmitVote(ctx context.Context, pollID, optionSlug, voterID string) (*domain.VoteResult, error) {
	optionSlug = strings.TrimSpace(optionSlug)
	if optionSlug == "" {
		return nil, apperrors.NewValidationError("optionSlug is required", nil)
	}

	voterID = strings.TrimSpace(voterID)
	if voterID == "" {
		return nil, apperrors.NewValidationError("voterId is required", nil)
	}

	poll, err := s.polls.FindByID(ctx, pollID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to get poll", err)
	}
	if poll == nil {
		return nil, apperrors.NewNotFoundError("Poll not found")
	}

	if s.guard.HasVoted(ctx, pollID, voterID) {
		return nil, apperrors.NewConflictError("You have already voted in this poll.")
	}

	if err := s.votes.RecordVote(ctx, pollID, voterID, optionSlug); err != nil {
		switch {
		case errors.Is(err, domain.ErrVoterIDRequired):
			return nil, apperrors.NewValidationError("voterId is required", nil)
		case errors.Is(err, domain.ErrAlreadyVoted):
			s.guard.MarkVoted(ctx, pollID, voterID)
			return nil, apperrors.NewConflictError("You have already voted in this poll.")
		default:
			s.logger.Error("failed to record vote",
				zap.String("poll_id", pollID),
				zap.Error(err))
			return nil, apperrors.NewInternalError("Failed to record vote", err)
		}
	}

	s.guard.MarkVoted(ctx, pollID, voterID)

	result, err := s.buildVoteResult(ctx, poll)
	if err != nil {
		return nil, err
	}

	s.logger.Info("vote recorded",
		zap.String("poll_id", pollID),
		zap.String("option_slug", optionSlug),
		zap.Int("total_votes", result.TotalVotes))

	s.notifier.NotifyStandings(pollID, domain.StandingsSummary{
		TopVotes:   result.TopVotes,
		TotalVotes: result.TotalVotes,
	})

	return result, nil
}

// ListVotes returns a poll's votes with current standings.
func (s *PollService) ListVotes(ctx context.Context, pollID string) (*domain.VoteResult, error) {
	poll, err := s.polls.FindByID(ctx, pollID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to get poll", err)
	}
	if poll == nil {
		return nil, apperrors.NewNotFoundError("Poll not found")
	}

	return s.buildVoteResult(ctx, poll)
}

// ClearVotes drops all votes for a poll and broadcasts empty standings. Used
// for poll restarts; calling it on an empty ledger is a no-op.
func (s *PollService) ClearVotes(ctx context.Context, pollID string) error {
	poll, err := s.polls.FindByID(ctx, pollID)
	if err != nil {
		return apperrors.NewInternalError("Failed to get poll", err)
	}
	if poll == nil {
		return apperrors.NewNotFoundError("Poll not found")
	}

	if err := s.votes.ClearVotes(ctx, pollID); err != nil {
		s.logger.Error("failed to clear votes", zap.String("poll_id", pollID), zap.Error(err))
		return apperrors.NewInternalError("Failed to clear votes", err)
	}

	s.guard.Reset(ctx, pollID)

	s.logger.Info("votes cleared", zap.String("poll_id", pollID))

	s.notifier.NotifyStandings(pollID, domain.StandingsSummary{
		TopVotes:   []domain.StandingsEntry{},
		TotalVotes: 0,
	})

	return nil
}

// CurrentStandings returns the standings snapshot sent to new subscribers.
func (s *PollService) CurrentStandings(ctx context.Context, pollID string) (domain.StandingsSummary, error) {
	votes, err := s.votes.AllVotes(ctx, pollID)
	if err != nil {
		return domain.StandingsSummary{}, apperrors.NewInternalError("Failed to list votes", err)
	}

	return domain.StandingsSummary{
		TopVotes:   TopVotes(votes, DefaultStandingsLimit),
		TotalVotes: TotalVotes(votes),
	}, nil
}

// buildVoteResult fetches the poll's votes and derives standings from the
// same rows so the response and broadcast reflect the ledger as of this call.
func (s *PollService) buildVoteResult(ctx context.Context, poll *domain.Poll) (*domain.VoteResult, error) {
	votes, err := s.votes.AllVotes(ctx, poll.ID)
	if err != nil {
		s.logger.Error("failed to list votes", zap.String("poll_id", poll.ID), zap.Error(err))
		return nil, apperrors.NewInternalError("Failed to list votes", err)
	}
	if votes == nil {
		votes = []domain.Vote{}
	}

	return &domain.VoteResult{
		Poll:       poll,
		Votes:      votes,
		TopVotes:   TopVotes(votes, DefaultStandingsLimit),
		TotalVotes: TotalVotes(votes),
	}, nil
}
