package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/jknack0/streamer-poc/pkg/redis"
)

// VoteGuard is a Redis-backed fast path for already-voted checks. The ledger's
// unique constraint stays the authority; the guard only short-circuits the
// common duplicate case without a database round trip. All guard failures are
// soft: on Redis errors the caller falls through to the ledger.
type VoteGuard struct {
	redis  *redis.Client
	logger *zap.Logger
}

func NewVoteGuard(redisClient *redis.Client, logger *zap.Logger) *VoteGuard {
	return &VoteGuard{
		redis:  redisClient,
		logger: logger,
	}
}

// HasVoted reports whether the voter is in the poll's voted set. Returns
// false on any Redis error so the ledger check still runs.
func (g *VoteGuard) HasVoted(ctx context.Context, pollID, voterID string) bool {
	if g == nil || g.redis == nil {
		return false
	}

	key := g.redis.KeyBuilder.KeyPollVoters(pollID)
	voted, err := g.redis.SIsMember(ctx, key, voterID)
	if err != nil {
		g.logger.Warn("vote guard lookup failed",
			zap.String("poll_id", pollID),
			zap.Error(err))
		return false
	}
	return voted
}

// MarkVoted records the voter in the poll's voted set after a successful
// ledger insert. Best effort.
func (g *VoteGuard) MarkVoted(ctx context.Context, pollID, voterID string) {
	if g == nil || g.redis == nil {
		return
	}

	key := g.redis.KeyBuilder.KeyPollVoters(pollID)
	if err := g.redis.SAdd(ctx, key, voterID); err != nil {
		g.logger.Warn("vote guard mark failed",
			zap.String("poll_id", pollID),
			zap.Error(err))
	}
}

// Reset drops the poll's voted set, used when the poll's votes are cleared.
func (g *VoteGuard) Reset(ctx context.Context, pollID string) {
	if g == nil || g.redis == nil {
		return
	}

	key := g.redis.KeyBuilder.KeyPollVoters(pollID)
	if err := g.redis.Delete(ctx, key); err != nil {
		g.logger.Warn("vote guard reset failed",
			zap.String("poll_id", pollID),
			zap.Error(err))
	}
}
