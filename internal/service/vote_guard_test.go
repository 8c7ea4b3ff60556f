package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jknack0/streamer-poc/pkg/redis"
)

func setupTestGuard(t *testing.T) (*miniredis.Miniredis, *VoteGuard) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := redis.NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewVoteGuard(client, zap.NewNop())
}

func TestVoteGuardMarkAndCheck(t *testing.T) {
	_, guard := setupTestGuard(t)
	ctx := context.Background()

	assert.False(t, guard.HasVoted(ctx, "p1", "v1"))

	guard.MarkVoted(ctx, "p1", "v1")

	assert.True(t, guard.HasVoted(ctx, "p1", "v1"))
	assert.False(t, guard.HasVoted(ctx, "p1", "v2"), "different voter")
	assert.False(t, guard.HasVoted(ctx, "p2", "v1"), "different poll")
}

func TestVoteGuardReset(t *testing.T) {
	_, guard := setupTestGuard(t)
	ctx := context.Background()

	guard.MarkVoted(ctx, "p1", "v1")
	guard.MarkVoted(ctx, "p1", "v2")
	guard.MarkVoted(ctx, "p2", "v1")

	guard.Reset(ctx, "p1")

	assert.False(t, guard.HasVoted(ctx, "p1", "v1"))
	assert.False(t, guard.HasVoted(ctx, "p1", "v2"))
	assert.True(t, guard.HasVoted(ctx, "p2", "v1"), "other polls unaffected")
}

func TestVoteGuardRedisDownFailsOpen(t *testing.T) {
	mr, guard := setupTestGuard(t)
	ctx := context.Background()

	guard.MarkVoted(ctx, "p1", "v1")
	mr.Close()

	// With Redis gone the guard must not report a duplicate; the ledger's
	// unique constraint remains the authority.
	assert.False(t, guard.HasVoted(ctx, "p1", "v1"))
}

func TestVoteGuardNilClient(t *testing.T) {
	guard := NewVoteGuard(nil, zap.NewNop())
	ctx := context.Background()

	assert.False(t, guard.HasVoted(ctx, "p1", "v1"))
	guard.MarkVoted(ctx, "p1", "v1")
	guard.Reset(ctx, "p1")
}
