package hub

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jknack0/streamer-poc/internal/domain"
	"github.com/jknack0/streamer-poc/internal/repository"
)

func newTestHub(t *testing.T) (*Hub, *repository.MemoryPollRepository, *repository.MemoryVoteRepository) {
	t.Helper()
	polls := repository.NewMemoryPollRepository()
	votes := repository.NewMemoryVoteRepository()
	return New(polls, votes, zap.NewNop()), polls, votes
}

// drain collects every event currently queued on the subscriber.
func drain(sub *Subscriber) []Event {
	var events []Event
	for {
		select {
		case e, ok := <-sub.events:
			if !ok {
				return events
			}
			events = append(events, e)
		default:
			return events
		}
	}
}

func TestJoinSendsSnapshot(t *testing.T) {
	h, polls, votes := newTestHub(t)
	ctx := context.Background()

	_, err := polls.Create(ctx, "p1", domain.StatusActive)
	require.NoError(t, err)
	require.NoError(t, votes.RecordVote(ctx, "p1", "v1", "lee-sin"))

	sub := NewSubscriber()
	h.Join(ctx, sub, "p1")

	events := drain(sub)
	require.Len(t, events, 2)

	assert.Equal(t, EventPollUpdate, events[0].Name)
	update := events[0].Data.(map[string]interface{})
	assert.Equal(t, "p1", update["poll"].(*domain.Poll).ID)

	assert.Equal(t, EventPollVotes, events[1].Name)
	standings := events[1].Data.(map[string]interface{})
	assert.Equal(t, "p1", standings["pollId"])
	assert.Equal(t, 1, standings["totalVotes"])
	assert.Equal(t, []domain.StandingsEntry{{OptionSlug: "lee-sin", Count: 1}}, standings["topVotes"])
}

func TestJoinTrimsPollID(t *testing.T) {
	h, polls, _ := newTestHub(t)
	ctx := context.Background()

	_, err := polls.Create(ctx, "p1", domain.StatusIdle)
	require.NoError(t, err)

	sub := NewSubscriber()
	h.Join(ctx, sub, "  p1  ")

	events := drain(sub)
	require.NotEmpty(t, events)
	assert.Equal(t, EventPollUpdate, events[0].Name)
}

func TestJoinInvalidPollID(t *testing.T) {
	h, _, _ := newTestHub(t)

	sub := NewSubscriber()
	h.Join(context.Background(), sub, "   ")

	events := drain(sub)
	require.Len(t, events, 1)
	assert.Equal(t, EventPollError, events[0].Name)
	assert.Equal(t, "Invalid poll id", events[0].Data.(map[string]interface{})["error"])
}

func TestJoinUnknownPoll(t *testing.T) {
	h, _, _ := newTestHub(t)

	sub := NewSubscriber()
	h.Join(context.Background(), sub, "missing")

	events := drain(sub)
	require.Len(t, events, 1)
	assert.Equal(t, EventPollError, events[0].Name)
	assert.Equal(t, "Poll not found", events[0].Data.(map[string]interface{})["error"])

	// A failed join must not add the subscriber to any room.
	h.NotifyStandings("missing", domain.StandingsSummary{})
	assert.Empty(t, drain(sub))
}

func TestNotifyStatusChange(t *testing.T) {
	h, polls, _ := newTestHub(t)
	ctx := context.Background()

	poll, err := polls.Create(ctx, "p1", domain.StatusIdle)
	require.NoError(t, err)

	member := NewSubscriber()
	h.Join(ctx, member, "p1")
	drain(member)

	outsider := NewSubscriber()

	updated, err := polls.SetStatus(ctx, "p1", domain.StatusActive)
	require.NoError(t, err)
	h.NotifyStatusChange(updated)

	events := drain(member)
	require.Len(t, events, 2)
	assert.Equal(t, EventPollUpdate, events[0].Name)
	assert.Equal(t, EventPollStatus, events[1].Name)
	status := events[1].Data.(map[string]interface{})
	assert.Equal(t, poll.ID, status["pollId"])
	assert.Equal(t, domain.StatusActive, status["status"])

	assert.Empty(t, drain(outsider), "non-members receive nothing")
}

func TestNotifyStandings(t *testing.T) {
	h, polls, _ := newTestHub(t)
	ctx := context.Background()

	_, err := polls.Create(ctx, "p1", domain.StatusActive)
	require.NoError(t, err)

	sub := NewSubscriber()
	h.Join(ctx, sub, "p1")
	drain(sub)

	h.NotifyStandings("p1", domain.StandingsSummary{
		TopVotes:   []domain.StandingsEntry{{OptionSlug: "vi", Count: 2}},
		TotalVotes: 2,
	})

	events := drain(sub)
	require.Len(t, events, 1)
	assert.Equal(t, EventPollVotes, events[0].Name)
	data := events[0].Data.(map[string]interface{})
	assert.Equal(t, 2, data["totalVotes"])
}

func TestLeaveStopsDelivery(t *testing.T) {
	h, polls, _ := newTestHub(t)
	ctx := context.Background()

	_, err := polls.Create(ctx, "p1", domain.StatusActive)
	require.NoError(t, err)

	sub := NewSubscriber()
	h.Join(ctx, sub, "p1")
	drain(sub)

	h.Leave(sub, "p1")
	h.NotifyStandings("p1", domain.StandingsSummary{TotalVotes: 1})

	assert.Empty(t, drain(sub))

	// Leaving again or with a bogus id is a silent no-op.
	h.Leave(sub, "p1")
	h.Leave(sub, "  ")
}

func TestUnsubscribeRemovesFromAllRooms(t *testing.T) {
	h, polls, _ := newTestHub(t)
	ctx := context.Background()

	_, err := polls.Create(ctx, "p1", domain.StatusActive)
	require.NoError(t, err)
	_, err = polls.Create(ctx, "p2", domain.StatusActive)
	require.NoError(t, err)

	sub := NewSubscriber()
	h.Join(ctx, sub, "p1")
	h.Join(ctx, sub, "p2")
	drain(sub)

	h.Unsubscribe(sub)

	h.NotifyStandings("p1", domain.StandingsSummary{TotalVotes: 1})
	h.NotifyStandings("p2", domain.StandingsSummary{TotalVotes: 1})

	_, open := <-sub.Events()
	assert.False(t, open, "event channel closed after unsubscribe")
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	h, polls, _ := newTestHub(t)
	ctx := context.Background()

	_, err := polls.Create(ctx, "p1", domain.StatusActive)
	require.NoError(t, err)

	sub := NewSubscriber()
	h.Join(ctx, sub, "p1")

	// Overflow the buffer without draining; every push must return.
	for i := 0; i < subscriberBuffer*2; i++ {
		h.NotifyStandings("p1", domain.StandingsSummary{TotalVotes: i})
	}

	events := drain(sub)
	assert.LessOrEqual(t, len(events), subscriberBuffer)
}

// Broadcasts racing subscriber disconnects must never send on a closed
// channel; a panic here would surface inside the mutating request.
func TestBroadcastDuringUnsubscribe(t *testing.T) {
	h, polls, _ := newTestHub(t)
	ctx := context.Background()

	_, err := polls.Create(ctx, "p1", domain.StatusActive)
	require.NoError(t, err)

	const (
		rounds       = 200
		broadcasters = 4
	)

	for i := 0; i < rounds; i++ {
		subs := make([]*Subscriber, 8)
		for j := range subs {
			subs[j] = NewSubscriber()
			h.Join(ctx, subs[j], "p1")
		}

		var wg sync.WaitGroup
		for b := 0; b < broadcasters; b++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				h.NotifyStandings("p1", domain.StandingsSummary{TotalVotes: 1})
				h.NotifyStatusChange(&domain.Poll{ID: "p1", Status: domain.StatusActive})
			}()
		}
		for _, sub := range subs {
			wg.Add(1)
			go func(sub *Subscriber) {
				defer wg.Done()
				h.Unsubscribe(sub)
			}(sub)
		}
		wg.Wait()
	}
}

func TestSendAfterCloseIsDropped(t *testing.T) {
	sub := NewSubscriber()

	require.True(t, sub.send(Event{Name: EventPollStatus}))

	sub.close()
	assert.False(t, sub.send(Event{Name: EventPollStatus}))

	// Repeated close is a no-op.
	sub.close()
}

func TestCloseShutsDownSubscribers(t *testing.T) {
	h, polls, _ := newTestHub(t)
	ctx := context.Background()

	_, err := polls.Create(ctx, "p1", domain.StatusActive)
	require.NoError(t, err)

	sub := NewSubscriber()
	h.Join(ctx, sub, "p1")
	drain(sub)

	h.Close()

	_, open := <-sub.Events()
	assert.False(t, open)

	// Join after close is ignored.
	late := NewSubscriber()
	h.Join(ctx, late, "p1")
	h.NotifyStandings("p1", domain.StandingsSummary{TotalVotes: 1})
	for _, e := range drain(late) {
		assert.NotEqual(t, EventPollVotes, e.Name)
	}
}
