// Package hub fans out poll state to live subscribers. It keeps one room per
// poll id; membership lasts for the subscriber's connection lifetime only.
package hub

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jknack0/streamer-poc/internal/domain"
	"github.com/jknack0/streamer-poc/internal/repository"
	"github.com/jknack0/streamer-poc/internal/service"
)

// Event names pushed over the realtime channel.
const (
	EventPollUpdate = "poll:update"
	EventPollStatus = "poll:status"
	EventPollVotes  = "poll:votes"
	EventPollError  = "poll:error"
)

// Event is one message pushed to a subscriber.
type Event struct {
	Name string
	Data interface{}
}

// subscriberBuffer bounds the per-subscriber event queue. A subscriber whose
// buffer is full misses events rather than blocking the mutation path.
const subscriberBuffer = 16

// Subscriber is one live connection's receive end. send and close serialize
// on the subscriber's own mutex: broadcasts run outside the hub lock, so the
// channel must never be closed while a sender still holds a reference.
type Subscriber struct {
	mu     sync.Mutex
	events chan Event
	closed bool
}

func NewSubscriber() *Subscriber {
	return &Subscriber{
		events: make(chan Event, subscriberBuffer),
	}
}

// Events returns the channel the transport drains.
func (s *Subscriber) Events() <-chan Event {
	return s.events
}

// send queues an event without blocking. Returns false when the event was
// dropped because the subscriber is closed or not keeping up.
func (s *Subscriber) send(e Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	select {
	case s.events <- e:
		return true
	default:
		return false
	}
}

// close releases the event channel; safe to call more than once.
func (s *Subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.events)
}

// Hub owns the room table. It implements service.Notifier so the session
// controller can push without knowing about connections.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Subscriber]struct{}
	closed bool

	polls  repository.PollRepository
	votes  repository.VoteRepository
	logger *zap.Logger
}

func New(polls repository.PollRepository, votes repository.VoteRepository, logger *zap.Logger) *Hub {
	return &Hub{
		rooms:  make(map[string]map[*Subscriber]struct{}),
		polls:  polls,
		votes:  votes,
		logger: logger,
	}
}

// Join subscribes sub to a poll's room and immediately sends the current poll
// snapshot and standings. Invalid or unknown poll ids produce an error event
// on the subscriber instead of a membership change.
func (h *Hub) Join(ctx context.Context, sub *Subscriber, pollID string) {
	trimmed := strings.TrimSpace(pollID)
	if trimmed == "" {
		sub.send(Event{Name: EventPollError, Data: map[string]interface{}{
			"pollId": pollID,
			"error":  "Invalid poll id",
		}})
		return
	}

	poll, err := h.polls.FindByID(ctx, trimmed)
	if err != nil {
		h.logger.Error("failed to load poll for subscriber",
			zap.String("poll_id", trimmed),
			zap.Error(err))
		sub.send(Event{Name: EventPollError, Data: map[string]interface{}{
			"pollId": trimmed,
			"error":  "Poll not found",
		}})
		return
	}
	if poll == nil {
		sub.send(Event{Name: EventPollError, Data: map[string]interface{}{
			"pollId": trimmed,
			"error":  "Poll not found",
		}})
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	room, ok := h.rooms[trimmed]
	if !ok {
		room = make(map[*Subscriber]struct{})
		h.rooms[trimmed] = room
	}
	room[sub] = struct{}{}
	h.mu.Unlock()

	sub.send(Event{Name: EventPollUpdate, Data: map[string]interface{}{"poll": poll}})

	votes, err := h.votes.AllVotes(ctx, trimmed)
	if err != nil {
		h.logger.Error("failed to load votes for subscriber",
			zap.String("poll_id", trimmed),
			zap.Error(err))
		return
	}
	sub.send(Event{Name: EventPollVotes, Data: map[string]interface{}{
		"pollId":     trimmed,
		"topVotes":   service.TopVotes(votes, service.DefaultStandingsLimit),
		"totalVotes": service.TotalVotes(votes),
	}})
}

// Leave removes sub from one poll's room. Unknown ids are a no-op.
func (h *Hub) Leave(sub *Subscriber, pollID string) {
	trimmed := strings.TrimSpace(pollID)
	if trimmed == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(sub, trimmed)
}

// Unsubscribe removes sub from every room and closes its event channel. The
// transport calls this when the connection goes away.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	for pollID := range h.rooms {
		h.removeLocked(sub, pollID)
	}
	h.mu.Unlock()

	sub.close()
}

// NotifyStatusChange pushes the updated poll snapshot to the poll's room.
func (h *Hub) NotifyStatusChange(poll *domain.Poll) {
	if poll == nil {
		return
	}

	h.broadcast(poll.ID, Event{Name: EventPollUpdate, Data: map[string]interface{}{"poll": poll}})
	h.broadcast(poll.ID, Event{Name: EventPollStatus, Data: map[string]interface{}{
		"pollId": poll.ID,
		"status": poll.Status,
	}})
}

// NotifyStandings pushes a standings snapshot to the poll's room.
func (h *Hub) NotifyStandings(pollID string, summary domain.StandingsSummary) {
	if pollID == "" {
		return
	}

	h.broadcast(pollID, Event{Name: EventPollVotes, Data: map[string]interface{}{
		"pollId":     pollID,
		"topVotes":   summary.TopVotes,
		"totalVotes": summary.TotalVotes,
	}})
}

// Close tears down every room and closes all subscribers.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	rooms := h.rooms
	h.rooms = make(map[string]map[*Subscriber]struct{})
	h.mu.Unlock()

	seen := make(map[*Subscriber]struct{})
	for _, room := range rooms {
		for sub := range room {
			if _, ok := seen[sub]; ok {
				continue
			}
			seen[sub] = struct{}{}
			sub.close()
		}
	}
}

// broadcast delivers an event to every member of a room, best effort.
func (h *Hub) broadcast(pollID string, e Event) {
	h.mu.RLock()
	room := h.rooms[pollID]
	subs := make([]*Subscriber, 0, len(room))
	for sub := range room {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	dropped := 0
	for _, sub := range subs {
		if !sub.send(e) {
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Warn("dropped events for slow subscribers",
			zap.String("poll_id", pollID),
			zap.String("event", e.Name),
			zap.Int("dropped", dropped))
	}
}

func (h *Hub) removeLocked(sub *Subscriber, pollID string) {
	room, ok := h.rooms[pollID]
	if !ok {
		return
	}
	delete(room, sub)
	if len(room) == 0 {
		delete(h.rooms, pollID)
	}
}
