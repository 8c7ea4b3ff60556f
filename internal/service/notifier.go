package service

import (
	"github.com/jknack0/streamer-poc/internal/domain"
)

// Notifier is the capability the session controller uses to push state to
// live subscribers. The broadcast hub implements it; tests substitute
// NoopNotifier.
type Notifier interface {
	// NotifyStatusChange pushes the updated poll snapshot to the poll's room.
	NotifyStatusChange(poll *domain.Poll)

	// NotifyStandings pushes a standings snapshot to the poll's room.
	NotifyStandings(pollID string, summary domain.StandingsSummary)
}

// NoopNotifier discards all notifications.
type NoopNotifier struct{}

func (NoopNotifier) NotifyStatusChange(*domain.Poll) {}

func (NoopNotifier) NotifyStandings(string, domain.StandingsSummary) {}
