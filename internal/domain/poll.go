package domain

import (
	"time"
)

// PollStatus is the lifecycle state of a poll.
type PollStatus string

const (
	StatusIdle    PollStatus = "idle"
	StatusActive  PollStatus = "active"
	StatusStopped PollStatus = "stopped"
)

// IsValidStatus reports whether s is one of the three poll statuses.
func IsValidStatus(s PollStatus) bool {
	switch s {
	case StatusIdle, StatusActive, StatusStopped:
		return true
	}
	return false
}

// Poll represents a single voting event.
type Poll struct {
	ID        string     `json:"id"`
	Status    PollStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CreatePollRequest is the body of POST /polls. Both fields are optional;
// the server generates an id and defaults the status to idle.
type CreatePollRequest struct {
	ID     string     `json:"id"`
	Status PollStatus `json:"status"`
}

// UpdateStatusRequest is the body of POST /polls/{id}/status.
type UpdateStatusRequest struct {
	Status PollStatus `json:"status"`
}
