package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the store and ledger layers. The service layer
// maps them onto the HTTP error taxonomy.
var (
	ErrPollExists      = errors.New("poll already exists")
	ErrPollNotFound    = errors.New("poll not found")
	ErrVoterIDRequired = errors.New("voterId is required")
	ErrAlreadyVoted    = errors.New("you have already voted in this poll")
)

// InvalidStatusError reports a status value outside the poll status enum.
type InvalidStatusError struct {
	Status PollStatus
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid poll status: %s", e.Status)
}

// IsInvalidStatus reports whether err is an InvalidStatusError.
func IsInvalidStatus(err error) bool {
	var ise *InvalidStatusError
	return errors.As(err, &ise)
}
