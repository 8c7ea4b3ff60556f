package domain

import (
	"time"
)

// Vote is one participant's immutable choice within a poll. At most one vote
// exists per (PollID, VoterID) pair.
type Vote struct {
	ID         int64     `json:"-"`
	PollID     string    `json:"pollId"`
	VoterID    string    `json:"voterId"`
	OptionSlug string    `json:"optionSlug"`
	CreatedAt  time.Time `json:"createdAt"`
}

// StandingsEntry is a derived count of votes for one option. It is computed
// from the ledger on every query and never stored.
type StandingsEntry struct {
	OptionSlug string `json:"optionSlug"`
	Count      int    `json:"count"`
}

// VoteRequest is the body of POST /polls/{id}/votes.
type VoteRequest struct {
	OptionSlug string `json:"optionSlug"`
	VoterID    string `json:"voterId"`
}

// VoteResult is the response for vote submission and vote listing.
type VoteResult struct {
	Poll       *Poll            `json:"poll"`
	Votes      []Vote           `json:"votes"`
	TopVotes   []StandingsEntry `json:"topVotes"`
	TotalVotes int              `json:"totalVotes"`
}

// StandingsSummary is the payload pushed to poll subscribers after a vote or
// a clear.
type StandingsSummary struct {
	TopVotes   []StandingsEntry `json:"topVotes"`
	TotalVotes int              `json:"totalVotes"`
}
