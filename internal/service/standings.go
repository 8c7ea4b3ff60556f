package service

import (
	"sort"

	"github.com/jknack0/streamer-poc/internal/domain"
)

// DefaultStandingsLimit is the number of entries returned when a caller does
// not ask for a specific limit.
const DefaultStandingsLimit = 3

// TopVotes derives ranked standings from a poll's vote rows: count descending,
// ties broken by option slug ascending, truncated to limit. The result is
// never nil so it serializes as [] rather than null.
func TopVotes(votes []domain.Vote, limit int) []domain.StandingsEntry {
	if limit <= 0 {
		limit = DefaultStandingsLimit
	}

	counts := make(map[string]int, len(votes))
	for _, vote := range votes {
		counts[vote.OptionSlug]++
	}

	entries := make([]domain.StandingsEntry, 0, len(counts))
	for slug, count := range counts {
		entries = append(entries, domain.StandingsEntry{OptionSlug: slug, Count: count})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].OptionSlug < entries[j].OptionSlug
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}

	return entries
}

// TotalVotes counts all votes for a poll.
func TotalVotes(votes []domain.Vote) int {
	return len(votes)
}
