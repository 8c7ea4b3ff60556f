package redis

import "fmt"

// Poll-scoped key formats.
const (
	// KeyPollVoters is the set of voter ids that have voted in a poll.
	KeyPollVoters = "poll:%s:voters"
)

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" || environment == "test" {
		prefix = "staging"
	}

	return &KeyBuilder{
		prefix: prefix,
	}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// KeyPollVoters returns the key for a poll's voted-voter set.
func (kb *KeyBuilder) KeyPollVoters(pollID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyPollVoters, pollID))
}
