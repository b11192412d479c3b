package dispatch

import (
	"strings"
	"time"
)

// Policy is the bounded retry policy applied per key. It carries the attempt
// budget, the backoff schedule, and the error classification used to decide
// between exhausting a key, backing off, or plain retrying. Keeping the
// policy as data makes the dispatch loop testable without real delays.
type Policy struct {
	// MaxAttemptsPerKey is the request budget against a single key before
	// rotating to the next one.
	MaxAttemptsPerKey int

	// Backoff returns the wait before the next same-key attempt after a
	// rate-limit failure. Attempt numbering starts at 0.
	Backoff func(attempt int) time.Duration

	// RetryDelay is the wait before the next same-key attempt after an
	// unclassified failure.
	RetryDelay time.Duration

	// IsQuotaExhausted matches provider errors that mean a key has spent its
	// daily token quota. Such keys are exhausted immediately, no retries.
	IsQuotaExhausted func(error) bool

	// IsRateLimited matches transient provider rate-limit errors, retried
	// with backoff within the per-key budget.
	IsRateLimited func(error) bool
}

// DefaultPolicy returns the policy used for benchmark runs: two attempts per
// key, exponential backoff on rate limits, Groq's quota and rate markers.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttemptsPerKey: 2,
		Backoff: func(attempt int) time.Duration {
			return time.Duration(1<<attempt) * time.Second
		},
		RetryDelay:       time.Second,
		IsQuotaExhausted: isQuotaMarker,
		IsRateLimited:    isRateMarker,
	}
}

// isQuotaMarker matches Groq's tokens-per-day exhaustion responses.
func isQuotaMarker(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "TPD") ||
		strings.Contains(strings.ToLower(msg), "tokens per day")
}

// isRateMarker matches rate-limit responses by status code or message.
func isRateMarker(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate") || strings.Contains(msg, "429")
}
