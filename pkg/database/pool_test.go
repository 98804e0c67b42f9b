package database

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryBackoff_StaysWithinJitterBounds(t *testing.T) {
	for attempt := 0; attempt < 3; attempt++ {
		base := defaultRetryBaseWait << attempt // 1s, 2s, 4s
		lo := time.Duration(float64(base) * (1 - retryJitterFraction))
		hi := time.Duration(float64(base) * (1 + retryJitterFraction))

		for i := 0; i < 20; i++ {
			d := retryBackoff(attempt)
			assert.GreaterOrEqual(t, d, lo, "attempt %d: %v below %v", attempt, d, lo)
			assert.LessOrEqual(t, d, hi, "attempt %d: %v above %v", attempt, d, hi)
		}
	}
}

func TestRetryBackoff_GrowsPerAttempt(t *testing.T) {
	// Jitter makes single samples unreliable; compare averages instead.
	const n = 100
	var sums [3]time.Duration
	for attempt := 0; attempt < 3; attempt++ {
		for i := 0; i < n; i++ {
			sums[attempt] += retryBackoff(attempt)
		}
	}
	assert.Less(t, sums[0], sums[1])
	assert.Less(t, sums[1], sums[2])
}

func TestIsConnectionError(t *testing.T) {
	transient := []string{
		"dial tcp 127.0.0.1:5432: connection refused",
		"connection reset by peer",
		"broken pipe",
		"i/o timeout",
		"EOF",
		"could not connect to server",
	}
	for _, msg := range transient {
		assert.True(t, isConnectionError(errors.New(msg)), msg)
	}

	permanent := []string{
		"syntax error at or near",
		"duplicate key value violates unique constraint",
		"relation does not exist",
	}
	for _, msg := range permanent {
		assert.False(t, isConnectionError(errors.New(msg)), msg)
	}

	assert.False(t, isConnectionError(nil))
}
