package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoginLimiter_AllowsUpToMax(t *testing.T) {
	limiter := NewLoginLimiter(15*time.Minute, 10, testLogger())

	for i := 0; i < 10; i++ {
		assert.True(t, limiter.Allow("203.0.113.7"), "attempt %d should be allowed", i+1)
	}
	assert.False(t, limiter.Allow("203.0.113.7"), "attempt 11 should be denied")
}

func TestLoginLimiter_IsolatesPerIP(t *testing.T) {
	limiter := NewLoginLimiter(15*time.Minute, 2, testLogger())

	assert.True(t, limiter.Allow("203.0.113.7"))
	assert.True(t, limiter.Allow("203.0.113.7"))
	assert.False(t, limiter.Allow("203.0.113.7"))

	// A different client is unaffected
	assert.True(t, limiter.Allow("198.51.100.9"))
}

func TestLoginLimiter_WindowSlides(t *testing.T) {
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewLoginLimiter(15*time.Minute, 2, testLogger())
	limiter.now = func() time.Time { return current }

	assert.True(t, limiter.Allow("203.0.113.7"))
	assert.True(t, limiter.Allow("203.0.113.7"))
	assert.False(t, limiter.Allow("203.0.113.7"))

	// Once the first attempts age past the window the client gets capacity back
	current = current.Add(16 * time.Minute)
	assert.True(t, limiter.Allow("203.0.113.7"))
}

func TestLoginLimiter_DeniedAttemptsStillCount(t *testing.T) {
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewLoginLimiter(15*time.Minute, 2, testLogger())
	limiter.now = func() time.Time { return current }

	limiter.Allow("203.0.113.7")
	limiter.Allow("203.0.113.7")

	// Hammering while denied keeps refilling the window
	for i := 0; i < 5; i++ {
		current = current.Add(time.Minute)
		assert.False(t, limiter.Allow("203.0.113.7"))
	}
}

func TestLoginLimiter_EmptyIPSharesUnknownBucket(t *testing.T) {
	limiter := NewLoginLimiter(15*time.Minute, 2, testLogger())

	assert.True(t, limiter.Allow(""))
	assert.True(t, limiter.Allow("unknown"))
	assert.False(t, limiter.Allow(""))
}

func TestLoginLimiter_Prune(t *testing.T) {
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewLoginLimiter(15*time.Minute, 10, testLogger())
	limiter.now = func() time.Time { return current }

	limiter.Allow("203.0.113.7")
	limiter.Allow("198.51.100.9")

	current = current.Add(20 * time.Minute)
	limiter.Allow("198.51.100.9")

	removed := limiter.Prune()
	assert.Equal(t, 1, removed)

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.NotContains(t, limiter.attempts, "203.0.113.7")
	assert.Contains(t, limiter.attempts, "198.51.100.9")
}
