package services

import (
	"log/slog"
	"sync"
	"time"
)

// LoginLimiter enforces a sliding-window cap on login attempts per client
// IP. State is process-local: each instance tracks its own window, which is
// acceptable because the lockout state in the users table is what actually
// protects accounts across replicas.
type LoginLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	window   time.Duration
	max      int
	now      func() time.Time
	logger   *slog.Logger
}

// NewLoginLimiter creates a limiter allowing max attempts per IP within window.
func NewLoginLimiter(window time.Duration, max int, logger *slog.Logger) *LoginLimiter {
	return &LoginLimiter{
		attempts: make(map[string][]time.Time),
		window:   window,
		max:      max,
		now:      time.Now,
		logger:   logger,
	}
}

// Allow records one attempt for ip and reports whether it falls within the
// window limit. Denied attempts still count toward the window, so retrying
// while limited does not shorten the wait. Clients with no resolvable
// address share the "unknown" bucket.
func (l *LoginLimiter) Allow(ip string) bool {
	if ip == "" {
		ip = "unknown"
	}

	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	recent := l.attempts[ip]
	i := 0
	for ; i < len(recent); i++ {
		if recent[i].After(cutoff) {
			break
		}
	}
	recent = append(recent[i:], now)
	l.attempts[ip] = recent

	if len(recent) > l.max {
		l.logger.Warn("login rate limit exceeded",
			slog.String("ip_address", ip),
			slog.Int("attempts_in_window", len(recent)))
		return false
	}

	return true
}

// Prune drops IPs whose attempts have all aged out of the window. Returns
// the number of entries removed; intended for the periodic cleanup job.
func (l *LoginLimiter) Prune() int {
	cutoff := l.now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for ip, timestamps := range l.attempts {
		i := 0
		for ; i < len(timestamps); i++ {
			if timestamps[i].After(cutoff) {
				break
			}
		}
		if i == len(timestamps) {
			delete(l.attempts, ip)
			removed++
			continue
		}
		if i > 0 {
			l.attempts[ip] = timestamps[i:]
		}
	}

	return removed
}
