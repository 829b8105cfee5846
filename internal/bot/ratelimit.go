package bot

import (
	"sync"
	"time"
)

// RateLimiter is a per-user sliding window limiter. The zero window or zero
// max disables limiting.
type RateLimiter struct {
	maxRequests int
	window      time.Duration
	now         func() time.Time

	mu       sync.Mutex
	requests map[int64][]time.Time
}

func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
		requests:    make(map[int64][]time.Time),
	}
}

// Allow records a request for the user when under the limit. When over, it
// returns false and the wait until the oldest request leaves the window.
func (l *RateLimiter) Allow(userID int64) (bool, time.Duration) {
	if l == nil || l.maxRequests <= 0 || l.window <= 0 {
		return true, 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := l.requests[userID][:0]
	for _, t := range l.requests[userID] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.maxRequests {
		l.requests[userID] = kept
		wait := kept[0].Add(l.window).Sub(now)
		if wait < 0 {
			wait = 0
		}
		return false, wait
	}

	l.requests[userID] = append(kept, now)
	return true, 0
}

// Remaining reports how many requests the user has left in the window.
func (l *RateLimiter) Remaining(userID int64) int {
	if l == nil || l.maxRequests <= 0 || l.window <= 0 {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	var inWindow int
	for _, t := range l.requests[userID] {
		if t.After(cutoff) {
			inWindow++
		}
	}
	if inWindow > l.maxRequests {
		return 0
	}
	return l.maxRequests - inWindow
}
