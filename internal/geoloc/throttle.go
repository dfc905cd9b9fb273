package geoloc

import (
	"sync"
	"time"
)

// Limiter enforces the minimum interval between outbound transmissions.
// Leading-sample-wins: the first sample in a window passes immediately,
// later samples inside the window are suppressed (they still update local
// display state; only transmission is gated).
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

func NewLimiter(interval time.Duration) *Limiter {
	return &Limiter{interval: interval, now: time.Now}
}

// Allow reports whether a transmission may happen now, opening a new window
// when it does.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if !l.last.IsZero() && now.Sub(l.last) < l.interval {
		return false
	}
	l.last = now
	return true
}
