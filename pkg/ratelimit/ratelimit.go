package ratelimit

import (
	"sync"
	"time"
)

// Limiter answers whether one more action under the given key is allowed
// right now. Implementations must be safe for concurrent use.
type Limiter interface {
	Allow(key string) bool
}

type windowCounter struct {
	start time.Time
	count int
}

// FixedWindow allows up to limit calls per key in each fixed window. Counters
// reset when a window elapses; the first call of a new window always passes.
type FixedWindow struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	buckets map[string]*windowCounter
}

func NewFixedWindow(limit int, window time.Duration) *FixedWindow {
	return &FixedWindow{
		limit:   limit,
		window:  window,
		now:     time.Now,
		buckets: map[string]*windowCounter{},
	}
}

func (l *FixedWindow) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	bucket, ok := l.buckets[key]
	if !ok || now.Sub(bucket.start) >= l.window {
		l.buckets[key] = &windowCounter{start: now, count: 1}
		return true
	}
	if bucket.count >= l.limit {
		return false
	}
	bucket.count++
	return true
}

// Unlimited passes everything. Used where a command-line path should not be
// throttled.
type Unlimited struct{}

func (Unlimited) Allow(string) bool { return true }
