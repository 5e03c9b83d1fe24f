// Package throttle provides the in-process login throttle used when no Redis
// address is configured.
package throttle

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Local refills maxAttempts tokens per window for each key. Every failed login
// spends one token; a key with less than one token left is blocked.
type Local struct {
	mu          sync.Mutex
	entries     map[string]*entry
	limit       rate.Limit
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

func NewLocal(maxAttempts int, window time.Duration) *Local {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Local{
		entries:     make(map[string]*entry),
		limit:       rate.Limit(float64(maxAttempts) / window.Seconds()),
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
	}
}

func (l *Local) Blocked(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		return false, nil
	}
	return e.limiter.TokensAt(l.now()) < 1, nil
}

func (l *Local) RecordFailure(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.limit, l.maxAttempts)}
		l.entries[key] = e
	}
	e.lastSeen = now
	e.limiter.AllowN(now, 1)
	return nil
}

func (l *Local) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	delete(l.entries, key)
	l.mu.Unlock()
	return nil
}

// Len reports how many keys are tracked.
func (l *Local) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// prune drops keys idle for a full window; their buckets are full again.
func (l *Local) prune(now time.Time) {
	for k, e := range l.entries {
		if now.Sub(e.lastSeen) >= l.window {
			delete(l.entries, k)
		}
	}
}
