package ratelimit

import (
	"context"
	"sync"
	"time"
)

// CounterStore is the counting surface rate-limit middleware depends on.
// The Redis client satisfies it in production; MemoryStore backs single
// instance deployments and tests.
type CounterStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

type window struct {
	count   int64
	resetAt time.Time
}

// MemoryStore is a process-local fixed-window counter. Windows reset
// lazily on the next increment after expiry.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

// NewMemoryStore constructs an empty in-process counter store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// IncrWithTTL increments the counter for key, starting a fresh window
// when none exists or the previous one has expired.
func (s *MemoryStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.windows[key]
	if !ok || now.After(w.resetAt) || now.Equal(w.resetAt) {
		w = &window{resetAt: now.Add(ttl)}
		s.windows[key] = w
	}
	w.count++
	return w.count, nil
}
