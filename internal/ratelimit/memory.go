package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore provides fixed-window rate limiting backed by an in-process map.
// State is per-instance: it does not survive restarts and is not shared across
// horizontally scaled replicas. Suitable for single-instance deployments of a
// low-traffic contact form; use RedisStore otherwise.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	max     int
	window  time.Duration
	now     func() time.Time
}

type entry struct {
	count     int
	resetTime time.Time
}

// NewMemoryStore creates a store allowing max submissions per key per window.
func NewMemoryStore(max int, window time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*entry),
		max:     max,
		window:  window,
		now:     time.Now,
	}
	// Periodically evict expired entries to prevent memory growth.
	go s.cleanup()
	return s
}

// newMemoryStoreAt is like NewMemoryStore but with an injectable clock and no
// background eviction. Used by tests.
func newMemoryStoreAt(max int, window time.Duration, now func() time.Time) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*entry),
		max:     max,
		window:  window,
		now:     now,
	}
}

// Allow reports whether the submission for key fits in the current window.
// The call that opens a fresh window always counts as its first submission.
// A denied call does not increment the counter.
func (s *MemoryStore) Allow(_ context.Context, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.entries[key]
	if !ok || now.After(e.resetTime) {
		s.entries[key] = &entry{count: 1, resetTime: now.Add(s.window)}
		return true
	}
	if e.count >= s.max {
		return false
	}
	e.count++
	return true
}

func (s *MemoryStore) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		s.mu.Lock()
		now := s.now()
		for key, e := range s.entries {
			if now.After(e.resetTime) {
				delete(s.entries, key)
			}
		}
		s.mu.Unlock()
	}
}

var _ Store = (*MemoryStore)(nil)
