package cache

import (
	"context"
	"sync"
	"time"

	"github.com/billing/backend/internal/domain/shared"
)

// InMemoryIdempotencyStore keeps processed event IDs in a local map. It is
// the right choice for single-instance deployments and for tests; state is
// lost on restart, so redelivered events from before a restart are handled
// again.
type InMemoryIdempotencyStore struct {
	mu        sync.RWMutex
	expiry    map[string]time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryIdempotencyStore creates the store and starts a background
// sweep that evicts expired IDs every five minutes.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		expiry:   make(map[string]time.Time),
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.sweepLoop()

	return store
}

// MarkProcessed records eventID for the given TTL. It returns false when the
// ID is already present and still live, true otherwise. An expired ID is
// overwritten and counts as newly marked.
func (s *InMemoryIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if deadline, ok := s.expiry[eventID]; ok && time.Now().Before(deadline) {
		return false, nil
	}

	s.expiry[eventID] = time.Now().Add(ttl)
	return true, nil
}

// IsProcessed reports whether eventID is present and not yet expired.
func (s *InMemoryIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deadline, ok := s.expiry[eventID]
	return ok && time.Now().Before(deadline), nil
}

// Close stops the sweep goroutine. Safe to call more than once.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryIdempotencyStore) sweepLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *InMemoryIdempotencyStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for eventID, deadline := range s.expiry {
		if now.After(deadline) {
			delete(s.expiry, eventID)
		}
	}
}

// Size returns the number of tracked IDs, expired entries included until the
// next sweep. Used by tests and monitoring.
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.expiry)
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
