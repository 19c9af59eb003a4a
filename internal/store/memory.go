// Package store provides single-use storage for in-flight OAuth
// authorization attempts.
package store

import (
	"sync"
	"time"
)

// AttemptTTL is the time-to-live for authorization attempts. Matches the
// 10-minute lifetime the OAuth 2.0 spec recommends for authorization codes.
const AttemptTTL = 10 * time.Minute

// AttemptCleanupInterval is how often expired attempts are cleaned up from memory.
const AttemptCleanupInterval = 1 * time.Minute

// AttemptData holds the server-side record of one authorization attempt.
type AttemptData struct {
	CodeVerifier string
	ExpiresAt    time.Time
}

// AttemptStore defines the interface for authorization attempt storage.
type AttemptStore interface {
	// Store saves an attempt under its id.
	Store(id string, data *AttemptData) error

	// Get retrieves and deletes the data for an attempt id (single use).
	// Returns nil if the attempt doesn't exist or has expired.
	Get(id string) (*AttemptData, error)
}

// MemoryAttemptStore is an in-memory implementation of AttemptStore.
type MemoryAttemptStore struct {
	mu       sync.RWMutex
	attempts map[string]*AttemptData
	stopCh   chan struct{}
}

// NewMemoryAttemptStore creates a new in-memory attempt store.
func NewMemoryAttemptStore() *MemoryAttemptStore {
	store := &MemoryAttemptStore{
		attempts: make(map[string]*AttemptData),
		stopCh:   make(chan struct{}),
	}

	// Start cleanup goroutine
	go store.cleanup()

	return store
}

// Close stops the cleanup goroutine.
func (s *MemoryAttemptStore) Close() error {
	close(s.stopCh)
	return nil
}

// Store saves an attempt under its id.
func (s *MemoryAttemptStore) Store(id string, data *AttemptData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data.ExpiresAt = time.Now().Add(AttemptTTL)
	s.attempts[id] = data

	return nil
}

// Get retrieves and deletes the data for an attempt id.
// Returns nil if the attempt doesn't exist or has expired.
func (s *MemoryAttemptStore) Get(id string) (*AttemptData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, exists := s.attempts[id]
	if !exists {
		return nil, nil
	}

	// Delete the attempt (single use)
	delete(s.attempts, id)

	// Check if expired
	if time.Now().After(data.ExpiresAt) {
		return nil, nil
	}

	return data, nil
}

// cleanup periodically removes expired attempts.
func (s *MemoryAttemptStore) cleanup() {
	ticker := time.NewTicker(AttemptCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.mu.Lock()
			now := time.Now()
			for id, data := range s.attempts {
				if now.After(data.ExpiresAt) {
					delete(s.attempts, id)
				}
			}
			s.mu.Unlock()
		}
	}
}
