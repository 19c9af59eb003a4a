package waitlist

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Compile-time interface assertion.
var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-memory implementation of Store for tests and local
// development without a database.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry // identity id -> entry
}

// NewMemoryStore creates a new in-memory waitlist store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*Entry)}
}

// Upsert inserts or updates the entry for identityID.
func (s *MemoryStore) Upsert(ctx context.Context, identityID, username, displayName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if e, exists := s.entries[identityID]; exists {
		e.Username = username
		e.DisplayName = displayName
		e.UpdatedAt = now
		return nil
	}

	s.entries[identityID] = &Entry{
		IdentityID:  identityID,
		Username:    username,
		DisplayName: displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return nil
}

// UpdateWallet sets the wallet address for entries matching username.
func (s *MemoryStore) UpdateWallet(ctx context.Context, username, walletAddress string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var affected int64
	now := time.Now()
	for _, e := range s.entries {
		if e.Username == username {
			addr := walletAddress
			e.WalletAddress = &addr
			e.UpdatedAt = now
			affected++
		}
	}
	return affected, nil
}

// Count returns the total number of entries.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// List returns all entries, newest first.
func (s *MemoryStore) List(ctx context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, *e)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

// Get returns the entry for identityID, or nil. Test helper.
func (s *MemoryStore) Get(identityID string) *Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.entries[identityID]
	if !exists {
		return nil
	}
	copied := *e
	return &copied
}
