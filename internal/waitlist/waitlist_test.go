package waitlist

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidWalletAddress(t *testing.T) {
	valid := []string{
		"0xAbCdEf0123456789abcdef0123456789ABCDEF01",
		"0x0000000000000000000000000000000000000000",
		"0xffffffffffffffffffffffffffffffffffffffff",
	}
	for _, addr := range valid {
		assert.True(t, ValidWalletAddress(addr), "address %q", addr)
	}

	invalid := []string{
		"",
		"0x123",
		"not-an-address",
		"0xAbCdEf0123456789abcdef0123456789ABCDEF011",  // 43 chars
		"1xAbCdEf0123456789abcdef0123456789ABCDEF01",   // wrong prefix
		"0xGGGGGG0123456789abcdef0123456789ABCDEF01",   // non-hex
		" 0xAbCdEf0123456789abcdef0123456789ABCDEF01",  // leading space
	}
	for _, addr := range invalid {
		assert.False(t, ValidWalletAddress(addr), "address %q", addr)
	}
}

func TestMemoryStoreUpsertInsertsOnce(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "id-1", "alice", "Alice"))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	entry := s.Get("id-1")
	require.NotNil(t, entry)
	assert.Equal(t, "alice", entry.Username)
	assert.Equal(t, "Alice", entry.DisplayName)
	assert.False(t, entry.UpdatedAt.Before(entry.CreatedAt))
}

func TestMemoryStoreUpsertUpdatesInPlace(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "id-1", "alice", "Alice"))
	before := s.Get("id-1")

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, s.Upsert(ctx, "id-1", "alice2", "Alice Renamed"))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	after := s.Get("id-1")
	assert.Equal(t, "alice2", after.Username)
	assert.Equal(t, "Alice Renamed", after.DisplayName)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
}

func TestMemoryStoreUpdateWallet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "id-1", "alice", "Alice"))

	affected, err := s.UpdateWallet(ctx, "alice", "0xAbCdEf0123456789abcdef0123456789ABCDEF01")
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	entry := s.Get("id-1")
	require.NotNil(t, entry.WalletAddress)
	assert.Equal(t, "0xAbCdEf0123456789abcdef0123456789ABCDEF01", *entry.WalletAddress)
}

func TestMemoryStoreUpdateWalletNoMatch(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	affected, err := s.UpdateWallet(ctx, "nobody", "0xAbCdEf0123456789abcdef0123456789ABCDEF01")
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	// Must not create a row
	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "id-1", "first", "First"))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, s.Upsert(ctx, "id-2", "second", "Second"))

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Username)
	assert.Equal(t, "first", entries[1].Username)
}
