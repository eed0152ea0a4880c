package ephemeral

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStoreSetAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	assert.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))

	val, ok, err := s.Get(ctx, "k")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), val)

	_, ok, err = s.Get(ctx, "missing")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreRejectsNonPositiveTTL(t *testing.T) {
	s := NewMemoryStore()
	assert.Error(t, s.Set(context.Background(), "k", []byte("v"), 0))
	assert.Error(t, s.Set(context.Background(), "k", []byte("v"), -time.Second))
}

func TestMemoryStoreExpiry(t *testing.T) {
	now := time.Now()
	s := NewMemoryStore().WithClock(func() time.Time { return now })
	ctx := context.Background()

	assert.NoError(t, s.Set(ctx, "k", []byte("v"), 30*time.Minute))

	now = now.Add(29 * time.Minute)
	_, ok, _ := s.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, _ = s.Get(ctx, "k")
	assert.False(t, ok, "entry past its ttl must be absent")

	entries, err := s.ScanPrefix(ctx, "k")
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMemoryStoreTakeIsSingleShot(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	assert.NoError(t, s.Set(ctx, "pending:1:2", []byte("snapshot"), time.Minute))

	val, ok, err := s.Take(ctx, "pending:1:2")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("snapshot"), val)

	_, ok, err = s.Take(ctx, "pending:1:2")
	assert.NoError(t, err)
	assert.False(t, ok, "second take must see nothing")
}

func TestMemoryStoreTakeOfExpiredEntry(t *testing.T) {
	now := time.Now()
	s := NewMemoryStore().WithClock(func() time.Time { return now })
	ctx := context.Background()

	assert.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))
	now = now.Add(2 * time.Minute)

	_, ok, err := s.Take(ctx, "k")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStorePrefixOperations(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	assert.NoError(t, s.Set(ctx, "pending:7:1", []byte("a"), time.Minute))
	assert.NoError(t, s.Set(ctx, "pending:7:2", []byte("b"), time.Minute))
	assert.NoError(t, s.Set(ctx, "pending:8:1", []byte("c"), time.Minute))
	assert.NoError(t, s.Set(ctx, "autoapprove:7", []byte("1"), time.Minute))

	entries, err := s.ScanPrefix(ctx, "pending:7:")
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, []byte("a"), entries["pending:7:1"])

	removed, err := s.DeletePrefix(ctx, "pending:7:")
	assert.NoError(t, err)
	assert.Equal(t, 2, removed)

	entries, _ = s.ScanPrefix(ctx, "pending:")
	assert.Len(t, entries, 1)

	_, ok, _ := s.Get(ctx, "autoapprove:7")
	assert.True(t, ok, "other prefixes must be untouched")
}
