package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-api/internal/domain"
	"portfolio-api/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	log, err := logger.New("error")
	require.NoError(t, err)
	return log
}

func newTestChatCache(t *testing.T) (*ChatCache, *MemoryStore) {
	store := NewMemoryStore()
	c := NewChatCache(store, testLogger(t))
	return c, store
}

func TestChatCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestChatCache(t)

	sources := []domain.ChatSource{{Title: "About", URI: "https://example.com/about"}}
	c.Set(ctx, "what do you do?", "I build things.", sources)

	reply := c.Get(ctx, "what do you do?")
	require.NotNil(t, reply)
	assert.Equal(t, "I build things.", reply.Response)
	assert.Equal(t, sources, reply.Sources)
	assert.True(t, reply.Cached)
}

func TestChatCacheMiss(t *testing.T) {
	c, _ := newTestChatCache(t)
	assert.Nil(t, c.Get(context.Background(), "never asked"))
}

func TestChatCacheKeyStability(t *testing.T) {
	// Same message hashes to the same key, different messages diverge.
	assert.Equal(t, messageKey("hello"), messageKey("hello"))
	assert.NotEqual(t, messageKey("hello"), messageKey("hello!"))

	// Keys are always of the msg_<number> shape, even for hash values that
	// would be negative before normalization.
	assert.Regexp(t, `^msg_\d+$`, messageKey("a"))
	assert.Regexp(t, `^msg_\d+$`, messageKey("some much longer message that overflows int32"))
}

func TestChatCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, store := newTestChatCache(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }
	c.Set(ctx, "question", "answer", nil)

	// Just inside the TTL it still hits
	c.now = func() time.Time { return base.Add(ChatCacheTTL - time.Minute) }
	assert.NotNil(t, c.Get(ctx, "question"))

	// Past the TTL it misses and the entry is dropped
	c.now = func() time.Time { return base.Add(ChatCacheTTL + time.Minute) }
	assert.Nil(t, c.Get(ctx, "question"))

	entries, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestChatCacheEvictsOldestAtCapacity(t *testing.T) {
	ctx := context.Background()
	c, store := newTestChatCache(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < ChatCacheMaxEntries; i++ {
		tick := base.Add(time.Duration(i) * time.Second)
		c.now = func() time.Time { return tick }
		c.Set(ctx, fmt.Sprintf("question %d", i), "answer", nil)
	}

	entries, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, ChatCacheMaxEntries)

	// The next insert pushes out exactly the oldest entry
	c.now = func() time.Time { return base.Add(time.Hour) }
	c.Set(ctx, "one more question", "answer", nil)

	entries, err = store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, ChatCacheMaxEntries)
	assert.Nil(t, c.Get(ctx, "question 0"))
	assert.NotNil(t, c.Get(ctx, "question 1"))
	assert.NotNil(t, c.Get(ctx, "one more question"))
}

func TestChatCacheCorruptEntryIsDropped(t *testing.T) {
	ctx := context.Background()
	c, store := newTestChatCache(t)

	require.NoError(t, store.Save(ctx, messageKey("broken"), "{not json"))

	assert.Nil(t, c.Get(ctx, "broken"))

	entries, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestChatCacheWriteFailureIsSilent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.FailSaves = true
	c := NewChatCache(store, testLogger(t))

	// Must not panic or return anything; the reply is simply not cached.
	c.Set(ctx, "question", "answer", nil)
	assert.Nil(t, c.Get(ctx, "question"))
}

func TestChatCacheClearAndStats(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestChatCache(t)

	c.Set(ctx, "q1", "a1", nil)
	c.Set(ctx, "q2", "a2", nil)

	stats := c.Stats(ctx)
	assert.Equal(t, 2, stats.Count)
	assert.Greater(t, stats.SizeBytes, int64(0))
	assert.Greater(t, stats.OldestTimestamp, int64(0))

	c.ClearAll(ctx)
	assert.Equal(t, 0, c.Stats(ctx).Count)
}
