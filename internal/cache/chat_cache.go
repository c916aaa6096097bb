package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"portfolio-api/internal/domain"
	"portfolio-api/pkg/logger"
)

const (
	// ChatCacheTTL is how long a cached reply stays valid.
	ChatCacheTTL = 30 * 24 * time.Hour

	// ChatCacheMaxEntries caps the cache; the single globally-oldest entry
	// is evicted before an insert at capacity.
	ChatCacheMaxEntries = 100
)

// chatEntry is the stored envelope for one cached reply.
type chatEntry struct {
	Timestamp int64               `json:"timestamp"`
	Response  string              `json:"response"`
	Sources   []domain.ChatSource `json:"sources,omitempty"`
}

// ChatCache caches assistant chat replies keyed by a hash of the message
// text. Storage errors never escape its public methods; a failed write
// degrades to "not cached".
type ChatCache struct {
	store Store
	log   *logger.Logger
	now   func() time.Time
}

// NewChatCache creates a chat reply cache over the given store.
func NewChatCache(store Store, log *logger.Logger) *ChatCache {
	return &ChatCache{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// messageKey derives the cache key from the message text. A rolling 32-bit
// hash is enough here: a collision only costs a wrong cache hit on a soft
// optimization, not a correctness boundary.
func messageKey(message string) string {
	var hash int32
	for _, r := range message {
		hash = (hash << 5) - hash + int32(r)
	}
	if hash < 0 {
		hash = -hash
	}
	return fmt.Sprintf("msg_%d", hash)
}

// Get returns the cached reply for a message, or nil on a miss. Expired
// entries are treated as misses and lazily deleted.
func (c *ChatCache) Get(ctx context.Context, message string) *domain.ChatReply {
	key := messageKey(message)

	raw, ok, err := c.store.Load(ctx, key)
	if err != nil {
		c.log.WithError(err).Warn("Chat cache read failed")
		return nil
	}
	if !ok {
		return nil
	}

	var entry chatEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		c.log.WithError(err).Warn("Chat cache entry corrupted, dropping")
		c.deleteQuietly(ctx, key)
		return nil
	}

	if c.now().Sub(time.UnixMilli(entry.Timestamp)) > ChatCacheTTL {
		c.deleteQuietly(ctx, key)
		return nil
	}

	return &domain.ChatReply{
		Response: entry.Response,
		Sources:  entry.Sources,
		Cached:   true,
	}
}

// Set caches a reply for a message. At capacity the single oldest entry is
// removed first.
func (c *ChatCache) Set(ctx context.Context, message, response string, sources []domain.ChatSource) {
	entries, err := c.store.LoadAll(ctx)
	if err != nil {
		c.log.WithError(err).Warn("Chat cache enumeration failed, skipping store")
		return
	}

	if len(entries) >= ChatCacheMaxEntries {
		if oldest := oldestKey(entries); oldest != "" {
			c.deleteQuietly(ctx, oldest)
		}
	}

	raw, err := json.Marshal(chatEntry{
		Timestamp: c.now().UnixMilli(),
		Response:  response,
		Sources:   sources,
	})
	if err != nil {
		c.log.WithError(err).Warn("Chat cache entry encoding failed")
		return
	}

	if err := c.store.Save(ctx, messageKey(message), string(raw)); err != nil {
		c.log.WithError(err).Warn("Chat cache write failed")
	}
}

// ClearAll drops every cached reply.
func (c *ChatCache) ClearAll(ctx context.Context) {
	if err := c.store.Clear(ctx); err != nil {
		c.log.WithError(err).Warn("Chat cache clear failed")
	}
}

// Stats reports entry count and an estimate of the stored size.
func (c *ChatCache) Stats(ctx context.Context) CacheStats {
	entries, err := c.store.LoadAll(ctx)
	if err != nil {
		c.log.WithError(err).Warn("Chat cache stats failed")
		return CacheStats{}
	}

	var size int64
	var oldest int64
	for _, raw := range entries {
		size += int64(len(raw))
		if ts := entryTimestamp(raw); ts > 0 && (oldest == 0 || ts < oldest) {
			oldest = ts
		}
	}

	return CacheStats{Count: len(entries), SizeBytes: size, OldestTimestamp: oldest}
}

func (c *ChatCache) deleteQuietly(ctx context.Context, key string) {
	if err := c.store.Delete(ctx, key); err != nil {
		c.log.WithError(err).Warn("Chat cache delete failed")
	}
}

// CacheStats describes a cache manager's current footprint.
type CacheStats struct {
	Count           int   `json:"count"`
	SizeBytes       int64 `json:"size_bytes"`
	OldestTimestamp int64 `json:"oldest_timestamp,omitempty"`
}

// oldestKey returns the key of the entry with the smallest timestamp.
func oldestKey(entries map[string]string) string {
	var key string
	var oldest int64
	for k, raw := range entries {
		ts := entryTimestamp(raw)
		if ts == 0 {
			continue
		}
		if key == "" || ts < oldest {
			key, oldest = k, ts
		}
	}
	return key
}

// entryTimestamp extracts the timestamp field from a stored envelope,
// returning 0 for unparseable entries.
func entryTimestamp(raw string) int64 {
	var probe struct {
		Timestamp int64 `json:"timestamp"`
	}
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return 0
	}
	return probe.Timestamp
}
