package cache

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"portfolio-api/pkg/logger"
)

const (
	// ImageCacheTTL is how long a cached image stays valid.
	ImageCacheTTL = 7 * 24 * time.Hour

	// ImageCacheMaxBytes caps the total estimated cache footprint. New
	// entries that would exceed it are refused rather than evicting.
	ImageCacheMaxBytes = 50 * 1024 * 1024

	imageKeyPrefix = "img_v1_"
)

// imageEntry is the stored envelope for one cached image.
type imageEntry struct {
	Data      string `json:"data"` // base64 image payload
	Timestamp int64  `json:"timestamp"`
	Prompt    string `json:"prompt"` // leading slice, for inspection only
}

// ImageCache caches generated images keyed by the prompt parameters.
// Storage errors never escape its public methods.
type ImageCache struct {
	store Store
	log   *logger.Logger
	now   func() time.Time
}

// NewImageCache creates an image cache over the given store.
func NewImageCache(store Store, log *logger.Logger) *ImageCache {
	return &ImageCache{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// imageKey derives the cache key from the generation parameters.
func imageKey(prompt, style, ratio string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(prompt + "|" + style + "|" + ratio))
	var b strings.Builder
	for _, r := range encoded {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return imageKeyPrefix + b.String()
}

// Get returns the cached image data for the parameters, or empty string on a
// miss. Expired entries are misses and lazily deleted.
func (c *ImageCache) Get(ctx context.Context, prompt, style, ratio string) string {
	key := imageKey(prompt, style, ratio)

	raw, ok, err := c.store.Load(ctx, key)
	if err != nil {
		c.log.WithError(err).Warn("Image cache read failed")
		return ""
	}
	if !ok {
		return ""
	}

	var entry imageEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		c.log.WithError(err).Warn("Image cache entry corrupted, dropping")
		c.deleteQuietly(ctx, key)
		return ""
	}

	if c.now().Sub(time.UnixMilli(entry.Timestamp)) > ImageCacheTTL {
		c.deleteQuietly(ctx, key)
		return ""
	}

	return entry.Data
}

// Set caches a generated image. Entries that would push the total footprint
// past the byte budget are refused; a failed write reacts by deleting the
// globally-oldest entry to make space for the next attempt.
func (c *ImageCache) Set(ctx context.Context, prompt, style, ratio, imageData string) {
	estimated := int64(len(imageData)) * 2

	entries, err := c.store.LoadAll(ctx)
	if err != nil {
		c.log.WithError(err).Warn("Image cache enumeration failed, skipping store")
		return
	}

	var total int64
	for _, raw := range entries {
		total += int64(len(raw))
	}
	if total+estimated >= ImageCacheMaxBytes {
		c.log.WithFields(map[string]interface{}{
			"total_bytes":     total,
			"estimated_bytes": estimated,
		}).Warn("Image cache near byte budget, skipping storage")
		return
	}

	raw, err := json.Marshal(imageEntry{
		Data:      imageData,
		Timestamp: c.now().UnixMilli(),
		Prompt:    truncatePrompt(prompt),
	})
	if err != nil {
		c.log.WithError(err).Warn("Image cache entry encoding failed")
		return
	}

	if err := c.store.Save(ctx, imageKey(prompt, style, ratio), string(raw)); err != nil {
		c.log.WithError(err).Warn("Image cache write failed, evicting oldest entry")
		if oldest := oldestKey(entries); oldest != "" {
			c.deleteQuietly(ctx, oldest)
		}
	}
}

// ClearAll drops every cached image.
func (c *ImageCache) ClearAll(ctx context.Context) {
	if err := c.store.Clear(ctx); err != nil {
		c.log.WithError(err).Warn("Image cache clear failed")
	}
}

// Stats reports entry count, stored size and the oldest entry timestamp.
func (c *ImageCache) Stats(ctx context.Context) CacheStats {
	entries, err := c.store.LoadAll(ctx)
	if err != nil {
		c.log.WithError(err).Warn("Image cache stats failed")
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

func (c *ImageCache) deleteQuietly(ctx context.Context, key string) {
	if err := c.store.Delete(ctx, key); err != nil {
		c.log.WithError(err).Warn("Image cache delete failed")
	}
}

func truncatePrompt(prompt string) string {
	runes := []rune(prompt)
	if len(runes) <= 50 {
		return prompt
	}
	return fmt.Sprintf("%s…", string(runes[:50]))
}
