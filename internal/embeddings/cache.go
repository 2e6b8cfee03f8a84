package embeddings

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// TextHash returns a sha256 hex digest over the UTF-8 bytes of text. Cache
// keys are computed from the raw, pre-normalization text so that textually
// identical inputs hit the cache regardless of call site.
func TextHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// Cache memoizes embedding vectors by content hash. Entries are never
// evicted; staleness across model changes is handled by wiping the on-disk
// snapshot, not by invalidating individual entries.
//
// Reads are safe to run concurrently with searches. Writes happen only on
// cache misses and are guarded by the mutex.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string][]float32
	provider Provider
}

// NewCache returns an empty cache backed by provider.
func NewCache(provider Provider) *Cache {
	return &Cache{
		entries:  make(map[string][]float32),
		provider: provider,
	}
}

// NewCacheWithEntries returns a cache pre-populated from a loaded snapshot.
func NewCacheWithEntries(provider Provider, entries map[string][]float32) *Cache {
	if entries == nil {
		entries = make(map[string][]float32)
	}
	return &Cache{
		entries:  entries,
		provider: provider,
	}
}

// GetOrCompute returns the embedding for rawText, computing and memoizing it
// on first sight. Provider errors propagate unwrapped by policy: embedding is
// treated as a reliable local dependency and is not retried here.
func (c *Cache) GetOrCompute(ctx context.Context, rawText string) ([]float32, error) {
	key := TextHash(rawText)

	c.mu.RLock()
	v, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return v, nil
	}

	emb, err := c.provider.Embed(ctx, NormalizeText(rawText))
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = emb
	c.mu.Unlock()
	return emb, nil
}

// Len reports the number of memoized embeddings.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Entries returns a copy of the cache contents for persistence.
func (c *Cache) Entries() map[string][]float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string][]float32, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}
