package upstream

import (
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// cacheEntry holds one zstd-compressed payload and its expiry.
type cacheEntry struct {
	compressed []byte
	expiresAt  time.Time
}

// Cache is an in-memory TTL cache for upstream response payloads. Entries are
// stored zstd-compressed: the panel is frequently polled with identical
// filters, and series payloads for year-long periods compress well.
//
// To avoid the map-memory-leak pattern, expired entries are swept periodically
// by a background goroutine; Close stops it.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	stop    chan struct{}

	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewCache creates a cache whose entries expire after ttl. A ttl of zero
// disables the cache: Get always misses and Set is a no-op.
func NewCache(ttl time.Duration) (*Cache, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}

	c := &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		stop:    make(chan struct{}),
		enc:     enc,
		dec:     dec,
	}
	if ttl > 0 {
		go c.sweep()
	}
	return c, nil
}

// Get returns the decompressed payload if present and not expired.
func (c *Cache) Get(key string) ([]byte, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}

	// DecodeAll is safe for concurrent use; no lock needed here.
	payload, err := c.dec.DecodeAll(entry.compressed, nil)
	if err != nil {
		// A corrupt entry is treated as a miss; it will be overwritten on
		// the next successful fetch.
		return nil, false
	}
	return payload, true
}

// Set stores a payload under the given key with the configured TTL.
func (c *Cache) Set(key string, payload []byte) {
	if c.ttl <= 0 {
		return
	}

	compressed := c.enc.EncodeAll(payload, nil)
	c.mu.Lock()
	c.entries[key] = cacheEntry{
		compressed: compressed,
		expiresAt:  time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// Close stops the sweep goroutine and releases the codec resources.
func (c *Cache) Close() error {
	if c.ttl > 0 {
		close(c.stop)
	}
	c.enc.Close()
	c.dec.Close()
	return nil
}

// sweep runs periodically, rebuilding the map to drop expired entries and
// reclaim memory.
func (c *Cache) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			fresh := make(map[string]cacheEntry, len(c.entries))
			for k, v := range c.entries {
				if now.Before(v.expiresAt) {
					fresh[k] = v
				}
			}
			c.entries = fresh
			c.mu.Unlock()
		}
	}
}
