package html2uri

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
)

// Cache stores rendered image URIs.
// Implementations must be safe for concurrent use; Set on an existing key
// overwrites it.
type Cache interface {
	// Get returns the URI stored under key and whether it was found.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores uri under key.
	Set(ctx context.Context, key, uri string) error
}

// MemoryCache keeps renders for the lifetime of the process.
// Entries are never evicted.
type MemoryCache struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{values: make(map[string]string)}
}

// Get retrieves a cached render by its key.
func (c *MemoryCache) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	uri, ok := c.values[key]
	return uri, ok, nil
}

// Set stores a render under key.
func (c *MemoryCache) Set(ctx context.Context, key, uri string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = uri
	return nil
}

// Len returns the number of cached renders.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}

// Clear drops every entry.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = make(map[string]string)
}

// NullCache never stores anything, so every render reaches the rasterizer.
type NullCache struct{}

// Get always reports a miss.
func (NullCache) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, nil
}

// Set does nothing.
func (NullCache) Set(ctx context.Context, key, uri string) error {
	return nil
}

// Compile-time interface checks.
var (
	_ Cache = (*MemoryCache)(nil)
	_ Cache = NullCache{}
)

// contentKey is the default cache key: the raw content string.
// Settings are deliberately ignored, so the first render of a content
// string wins for every later request carrying the same content.
func contentKey(_ Settings, content string) string {
	return content
}

// settingsContentKey keys on both the normalized settings and the content.
// Selected with WithSettingsInCacheKey.
func settingsContentKey(s Settings, content string) string {
	data, _ := json.Marshal(struct {
		Settings Settings `json:"s"`
		Content  string   `json:"c"`
	}{s, content})
	sum := sha256.Sum256(data)
	return "render:" + hex.EncodeToString(sum[:])
}
