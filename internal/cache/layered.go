package cache

import "time"

// LayeredCache composes a memory cache over an optional disk cache.
// Reads check memory first and promote disk hits.
type LayeredCache struct {
	memory Cache
	disk   Cache
}

// NewLayeredCache creates a layered cache. diskDir may be empty, in which
// case only the memory layer is used.
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	c := &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 10*time.Minute),
	}
	if diskDir != "" {
		c.disk = NewDiskCache(diskDir, diskTTL)
	}
	return c
}

// Get retrieves a value, checking memory first, then disk
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.memory.Get(key); found {
		return val, true
	}

	if c.disk != nil {
		if val, found := c.disk.Get(key); found {
			_ = c.memory.Set(key, val, 0)
			return val, true
		}
	}

	return nil, false
}

// Set stores a value in all layers
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.memory.Set(key, value, ttl); err != nil {
		return err
	}
	if c.disk != nil {
		return c.disk.Set(key, value, ttl)
	}
	return nil
}

// Delete removes a value from all layers
func (c *LayeredCache) Delete(key string) error {
	_ = c.memory.Delete(key)
	if c.disk != nil {
		_ = c.disk.Delete(key)
	}
	return nil
}

// Clear removes all values from all layers
func (c *LayeredCache) Clear() error {
	_ = c.memory.Clear()
	if c.disk != nil {
		_ = c.disk.Clear()
	}
	return nil
}
