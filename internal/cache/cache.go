package cache

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// Cache defines the interface for the result cache
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a content-addressed cache key for a claim text.
// The text is hashed byte-identically: no case or whitespace normalization,
// so only exact resubmissions hit the cache.
func Key(text string) string {
	hash := md5.Sum([]byte(text))
	return "cache:v1:" + hex.EncodeToString(hash[:])
}
