package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the byte cache used for search API responses. The fetch path
// only ever reads and writes; invalidation happens by TTL expiry, and the
// --no-cache flag bypasses the cache entirely.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
}

// Key generates a cache key from a request URL.
func Key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "statusscore:v1:" + hex.EncodeToString(hash[:])
}
