// Package cache stores fetched documents and adapter outputs between
// scoring runs.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is a byte-oriented store with per-entry expiry.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a stable cache key from arbitrary payload text. The payload
// is hashed so keys stay filesystem safe regardless of input size.
func Key(payload string) string {
	hash := sha256.Sum256([]byte(payload))
	return "factsumm:v1:" + hex.EncodeToString(hash[:])
}
