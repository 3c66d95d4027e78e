// Package cache keeps remote answers for a bounded time in a bounded LRU.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultSize = 512
	DefaultTTL  = time.Hour
)

// TTL is a size bounded cache whose entries expire after a fixed time.
// It is safe for concurrent use.
type TTL[V any] struct {
	lru *expirable.LRU[string, V]
}

// New creates a cache. Non-positive size or ttl fall back to the defaults.
func New[V any](size int, ttl time.Duration) *TTL[V] {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TTL[V]{lru: expirable.NewLRU[string, V](size, nil, ttl)}
}

func (c *TTL[V]) Get(key string) (V, bool) {
	return c.lru.Get(key)
}

func (c *TTL[V]) Set(key string, value V) {
	c.lru.Add(key, value)
}

func (c *TTL[V]) Len() int {
	return c.lru.Len()
}

// Key hashes the parts into a fixed length key. Parts are length prefixed so
// ("ab", "c") and ("a", "bc") never collide.
func Key(parts ...string) string {
	h := sha256.New()
	var size [8]byte
	for _, part := range parts {
		n := uint64(len(part))
		for i := range size {
			size[i] = byte(n >> (8 * i))
		}
		h.Write(size[:])
		h.Write([]byte(part))
	}
	return hex.EncodeToString(h.Sum(nil))
}
