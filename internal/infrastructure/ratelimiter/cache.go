package ratelimiter

import (
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("cache miss")

// GetterSetter is the bucket-state store. The in-memory implementation is the
// default; anything with per-key TTL semantics can replace it.
type GetterSetter interface {
	Get(key string) (int, error)
	SetWithExpiration(key string, value int, expiration time.Duration) error
	Close() error
}
