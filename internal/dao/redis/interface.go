// Package redis is the cache layer. Services depend on the interfaces here,
// not on go-redis directly.
package redis

import (
	"context"
	"time"
)

// CacheService synchronous cache operations.
type CacheService interface {
	// Set stores value under key with ttl (0 means no expiry).
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// Get returns "" and nil when key is absent.
	Get(ctx context.Context, key string) (string, error)
	// GetOrError returns a CodeNotFound error when key is absent.
	GetOrError(ctx context.Context, key string) (string, error)
	// SetNX stores value only if key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// AsyncCacheService adds fire-and-forget cache work.
type AsyncCacheService interface {
	CacheService
	// SubmitTask runs action on a cache worker, or inline when the queue is full.
	SubmitTask(action func())
}
