package redis

import (
	"context"
	"path"
	"time"

	"sms_campaign_server/pkg/errorx"

	"github.com/patrickmn/go-cache"
)

const memoryCleanupInterval = 5 * time.Minute

// MemoryCache is an in-process AsyncCacheService used when redis is disabled.
// It only holds state for a single instance.
type MemoryCache struct {
	store *cache.Cache
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{store: cache.New(cache.NoExpiration, memoryCleanupInterval)}
}

// expiration maps a non-positive ttl to no expiry, like redis SET without EX.
func expiration(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return cache.NoExpiration
	}
	return ttl
}

func (m *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	m.store.Set(key, value, expiration(ttl))
	return nil
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, error) {
	v, ok := m.store.Get(key)
	if !ok {
		return "", nil
	}
	return v.(string), nil
}

func (m *MemoryCache) GetOrError(_ context.Context, key string) (string, error) {
	v, ok := m.store.Get(key)
	if !ok {
		return "", errorx.Newf(errorx.CodeNotFound, "cache key %s not found", key)
	}
	return v.(string), nil
}

// SetNX reports whether key was stored; Add fails while an unexpired value exists.
func (m *MemoryCache) SetNX(_ context.Context, key string, value string, ttl time.Duration) (bool, error) {
	if err := m.store.Add(key, value, expiration(ttl)); err != nil {
		return false, nil
	}
	return true, nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.store.Delete(key)
	return nil
}

// DeleteByPattern accepts redis-style glob patterns.
func (m *MemoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	for key := range m.store.Items() {
		if ok, _ := path.Match(pattern, key); ok {
			m.store.Delete(key)
		}
	}
	return nil
}

// SubmitTask runs action inline.
func (m *MemoryCache) SubmitTask(action func()) {
	action()
}

var _ AsyncCacheService = (*MemoryCache)(nil)
