// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	go_store "github.com/eko/gocache/store/go_cache/v4"
	redis_store "github.com/eko/gocache/store/redis/v4"
	"github.com/goccy/go-json"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/tomtom215/rewind/internal/config"
	"github.com/tomtom215/rewind/internal/metrics"
)

// Backend types accepted by NewBackend.
const (
	TypeMemory = "memory"
	TypeRedis  = "redis"
)

// Backend is the byte-level store shared by every typed cache.
type Backend struct {
	cache *cache.Cache[[]byte]
	kind  string
	ttl   time.Duration
	close func() error
}

// NewBackend builds the configured store. Redis connectivity is not checked
// here; a failed Get is reported as a miss and a failed Set is logged by the caller.
func NewBackend(cfg *config.CacheConfig) *Backend {
	switch cfg.Type {
	case TypeRedis:
		client := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		return &Backend{
			cache: cache.New[[]byte](redis_store.NewRedis(client)),
			kind:  TypeRedis,
			ttl:   cfg.TTL,
			close: client.Close,
		}
	default:
		return NewMemoryBackend(cfg.TTL)
	}
}

// NewMemoryBackend builds an in-process go-cache store.
func NewMemoryBackend(ttl time.Duration) *Backend {
	client := gocache.New(ttl, 10*time.Minute)
	return &Backend{
		cache: cache.New[[]byte](go_store.NewGoCache(client)),
		kind:  TypeMemory,
		ttl:   ttl,
		close: func() error { return nil },
	}
}

// Type returns memory or redis.
func (b *Backend) Type() string {
	return b.kind
}

// Close releases the backend connection.
func (b *Backend) Close() error {
	return b.close()
}

// Clear removes every entry.
func (b *Backend) Clear(ctx context.Context) error {
	return b.cache.Clear(ctx)
}

// PrefixedCache stores JSON-encoded values of type T under a key prefix.
type PrefixedCache[T any] struct {
	backend *Backend
	prefix  string
	name    string
}

// NewPrefixedCache creates a typed view of backend. name labels the cache metrics.
func NewPrefixedCache[T any](backend *Backend, name, prefix string) *PrefixedCache[T] {
	return &PrefixedCache[T]{backend: backend, prefix: prefix, name: name}
}

func (p *PrefixedCache[T]) key(key any) string {
	return p.prefix + fmt.Sprintf("%v", key)
}

// Get returns the cached value. Any store error, including a missing key,
// is reported as ok=false.
func (p *PrefixedCache[T]) Get(ctx context.Context, key any) (T, bool) {
	var zero T
	data, err := p.backend.cache.Get(ctx, p.key(key))
	if err != nil {
		metrics.RecordCacheLookup(p.name, false)
		return zero, false
	}
	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		metrics.RecordCacheLookup(p.name, false)
		return zero, false
	}
	metrics.RecordCacheLookup(p.name, true)
	return result, true
}

// Set stores object with the backend TTL.
func (p *PrefixedCache[T]) Set(ctx context.Context, key any, object T) error {
	data, err := json.Marshal(object)
	if err != nil {
		return fmt.Errorf("encode %s cache entry: %w", p.name, err)
	}
	return p.backend.cache.Set(ctx, p.key(key), data, store.WithExpiration(p.backend.ttl))
}

// Delete removes one entry.
func (p *PrefixedCache[T]) Delete(ctx context.Context, key any) error {
	return p.backend.cache.Delete(ctx, p.key(key))
}
