package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryCache is a size-bounded LRU with a single TTL for all entries.
// Values are stored encoded so callers never share mutable state.
type MemoryCache struct {
	lru *expirable.LRU[string, []byte]
}

func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		MaxSize: 1000,
		TTL:     5 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &MemoryCache{lru: expirable.NewLRU[string, []byte](cfg.MaxSize, nil, cfg.TTL)}
}

// Set stores value. The per-call expiration is ignored; entries live for
// the cache-wide TTL.
func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	mc.lru.Add(key, data)
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	data, ok := mc.lru.Get(key)
	if !ok {
		return ErrCacheMiss
	}
	return decode(data, dest)
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		mc.lru.Remove(k)
	}
	return nil
}

// Len reports the number of live entries.
func (mc *MemoryCache) Len() int { return mc.lru.Len() }

func (mc *MemoryCache) Close() error {
	mc.lru.Purge()
	return nil
}
