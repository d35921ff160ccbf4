package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sphere/internal/cache"
)

const sessionKeyPrefix = "portal_session:"

// CacheBackend stores each record as one JSON value in Redis with a sliding TTL.
type CacheBackend struct {
	cache *cache.Client
	ttl   time.Duration
}

var _ Backend = (*CacheBackend)(nil)

// NewCacheBackend creates a Redis-backed session backend.
func NewCacheBackend(cache *cache.Client, ttl time.Duration) *CacheBackend {
	return &CacheBackend{cache: cache, ttl: ttl}
}

func (b *CacheBackend) key(id string) string {
	return sessionKeyPrefix + id
}

func (b *CacheBackend) Load(ctx context.Context, id string) (*Record, error) {
	data, err := b.cache.StrictGet(ctx, b.key(id))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	b.cache.Expire(ctx, b.key(id), b.ttl)
	return &rec, nil
}

func (b *CacheBackend) Save(ctx context.Context, id string, rec Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return b.cache.StrictSet(ctx, b.key(id), payload, b.ttl)
}

func (b *CacheBackend) Delete(ctx context.Context, id string) error {
	return b.cache.StrictDelete(ctx, b.key(id))
}
