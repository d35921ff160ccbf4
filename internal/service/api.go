package service

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"sphere/internal/apiclient"
	"sphere/internal/cache"
)

// catalogCacheTTL bounds how long lookup lists (roles, audit actions) are
// served from Redis before the backend is asked again.
const catalogCacheTTL = 5 * time.Minute

// API is the backend transport used by the data services. Each request of
// the portal hands in a client bound to that visitor's session.
type API interface {
	Get(ctx context.Context, path string, query url.Values, out any) (*apiclient.Envelope, error)
	Post(ctx context.Context, path string, body, out any) (*apiclient.Envelope, error)
	Put(ctx context.Context, path string, body, out any) (*apiclient.Envelope, error)
	Delete(ctx context.Context, path string, out any) (*apiclient.Envelope, error)
}

// fetch issues a GET and maps failures to the backend message or fallback.
func fetch(ctx context.Context, api API, path string, query url.Values, out any, fallback string) (*apiclient.Envelope, error) {
	env, err := api.Get(ctx, path, query, out)
	if err := check(env, err, fallback); err != nil {
		return nil, err
	}
	return env, nil
}

// check turns a transport error or a success:false envelope into an error
// carrying the backend message or fallback.
func check(env *apiclient.Envelope, err error, fallback string) error {
	if err != nil {
		return apiclient.Describe(err, fallback)
	}
	return apiclient.Expect(env, fallback)
}

// cachedCatalog serves a lookup list from cache, falling back to load and
// populating the cache on a miss. Cache failures behave like misses.
func cachedCatalog[T any](ctx context.Context, c *cache.Client, key string, load func() ([]T, error)) ([]T, error) {
	if data, _ := c.Get(ctx, key); data != nil {
		var cached []T
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	items, err := load()
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(items); err == nil {
		_ = c.Set(ctx, key, payload, catalogCacheTTL)
	}
	return items, nil
}
