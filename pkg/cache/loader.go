package cache

import (
	"context"
	"fmt"
	"time"
)

// backgroundTimeout bounds a shared or background fetch once its caller is gone.
const backgroundTimeout = 30 * time.Second

// Result is the outcome of a conditional fetch.
type Result[T any] struct {
	// Data is the fetched value. It is ignored when NotModified is set.
	Data T

	// ETag returned with the data, empty if the backend sent none
	ETag string

	// NotModified reports that the backend confirmed the cached entry
	NotModified bool
}

// Fetcher loads a fresh value. etag is the validator stored with the current
// entry, or empty when there is none.
type Fetcher[T any] func(ctx context.Context, etag string) (Result[T], error)

// GetAs returns the value stored under key if it is present and of type T.
func GetAs[T any](c *Cache, key string) (T, bool) {
	var zero T
	data, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	v, ok := data.(T)
	if !ok {
		c.logger.Warn().
			Str("key", key).
			Str("want", fmt.Sprintf("%T", zero)).
			Str("got", fmt.Sprintf("%T", data)).
			Msg("Cached value has unexpected type")
		return zero, false
	}
	return v, true
}

// GetOrFetch returns the cached value for key if one is usable. Otherwise it
// calls fetch and stores the result. hit reports whether the network was
// skipped. Concurrent callers missing on the same key share a single fetch.
func GetOrFetch[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (value T, hit bool, err error) {
	if v, ok := GetAs[T](c, key); ok {
		return v, true, nil
	}

	shared, err := sharedFetch(ctx, c, key, func(ctx context.Context) (any, error) {
		// another flight may have filled the key while this one queued
		if v, ok := GetAs[T](c, key); ok {
			return v, nil
		}
		data, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(key, data)
		return data, nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	v, ok := shared.(T)
	if !ok {
		var zero T
		return zero, false, fmt.Errorf("cache key %q: shared fetch returned %T", key, shared)
	}
	return v, false, nil
}

// Revalidate refreshes the entry for key through fetch, passing the stored
// ETag so the backend can answer not-modified. It returns the current value.
func Revalidate[T any](ctx context.Context, c *Cache, key string, fetch Fetcher[T]) (T, error) {
	var zero T

	etag := ""
	if entry, ok := c.peek(key); ok {
		etag = entry.ETag
	}

	res, err := fetch(ctx, etag)
	if err != nil {
		CacheRevalidations.WithLabelValues("error").Inc()
		return zero, err
	}

	if res.NotModified {
		if entry, ok := c.Touch(key); ok {
			if v, ok := entry.Data.(T); ok {
				CacheRevalidations.WithLabelValues("not_modified").Inc()
				return v, nil
			}
		}

		// The entry disappeared while the request was in flight.
		res, err = fetch(ctx, "")
		if err != nil {
			CacheRevalidations.WithLabelValues("error").Inc()
			return zero, err
		}
		if res.NotModified {
			CacheRevalidations.WithLabelValues("error").Inc()
			return zero, fmt.Errorf("revalidate %q: not modified without a cached entry", key)
		}
	}

	c.SetWithETag(key, res.Data, res.ETag)
	CacheRevalidations.WithLabelValues("updated").Inc()
	return res.Data, nil
}

// Load implements stale-while-revalidate over the cache. Fresh and stale hits
// are returned immediately; a stale hit additionally refreshes the entry in
// the background. A miss fetches synchronously. The returned Freshness is the
// state the value was served in.
func Load[T any](ctx context.Context, c *Cache, key string, fetch Fetcher[T]) (T, Freshness, error) {
	var zero T

	entry, freshness := c.Lookup(key)
	if freshness != Miss {
		if v, ok := entry.Data.(T); ok {
			if freshness == Stale {
				revalidateInBackground(ctx, c, key, fetch)
			}
			return v, freshness, nil
		}
	}

	shared, err := sharedFetch(ctx, c, key, func(ctx context.Context) (any, error) {
		return Revalidate(ctx, c, key, fetch)
	})
	if err != nil {
		return zero, Miss, err
	}
	v, ok := shared.(T)
	if !ok {
		return zero, Miss, fmt.Errorf("cache key %q: shared fetch returned %T", key, shared)
	}
	return v, Miss, nil
}

// sharedFetch runs fn once for all concurrent callers on key. fn gets a
// context detached from every caller, so one caller going away does not fail
// the others; each caller stops waiting when its own ctx is done.
func sharedFetch(ctx context.Context, c *Cache, key string, fn func(context.Context) (any, error)) (any, error) {
	ch := c.group.DoChan(key, func() (any, error) {
		detached, cancel := context.WithTimeout(context.WithoutCancel(ctx), backgroundTimeout)
		defer cancel()
		return fn(detached)
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func revalidateInBackground[T any](ctx context.Context, c *Cache, key string, fetch Fetcher[T]) {
	go func() {
		bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), backgroundTimeout)
		defer cancel()

		_, err, shared := c.group.Do("revalidate:"+key, func() (any, error) {
			return Revalidate(bg, c, key, fetch)
		})
		if err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("Background revalidation failed")
			return
		}
		c.logger.Debug().Str("key", key).Bool("shared", shared).Msg("Background revalidation complete")
	}()
}
