// Package cache provides the storefront's in-memory response cache.
//
// The cache keeps every entry for two windows measured from the moment the
// entry was stored:
//
//   - fresh (5 minutes): the value is served as is
//   - stale (10 minutes): the value is still served, callers revalidate it
//   - past the stale window the entry is evicted on the next read
//
// # Basic Usage
//
//	c := cache.New()
//
//	key := cache.BuildKey("products", map[string]any{"page": 0, "size": 12})
//	c.Set(key, page)
//
//	if v, ok := cache.GetAs[*client.ProductPage](c, key); ok {
//		render(v)
//	}
//
// # Stale-While-Revalidate
//
// Lookup reports the freshness of a hit so a caller can render stale data
// immediately and refresh it in the background:
//
//	page, freshness, err := cache.Load(ctx, c, key, fetchProducts)
//
// Load returns fresh and stale hits straight away. A stale hit schedules a
// background Revalidate; a miss fetches synchronously. Concurrent misses for
// the same key share one fetch.
//
// # Conditional Requests
//
// Entries may carry the ETag of the response they were built from. Revalidate
// hands that ETag to the fetcher, and a fetcher that reports NotModified only
// restamps the existing entry.
//
// # Metrics
//
//   - storefront_cache_hits_total{freshness} - hits by fresh/stale
//   - storefront_cache_misses_total - misses, including expired entries
//   - storefront_cache_evictions_total{reason} - expired/invalidated/cleared
//   - storefront_cache_entries - entries currently held
//   - storefront_cache_revalidations_total{result} - updated/not_modified/error
package cache
