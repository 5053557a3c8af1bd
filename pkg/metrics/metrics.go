// Package metrics provides the Prometheus registry and scrape handler for the
// storefront client. All metrics are defined in their respective packages
// (cache, client, prefetch) to maintain modularity and avoid circular
// dependencies.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the storefront client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the counterpart of Registry used when serving metrics.
var Gatherer = prometheus.DefaultGatherer

// Handler serves every registered metric in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - storefront_cache_hits_total{freshness} (Counter): Cache hits by freshness (fresh, stale)
//   - storefront_cache_misses_total (Counter): Cache misses, including expired entries
//   - storefront_cache_evictions_total{reason} (Counter): Entries removed (expired, invalidated, cleared)
//   - storefront_cache_entries (Gauge): Current number of cached entries
//   - storefront_cache_revalidations_total{result} (Counter): Revalidation outcomes
//
// Request Metrics (pkg/client):
//   - storefront_requests_total{endpoint, status} (Counter): Total requests by route and HTTP status
//   - storefront_request_duration_seconds{endpoint} (Histogram): Request duration by route
//   - storefront_errors_total{class} (Counter): Errors by class (client, server, network)
//
// Retry Metrics (pkg/client):
//   - storefront_retries_total{error_class} (Counter): Retry attempts by error class
//   - storefront_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - storefront_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Prefetch Metrics (pkg/prefetch):
//   - storefront_prefetch_total{result} (Counter): Prefetch outcomes (fetched, cached, skipped, failed)
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(storefront_cache_hits_total[5m])) /
//   (sum(rate(storefront_cache_hits_total[5m])) + sum(rate(storefront_cache_misses_total[5m])))
//
//   # Share of hits served stale while revalidating
//   rate(storefront_cache_hits_total{freshness="stale"}[5m]) / rate(storefront_cache_hits_total[5m])
//
//   # Request Error Rate
//   rate(storefront_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(storefront_request_duration_seconds_bucket[5m]))
//
//   # 304 Revalidation Rate
//   rate(storefront_requests_total{status="304"}[5m]) / rate(storefront_requests_total[5m])
