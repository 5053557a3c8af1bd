package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by freshness
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cache_hits_total",
			Help: "Total number of response cache hits",
		},
		[]string{"freshness"}, // "fresh", "stale"
	)

	// CacheMisses tracks cache misses
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_cache_misses_total",
			Help: "Total number of response cache misses",
		},
	)

	// CacheEvictions tracks removed entries by reason
	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cache_evictions_total",
			Help: "Total number of response cache entries removed",
		},
		[]string{"reason"}, // "expired", "invalidated", "cleared"
	)

	// CacheEntries tracks the number of entries currently held
	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_cache_entries",
			Help: "Current number of response cache entries",
		},
	)

	// CacheRevalidations tracks background and conditional refreshes
	CacheRevalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cache_revalidations_total",
			Help: "Total number of cache revalidations by result",
		},
		[]string{"result"}, // "updated", "not_modified", "error"
	)
)
