// Package prefetch warms the response cache for product detail pages the
// visitor is likely to open next.
//
// Prefetching is best-effort: a Scheduler never returns an error. Each route
// is attempted at most once per ledger lifetime, even when the attempt fails
// and even when many requests for it arrive at the same time.
package prefetch

import (
	"context"
	"sync"
	"time"

	"github.com/Sternrassler/baltaragis-client/pkg/cache"
	"github.com/Sternrassler/baltaragis-client/pkg/client"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Prefetches counts prefetch outcomes by result: fetched, cached, skipped, failed.
var Prefetches = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "storefront_prefetch_total",
	Help: "Total prefetch attempts by result",
}, []string{"result"})

// ProductFetcher loads product details.
type ProductFetcher interface {
	GetProduct(ctx context.Context, slug string, opts ...client.RequestOption) (client.ProductDetail, error)
}

// Config holds scheduler configuration.
type Config struct {
	// Concurrency bounds parallel fetches in PrefetchMany
	Concurrency int

	// Timeout per prefetch; zero means the caller's context only
	Timeout time.Duration
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() Config {
	return Config{
		Concurrency: 6,
		Timeout:     10 * time.Second,
	}
}

// Scheduler issues best-effort detail fetches into a shared cache.
type Scheduler struct {
	cache   *cache.Cache
	fetcher ProductFetcher
	config  Config
	logger  zerolog.Logger

	mu     sync.Mutex
	ledger map[string]struct{}
}

// NewScheduler creates a scheduler filling c through fetcher.
func NewScheduler(c *cache.Cache, fetcher ProductFetcher, cfg Config) *Scheduler {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConfig().Concurrency
	}
	return &Scheduler{
		cache:   c,
		fetcher: fetcher,
		config:  cfg,
		logger:  log.With().Str("component", "prefetch").Logger(),
		ledger:  make(map[string]struct{}),
	}
}

// Route returns the ledger identifier of a product detail page.
func Route(slug string) string {
	return "/products/" + slug
}

// claim records route in the ledger and reports whether the caller owns
// the attempt.
func (s *Scheduler) claim(route string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.ledger[route]; seen {
		return false
	}
	s.ledger[route] = struct{}{}
	return true
}

// PrefetchOne warms the cache for slug unless it was already attempted.
// Failures are logged at debug level and otherwise ignored.
func (s *Scheduler) PrefetchOne(ctx context.Context, slug string) {
	if slug == "" {
		return
	}
	route := Route(slug)
	if !s.claim(route) {
		Prefetches.WithLabelValues("skipped").Inc()
		return
	}

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	_, hit, err := cache.GetOrFetch(ctx, s.cache, cache.ProductKey(slug), func(ctx context.Context) (client.ProductDetail, error) {
		return s.fetcher.GetProduct(ctx, slug)
	})
	switch {
	case err != nil:
		Prefetches.WithLabelValues("failed").Inc()
		s.logger.Debug().Err(err).Str("route", route).Msg("Prefetch failed")
	case hit:
		Prefetches.WithLabelValues("cached").Inc()
	default:
		Prefetches.WithLabelValues("fetched").Inc()
		s.logger.Debug().Str("route", route).Msg("Prefetched product")
	}
}

// PrefetchMany prefetches every slug concurrently and returns once all
// attempts have settled.
func (s *Scheduler) PrefetchMany(ctx context.Context, slugs []string) {
	if len(slugs) == 0 {
		return
	}
	var g errgroup.Group
	g.SetLimit(s.config.Concurrency)
	for _, slug := range slugs {
		g.Go(func() error {
			s.PrefetchOne(ctx, slug)
			return nil
		})
	}
	_ = g.Wait()
}

// Attempted reports whether slug has been attempted since the last Reset.
func (s *Scheduler) Attempted(slug string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ledger[Route(slug)]
	return ok
}

// Len returns the number of ledger entries.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ledger)
}

// Reset empties the ledger so every route may be prefetched again.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger = make(map[string]struct{})
}
