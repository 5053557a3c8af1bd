// Package listing drives a paginated, searchable product listing on top of
// the response cache.
//
// A Controller owns the query, page index, page size, and the last result
// page. Every parameter change starts a new load; results from superseded
// loads are dropped, and nothing is applied after Close.
package listing

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/Sternrassler/baltaragis-client/pkg/cache"
	"github.com/Sternrassler/baltaragis-client/pkg/client"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultDebounce is how long query input must stay idle before it is applied.
const DefaultDebounce = 300 * time.Millisecond

// Status is the load state of the listing.
type Status int

const (
	Idle Status = iota
	Loading
	Revalidating
	Loaded
	Error
)

// String returns the lower-case status name.
func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Revalidating:
		return "revalidating"
	case Loaded:
		return "loaded"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// ProductSource fetches product listing pages.
type ProductSource interface {
	GetProducts(ctx context.Context, q client.ProductQuery, opts ...client.RequestOption) (client.ProductPage, error)
}

// Prefetcher warms detail pages for displayed slugs.
type Prefetcher interface {
	PrefetchMany(ctx context.Context, slugs []string)
}

// Snapshot is an immutable view of the controller state.
type Snapshot struct {
	Params Params

	// QueryInput is the raw search field, possibly not yet applied
	QueryInput string

	Status Status

	// Page is the displayed result; valid when HasData is set
	Page    client.ProductPage
	HasData bool

	// Err is set in the Error status
	Err error
}

// Empty reports a loaded result with no items, as opposed to an error.
func (s Snapshot) Empty() bool {
	return s.HasData && len(s.Page.Content) == 0
}

// Config holds controller configuration.
type Config struct {
	// DefaultSize applies when the URL carries no size
	DefaultSize int

	// Debounce delays query input; zero uses DefaultDebounce
	Debounce time.Duration

	// Prefetcher receives the slugs of every displayed page (optional)
	Prefetcher Prefetcher

	// OnNavigate is called with the new URL values after every parameter change
	OnNavigate func(url.Values)

	Logger *zerolog.Logger
}

// Controller is the listing state machine. It is safe for concurrent use.
type Controller struct {
	cache  *cache.Cache
	source ProductSource
	config Config
	logger zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	snap        Snapshot
	generation  uint64
	debounce    *time.Timer
	debounceSeq uint64
	closed      bool
	subs        map[int]func(Snapshot)
	nextSub     int
}

// NewController creates a controller starting from initial. Call Start to
// issue the first load.
func NewController(c *cache.Cache, source ProductSource, initial Params, cfg Config) *Controller {
	if cfg.DefaultSize <= 0 {
		cfg.DefaultSize = DefaultPageSize
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if initial.Size <= 0 {
		initial.Size = cfg.DefaultSize
	}
	if initial.Page < 0 {
		initial.Page = 0
	}

	logger := log.With().Str("component", "product-listing").Logger()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		cache:  c,
		source: source,
		config: cfg,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		snap: Snapshot{
			Params:     initial,
			QueryInput: initial.Query,
			Status:     Idle,
		},
		subs: make(map[int]func(Snapshot)),
	}
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Subscribe registers fn to receive every state change. The returned
// function removes the subscription.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// Start issues the initial load.
func (c *Controller) Start() {
	c.update(func(p *Params) bool { return true }, false)
}

// SetQueryInput records a keystroke. The query is applied once input has
// been idle for the debounce delay; only the settled value is fetched.
func (c *Controller) SetQueryInput(text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.snap.QueryInput = text
	c.debounceSeq++
	seq := c.debounceSeq
	if c.debounce != nil {
		c.debounce.Stop()
	}
	c.debounce = time.AfterFunc(c.config.Debounce, func() { c.settleQuery(seq, text) })
	snap, subs := c.snap, c.subscribers()
	c.mu.Unlock()

	notify(subs, snap)
}

// ClearQuery empties the search field and applies it immediately.
func (c *Controller) ClearQuery() {
	c.mu.Lock()
	c.debounceSeq++
	if c.debounce != nil {
		c.debounce.Stop()
	}
	c.snap.QueryInput = ""
	c.mu.Unlock()

	c.applyQuery("")
}

func (c *Controller) applyQuery(text string) {
	c.update(func(p *Params) bool { return setQuery(p, text) }, true)
}

// settleQuery applies debounced text unless a keystroke or ClearQuery has
// happened since it was typed. The check runs under the lock that applies it.
func (c *Controller) settleQuery(seq uint64, text string) {
	c.update(func(p *Params) bool {
		return seq == c.debounceSeq && setQuery(p, text)
	}, true)
}

func setQuery(p *Params, text string) bool {
	if p.Query == text {
		return false
	}
	p.Query = text
	p.Page = 0
	return true
}

// SetPage moves to page, keeping query and size.
func (c *Controller) SetPage(page int) {
	if page < 0 {
		page = 0
	}
	c.update(func(p *Params) bool {
		if p.Page == page {
			return false
		}
		p.Page = page
		return true
	}, true)
}

// SetSize changes the page size and returns to the first page.
func (c *Controller) SetSize(size int) {
	if size <= 0 {
		size = c.config.DefaultSize
	}
	c.update(func(p *Params) bool {
		if p.Size == size {
			return false
		}
		p.Size = size
		p.Page = 0
		return true
	}, true)
}

// Retry reloads the current parameters.
func (c *Controller) Retry() {
	c.update(func(p *Params) bool { return true }, false)
}

// Close stops the controller. In-flight results are discarded and no
// further changes are applied or published.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.debounceSeq++
	if c.debounce != nil {
		c.debounce.Stop()
	}
	c.subs = make(map[int]func(Snapshot))
	c.mu.Unlock()

	c.cancel()
}

// Wait blocks until in-flight loads and prefetches have finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// update applies change to the parameters and starts a load when it
// reports a change. change runs with c.mu held.
func (c *Controller) update(change func(*Params) bool, navigate bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	params := c.snap.Params
	if !change(&params) {
		c.mu.Unlock()
		return
	}
	c.snap.Params = params
	c.generation++
	gen := c.generation
	key := cache.ProductListKey(params.Query, params.Page, params.Size)

	var slugs []string
	var background bool
	entry, freshness := c.cache.Lookup(key)
	if page, ok := entry.Data.(client.ProductPage); ok && freshness != cache.Miss {
		c.snap.Page = page
		c.snap.HasData = true
		c.snap.Err = nil
		c.snap.Status = Loaded
		if freshness == cache.Stale {
			c.snap.Status = Revalidating
			background = true
		}
		slugs = page.Slugs()
	} else {
		c.snap.Status = Loading
		c.snap.HasData = false
		c.snap.Page = client.ProductPage{}
		c.snap.Err = nil
		background = true
	}
	snap, subs := c.snap, c.subscribers()
	c.mu.Unlock()

	if navigate && c.config.OnNavigate != nil {
		c.config.OnNavigate(params.Values())
	}
	notify(subs, snap)
	c.prefetch(slugs)

	if background {
		c.wg.Add(1)
		go c.fetch(gen, key, params, snap.Status == Revalidating)
	}
}

// fetch loads key from the network and applies the result if gen is
// still current.
func (c *Controller) fetch(gen uint64, key string, params Params, revalidating bool) {
	defer c.wg.Done()

	query := client.ProductQuery{Q: params.Query, Page: client.Int(params.Page), Size: client.Int(params.Size)}
	fetcher := client.Conditional(func(ctx context.Context, opts ...client.RequestOption) (client.ProductPage, error) {
		return c.source.GetProducts(ctx, query, opts...)
	})
	page, err := cache.Revalidate(c.ctx, c.cache, key, fetcher)

	c.mu.Lock()
	if c.closed || gen != c.generation {
		c.mu.Unlock()
		c.logger.Debug().Str("key", key).Msg("Dropping superseded listing result")
		return
	}

	var slugs []string
	switch {
	case err != nil && revalidating:
		// the stale page stays on screen
		c.snap.Status = Loaded
		c.logger.Warn().Err(err).Str("key", key).Msg("Listing revalidation failed")
	case err != nil:
		c.snap.Status = Error
		c.snap.Err = err
		c.logger.Warn().Err(err).Str("key", key).Msg("Listing load failed")
	default:
		c.snap.Status = Loaded
		c.snap.Page = page
		c.snap.HasData = true
		c.snap.Err = nil
		slugs = page.Slugs()
	}
	snap, subs := c.snap, c.subscribers()
	c.mu.Unlock()

	notify(subs, snap)
	c.prefetch(slugs)
}

func (c *Controller) prefetch(slugs []string) {
	if c.config.Prefetcher == nil || len(slugs) == 0 {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.config.Prefetcher.PrefetchMany(c.ctx, slugs)
	}()
}

// subscribers must be called with c.mu held.
func (c *Controller) subscribers() []func(Snapshot) {
	subs := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}
