package listing

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/Sternrassler/baltaragis-client/pkg/cache"
	"github.com/Sternrassler/baltaragis-client/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu    sync.Mutex
	calls []client.ProductQuery
	gates map[int]chan struct{}
	err   error
	empty bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{gates: map[int]chan struct{}{}}
}

func (f *fakeSource) GetProducts(ctx context.Context, q client.ProductQuery, _ ...client.RequestOption) (client.ProductPage, error) {
	page := 0
	if q.Page != nil {
		page = *q.Page
	}

	f.mu.Lock()
	f.calls = append(f.calls, q)
	gate := f.gates[page]
	err := f.err
	empty := f.empty
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return client.ProductPage{}, ctx.Err()
		}
	}
	if err != nil {
		return client.ProductPage{}, err
	}
	if empty {
		return client.ProductPage{Number: page, Empty: true}, nil
	}
	return client.ProductPage{
		Number:  page,
		Size:    *q.Size,
		Content: []client.ProductCard{{Slug: q.Q + "-p" + strconv.Itoa(page)}},
	}, nil
}

func (f *fakeSource) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeSource) queries() []client.ProductQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]client.ProductQuery(nil), f.calls...)
}

type fakePrefetcher struct {
	mu    sync.Mutex
	slugs []string
}

func (p *fakePrefetcher) PrefetchMany(_ context.Context, slugs []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.slugs = append(p.slugs, slugs...)
}

func (p *fakePrefetcher) seen() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.slugs...)
}

func waitStatus(t *testing.T, c *Controller, want Status) Snapshot {
	t.Helper()
	require.Eventually(t, func() bool {
		return c.Snapshot().Status == want
	}, 2*time.Second, 5*time.Millisecond, "status never became %s", want)
	return c.Snapshot()
}

func TestController_LoadsOnStart(t *testing.T) {
	src := newFakeSource()
	pf := &fakePrefetcher{}
	c := NewController(cache.New(), src, Params{}, Config{Prefetcher: pf})
	defer c.Close()

	c.Start()
	snap := waitStatus(t, c, Loaded)
	c.Wait()

	require.True(t, snap.HasData)
	assert.Equal(t, "-p0", snap.Page.Content[0].Slug)
	assert.Equal(t, 12, *src.queries()[0].Size)
	assert.Equal(t, []string{"-p0"}, pf.seen())
}

func TestController_DebouncedSearch(t *testing.T) {
	src := newFakeSource()
	var navigated []url.Values
	var navMu sync.Mutex
	c := NewController(cache.New(), src, Params{Page: 3}, Config{
		Debounce: 30 * time.Millisecond,
		OnNavigate: func(v url.Values) {
			navMu.Lock()
			defer navMu.Unlock()
			navigated = append(navigated, v)
		},
	})
	defer c.Close()

	c.SetQueryInput("sunset")
	c.SetQueryInput("sunset print")
	assert.Equal(t, "sunset print", c.Snapshot().QueryInput)

	snap := waitStatus(t, c, Loaded)
	c.Wait()

	queries := src.queries()
	require.Len(t, queries, 1)
	assert.Equal(t, "sunset print", queries[0].Q)
	assert.Equal(t, 0, *queries[0].Page)
	assert.Equal(t, Params{Query: "sunset print", Page: 0, Size: 12}, snap.Params)

	navMu.Lock()
	defer navMu.Unlock()
	require.Len(t, navigated, 1)
	assert.Equal(t, "sunset print", navigated[0].Get("q"))
	assert.Equal(t, "0", navigated[0].Get("page"))
}

func TestController_ClearQueryBypassesDebounce(t *testing.T) {
	src := newFakeSource()
	c := NewController(cache.New(), src, Params{Query: "sunset"}, Config{Debounce: time.Hour})
	defer c.Close()

	c.SetQueryInput("sunset pr")
	c.ClearQuery()

	snap := waitStatus(t, c, Loaded)
	c.Wait()
	assert.Equal(t, "", snap.Params.Query)
	assert.Equal(t, "", snap.QueryInput)
	require.Len(t, src.queries(), 1)
	assert.Equal(t, "", src.queries()[0].Q)
}

func TestController_FreshCacheHitSkipsNetwork(t *testing.T) {
	rc := cache.New()
	rc.Set(cache.ProductListKey("", 0, 12), client.ProductPage{
		Content: []client.ProductCard{{Slug: "sunset"}},
	})
	src := newFakeSource()
	pf := &fakePrefetcher{}
	c := NewController(rc, src, Params{}, Config{Prefetcher: pf})
	defer c.Close()

	c.Start()
	snap := c.Snapshot()
	assert.Equal(t, Loaded, snap.Status)
	assert.True(t, snap.HasData)

	c.Wait()
	assert.Empty(t, src.queries())
	assert.Equal(t, []string{"sunset"}, pf.seen())
}

// TestController_StaleWhileRevalidate shows a 7 minute old page at once and
// swaps in the fetched page without passing through Loading.
func TestController_StaleWhileRevalidate(t *testing.T) {
	now := time.Now()
	var clockMu sync.Mutex
	clock := func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		return now
	}
	rc := cache.New(cache.WithClock(clock))
	rc.Set(cache.ProductListKey("", 0, 12), client.ProductPage{
		Content: []client.ProductCard{{Slug: "old"}},
	})
	clockMu.Lock()
	now = now.Add(7 * time.Minute)
	clockMu.Unlock()

	src := newFakeSource()
	gate := make(chan struct{})
	src.gates[0] = gate

	var mu sync.Mutex
	var statuses []Status
	c := NewController(rc, src, Params{}, Config{})
	defer c.Close()
	c.Subscribe(func(s Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		statuses = append(statuses, s.Status)
	})

	c.Start()
	snap := c.Snapshot()
	assert.Equal(t, Revalidating, snap.Status)
	assert.Equal(t, "old", snap.Page.Content[0].Slug)

	close(gate)
	snap = waitStatus(t, c, Loaded)
	c.Wait()
	assert.Equal(t, "-p0", snap.Page.Content[0].Slug)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Status{Revalidating, Loaded}, statuses)
}

func TestController_SupersededResultDropped(t *testing.T) {
	src := newFakeSource()
	gate := make(chan struct{})
	src.gates[0] = gate

	c := NewController(cache.New(), src, Params{}, Config{})
	defer c.Close()

	c.Start()
	c.SetPage(1)
	waitStatus(t, c, Loaded)

	close(gate)
	c.Wait()

	snap := c.Snapshot()
	assert.Equal(t, 1, snap.Page.Number)
	assert.Equal(t, 1, snap.Params.Page)
}

func TestController_ErrorAndRetry(t *testing.T) {
	src := newFakeSource()
	src.setErr(errors.New("backend down"))

	c := NewController(cache.New(), src, Params{}, Config{})
	defer c.Close()

	c.Start()
	snap := waitStatus(t, c, Error)
	c.Wait()
	require.Error(t, snap.Err)
	assert.False(t, snap.HasData, "no stale or mock data on a miss")

	src.setErr(nil)
	c.Retry()
	snap = waitStatus(t, c, Loaded)
	c.Wait()
	assert.NoError(t, snap.Err)
	assert.True(t, snap.HasData)
}

func TestController_RevalidationFailureKeepsData(t *testing.T) {
	now := time.Now()
	var clockMu sync.Mutex
	clock := func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		return now
	}
	rc := cache.New(cache.WithClock(clock))
	rc.Set(cache.ProductListKey("", 0, 12), client.ProductPage{Content: []client.ProductCard{{Slug: "kept"}}})
	clockMu.Lock()
	now = now.Add(6 * time.Minute)
	clockMu.Unlock()

	src := newFakeSource()
	src.setErr(errors.New("backend down"))
	c := NewController(rc, src, Params{}, Config{})
	defer c.Close()

	c.Start()
	require.Equal(t, Revalidating, c.Snapshot().Status)
	require.Eventually(t, func() bool { return len(src.queries()) == 1 }, 2*time.Second, 5*time.Millisecond)
	snap := waitStatus(t, c, Loaded)
	c.Wait()
	assert.True(t, snap.HasData)
	assert.Equal(t, "kept", snap.Page.Content[0].Slug)
	assert.NoError(t, snap.Err)
}

func TestController_EmptyResult(t *testing.T) {
	src := newFakeSource()
	src.empty = true
	c := NewController(cache.New(), src, Params{Query: "nothing"}, Config{})
	defer c.Close()

	c.Start()
	snap := waitStatus(t, c, Loaded)
	c.Wait()
	assert.True(t, snap.Empty())
	assert.NoError(t, snap.Err)
}

func TestController_SetSizeResetsPage(t *testing.T) {
	src := newFakeSource()
	c := NewController(cache.New(), src, Params{Query: "sunset", Page: 2, Size: 12}, Config{})
	defer c.Close()

	c.SetSize(24)
	snap := waitStatus(t, c, Loaded)
	c.Wait()
	assert.Equal(t, Params{Query: "sunset", Page: 0, Size: 24}, snap.Params)

	c.SetPage(1)
	snap = waitStatus(t, c, Loaded)
	c.Wait()
	assert.Equal(t, Params{Query: "sunset", Page: 1, Size: 24}, snap.Params)
}

func TestController_CloseDropsInFlightResult(t *testing.T) {
	src := newFakeSource()
	gate := make(chan struct{})
	src.gates[0] = gate

	c := NewController(cache.New(), src, Params{}, Config{})
	c.Start()
	require.Equal(t, Loading, c.Snapshot().Status)

	c.Close()
	close(gate)
	c.Wait()

	assert.Equal(t, Loading, c.Snapshot().Status)

	c.SetPage(4)
	assert.Equal(t, 0, c.Snapshot().Params.Page, "closed controller ignores changes")
}

func TestController_UnchangedParamsDoNotReload(t *testing.T) {
	src := newFakeSource()
	c := NewController(cache.New(), src, Params{}, Config{})
	defer c.Close()

	c.Start()
	waitStatus(t, c, Loaded)
	c.Wait()

	c.SetPage(0)
	c.SetSize(12)
	c.Wait()
	assert.Len(t, src.queries(), 1)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "revalidating", Revalidating.String())
	assert.Equal(t, "unknown", Status(42).String())
}

func TestController_SettledTextDroppedAfterClear(t *testing.T) {
	src := newFakeSource()
	c := NewController(cache.New(), src, Params{}, Config{Debounce: time.Hour})
	defer c.Close()

	c.Start()
	waitStatus(t, c, Loaded)
	c.Wait()

	c.SetQueryInput("sunset")
	c.mu.Lock()
	typed := c.debounceSeq
	c.mu.Unlock()

	c.ClearQuery()
	c.settleQuery(typed, "sunset")
	c.Wait()

	snap := c.Snapshot()
	assert.Empty(t, snap.Params.Query, "stale debounced text must not override a clear")
	assert.Empty(t, snap.QueryInput)
	assert.Len(t, src.queries(), 1)

	c.SetQueryInput("moon")
	c.mu.Lock()
	current := c.debounceSeq
	c.mu.Unlock()
	c.settleQuery(current, "moon")
	assert.Equal(t, "moon", c.Snapshot().Params.Query)
}
