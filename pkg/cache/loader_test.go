package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetAs(t *testing.T) {
	c := New()
	c.Set("k", "value")

	if v, ok := GetAs[string](c, "k"); !ok || v != "value" {
		t.Errorf("GetAs[string]() = %q, %v", v, ok)
	}
	if _, ok := GetAs[int](c, "k"); ok {
		t.Error("GetAs with wrong type should report false")
	}
	if _, ok := GetAs[string](c, "missing"); ok {
		t.Error("GetAs on missing key should report false")
	}
}

func TestGetOrFetch(t *testing.T) {
	c := New()
	ctx := context.Background()
	var calls atomic.Int32

	fetch := func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "fetched", nil
	}

	v, hit, err := GetOrFetch(ctx, c, "k", fetch)
	if err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}
	if hit || v != "fetched" {
		t.Errorf("first GetOrFetch = %q, hit=%v; want fetched, miss", v, hit)
	}

	v, hit, err = GetOrFetch(ctx, c, "k", fetch)
	if err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}
	if !hit || v != "fetched" {
		t.Errorf("second GetOrFetch = %q, hit=%v; want fetched, hit", v, hit)
	}

	if calls.Load() != 1 {
		t.Errorf("fetch called %d times, want 1", calls.Load())
	}
}

func TestGetOrFetch_Error(t *testing.T) {
	c := New()
	wantErr := errors.New("backend down")

	_, _, err := GetOrFetch(context.Background(), c, "k", func(ctx context.Context) (int, error) {
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("GetOrFetch() error = %v, want %v", err, wantErr)
	}
	if c.Len() != 0 {
		t.Error("failed fetch must not store anything")
	}
}

// TestGetOrFetch_ConcurrentMisses ensures concurrent misses share one fetch.
func TestGetOrFetch_ConcurrentMisses(t *testing.T) {
	c := New()
	var calls atomic.Int32
	release := make(chan struct{})

	fetch := func(ctx context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 7, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _, err := GetOrFetch(context.Background(), c, "k", fetch)
			if err != nil || v != 7 {
				t.Errorf("GetOrFetch() = %d, %v", v, err)
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("fetch called %d times, want 1", calls.Load())
	}
}

func TestRevalidate_NotModified(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock.Now))
	c.SetWithETag("k", "cached", `"v1"`)
	clock.Advance(7 * time.Minute)

	var sentETag string
	v, err := Revalidate(context.Background(), c, "k", func(ctx context.Context, etag string) (Result[string], error) {
		sentETag = etag
		return Result[string]{NotModified: true}, nil
	})
	if err != nil {
		t.Fatalf("Revalidate failed: %v", err)
	}
	if sentETag != `"v1"` {
		t.Errorf("fetcher got etag %q, want %q", sentETag, `"v1"`)
	}
	if v != "cached" {
		t.Errorf("Revalidate() = %q, want cached", v)
	}
	if _, freshness := c.Lookup("k"); freshness != Fresh {
		t.Errorf("freshness after not-modified = %v, want fresh", freshness)
	}
}

func TestRevalidate_Updated(t *testing.T) {
	c := New()
	c.SetWithETag("k", "old", `"v1"`)

	v, err := Revalidate(context.Background(), c, "k", func(ctx context.Context, etag string) (Result[string], error) {
		return Result[string]{Data: "new", ETag: `"v2"`}, nil
	})
	if err != nil {
		t.Fatalf("Revalidate failed: %v", err)
	}
	if v != "new" {
		t.Errorf("Revalidate() = %q, want new", v)
	}
	entry, _ := c.Lookup("k")
	if entry.ETag != `"v2"` {
		t.Errorf("ETag = %q, want %q", entry.ETag, `"v2"`)
	}
}

func TestRevalidate_NotModifiedWithoutEntry(t *testing.T) {
	c := New()
	var calls int

	v, err := Revalidate(context.Background(), c, "k", func(ctx context.Context, etag string) (Result[string], error) {
		calls++
		if etag == "" && calls > 1 {
			return Result[string]{Data: "full"}, nil
		}
		return Result[string]{NotModified: true}, nil
	})
	if err != nil {
		t.Fatalf("Revalidate failed: %v", err)
	}
	if v != "full" || calls != 2 {
		t.Errorf("Revalidate() = %q after %d calls, want full after 2", v, calls)
	}
}

// TestLoad_StaleWhileRevalidate covers a 7 minute old entry: the stale value
// is returned at once and replaced once the background fetch completes.
func TestLoad_StaleWhileRevalidate(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock.Now))
	c.Set("products?page=0&size=12", "stale-page")
	clock.Advance(7 * time.Minute)

	release := make(chan struct{})
	done := make(chan struct{})
	fetch := func(ctx context.Context, etag string) (Result[string], error) {
		<-release
		defer close(done)
		return Result[string]{Data: "fresh-page"}, nil
	}

	v, freshness, err := Load(context.Background(), c, "products?page=0&size=12", fetch)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if v != "stale-page" || freshness != Stale {
		t.Errorf("Load() = %q (%v), want stale-page (stale)", v, freshness)
	}

	close(release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("background revalidation did not run")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if got, _ := GetAs[string](c, "products?page=0&size=12"); got == "fresh-page" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("revalidated value was never stored")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLoad_MissFetchesSynchronously(t *testing.T) {
	c := New()

	v, freshness, err := Load(context.Background(), c, "k", func(ctx context.Context, etag string) (Result[int], error) {
		return Result[int]{Data: 5, ETag: `"e"`}, nil
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if v != 5 || freshness != Miss {
		t.Errorf("Load() = %d (%v), want 5 (miss)", v, freshness)
	}

	v, freshness, _ = Load(context.Background(), c, "k", func(ctx context.Context, etag string) (Result[int], error) {
		t.Error("fresh hit must not fetch")
		return Result[int]{}, nil
	})
	if v != 5 || freshness != Fresh {
		t.Errorf("Load() = %d (%v), want 5 (fresh)", v, freshness)
	}
}

func TestGetOrFetch_CallerCancelDoesNotFailOthers(t *testing.T) {
	c := New()
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	var fetchErr atomic.Value

	fetch := func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		select {
		case <-release:
			return "shared", nil
		case <-ctx.Done():
			fetchErr.Store(ctx.Err())
			return "", ctx.Err()
		}
	}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, _, err := GetOrFetch(ctxA, c, "k", fetch)
		errA <- err
	}()
	<-started

	cancelA()
	select {
	case err := <-errA:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("cancelled caller err = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting on the shared fetch")
	}

	type result struct {
		v   string
		err error
	}
	resB := make(chan result, 1)
	go func() {
		v, _, err := GetOrFetch(context.Background(), c, "k", fetch)
		resB <- result{v, err}
	}()

	close(release)
	select {
	case r := <-resB:
		if r.err != nil || r.v != "shared" {
			t.Fatalf("live caller = %q, %v; want shared, nil", r.v, r.err)
		}
	case <-time.After(time.Second):
		t.Fatal("live caller did not return")
	}

	if n := calls.Load(); n != 1 {
		t.Errorf("fetch calls = %d, want 1", n)
	}
	if err := fetchErr.Load(); err != nil {
		t.Errorf("shared fetch saw %v from a caller's context", err)
	}
	if v, ok := GetAs[string](c, "k"); !ok || v != "shared" {
		t.Errorf("cached value = %q, %v", v, ok)
	}
}

func TestLoad_CallerCancelDoesNotFailOthers(t *testing.T) {
	c := New()
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	fetch := func(ctx context.Context, etag string) (Result[int], error) {
		once.Do(func() { close(started) })
		select {
		case <-release:
			return Result[int]{Data: 7}, nil
		case <-ctx.Done():
			return Result[int]{}, ctx.Err()
		}
	}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, _, err := Load(ctxA, c, "n", fetch)
		errA <- err
	}()
	<-started
	cancelA()

	if err := <-errA; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller err = %v, want context.Canceled", err)
	}

	done := make(chan error, 1)
	go func() {
		v, _, err := Load(context.Background(), c, "n", fetch)
		if err == nil && v != 7 {
			err = errors.New("unexpected value")
		}
		done <- err
	}()
	close(release)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("live caller err = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("live caller did not return")
	}
}
