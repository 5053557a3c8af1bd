package cache

import (
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock for window tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestCache_SetAndGet(t *testing.T) {
	c := New()

	c.Set("products?page=0", "page-zero")

	got, ok := c.Get("products?page=0")
	if !ok {
		t.Fatal("Get after Set should hit")
	}
	if got != "page-zero" {
		t.Errorf("Get() = %v, want %v", got, "page-zero")
	}
}

func TestCache_Get_Miss(t *testing.T) {
	c := New()

	if _, ok := c.Get("nonexistent"); ok {
		t.Error("Get on empty cache should miss")
	}
}

func TestCache_Lookup_Windows(t *testing.T) {
	tests := []struct {
		name    string
		age     time.Duration
		want    Freshness
		evicted bool
	}{
		{name: "just stored", age: 0, want: Fresh},
		{name: "inside fresh window", age: 4*time.Minute + 59*time.Second, want: Fresh},
		{name: "fresh window boundary is stale", age: 5 * time.Minute, want: Stale},
		{name: "seven minutes old", age: 7 * time.Minute, want: Stale},
		{name: "stale window boundary expires", age: 10 * time.Minute, want: Miss, evicted: true},
		{name: "long expired", age: time.Hour, want: Miss, evicted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			c := New(WithClock(clock.Now))

			c.SetWithETag("k", 42, `"e1"`)
			clock.Advance(tt.age)

			entry, freshness := c.Lookup("k")
			if freshness != tt.want {
				t.Errorf("Lookup() freshness = %v, want %v", freshness, tt.want)
			}
			if tt.want != Miss && entry.ETag != `"e1"` {
				t.Errorf("ETag = %q, want %q", entry.ETag, `"e1"`)
			}
			if got := c.Len() == 0; got != tt.evicted {
				t.Errorf("evicted = %v, want %v", got, tt.evicted)
			}
		})
	}
}

func TestCache_Set_ReplacesWholesale(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock.Now))

	c.SetWithETag("k", "old", `"v1"`)
	clock.Advance(8 * time.Minute)
	c.Set("k", "new")

	entry, freshness := c.Lookup("k")
	if freshness != Fresh {
		t.Errorf("freshness after overwrite = %v, want fresh", freshness)
	}
	if entry.Data != "new" {
		t.Errorf("Data = %v, want new", entry.Data)
	}
	if entry.ETag != "" {
		t.Errorf("ETag should be replaced, got %q", entry.ETag)
	}
	if !entry.Timestamp.Equal(clock.Now()) {
		t.Errorf("Timestamp = %v, want %v", entry.Timestamp, clock.Now())
	}
}

func TestCache_Touch(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock.Now))

	if _, ok := c.Touch("missing"); ok {
		t.Error("Touch on missing key should report false")
	}

	c.SetWithETag("k", "data", `"v1"`)
	clock.Advance(7 * time.Minute)

	entry, ok := c.Touch("k")
	if !ok {
		t.Fatal("Touch should succeed for existing key")
	}
	if entry.Data != "data" || entry.ETag != `"v1"` {
		t.Errorf("Touch changed entry content: %+v", entry)
	}
	if _, freshness := c.Lookup("k"); freshness != Fresh {
		t.Errorf("freshness after Touch = %v, want fresh", freshness)
	}
}

func TestCache_Invalidate(t *testing.T) {
	c := New()
	c.Set(ProductListKey("", 0, 12), 1)
	c.Set(ProductListKey("sunset", 0, 12), 2)
	c.Set(ProductKey("sunset"), 3)
	c.Set(TranslationsKey("en-US"), 4)

	removed := c.Invalidate("products")
	if removed != 2 {
		t.Errorf("Invalidate() removed %d, want 2", removed)
	}
	if _, ok := c.Get(ProductKey("sunset")); !ok {
		t.Error("product detail entry should survive products invalidation")
	}
	if _, ok := c.Get(TranslationsKey("en-US")); !ok {
		t.Error("translations entry should survive products invalidation")
	}
	if _, ok := c.Get(ProductListKey("sunset", 0, 12)); ok {
		t.Error("listing entry should be invalidated")
	}
}

func TestCache_Clear(t *testing.T) {
	c := New()
	c.Set("a", 1)
	c.Set("b", 2)

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("Get after Clear should miss")
	}

	c.Set("c", 3)
	c.Reset()
	if c.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", c.Len())
	}
}

func TestWithWindows(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock.Now), WithWindows(time.Minute, 30*time.Second))

	c.Set("k", 1)
	clock.Advance(59 * time.Second)
	if _, freshness := c.Lookup("k"); freshness != Fresh {
		t.Errorf("freshness = %v, want fresh", freshness)
	}
	// stale window is raised to the fresh window, so there is no stale phase
	clock.Advance(time.Second)
	if _, freshness := c.Lookup("k"); freshness != Miss {
		t.Errorf("freshness = %v, want miss", freshness)
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := ProductKey("p")
			c.Set(key, i)
			c.Get(key)
			c.Invalidate("zzz")
		}(i)
	}
	wg.Wait()

	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}
