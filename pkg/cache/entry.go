package cache

import (
	"time"
)

// Freshness classifies a cache lookup.
type Freshness int

const (
	// Miss means no usable entry exists for the key.
	Miss Freshness = iota

	// Fresh means the entry is younger than the fresh window.
	Fresh

	// Stale means the entry is past the fresh window but still usable.
	Stale
)

// String returns the metric label for f.
func (f Freshness) String() string {
	switch f {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	default:
		return "miss"
	}
}

// Entry is a cached response value.
// Entries are replaced wholesale on every store and never mutated in place.
type Entry struct {
	// Data is the decoded response value
	Data any

	// Timestamp is when the entry was stored, not when the data was produced
	Timestamp time.Time

	// ETag of the response the entry was built from, if any
	ETag string
}

// Age returns how long ago the entry was stored relative to now.
func (e Entry) Age(now time.Time) time.Duration {
	age := now.Sub(e.Timestamp)
	if age < 0 {
		return 0
	}
	return age
}

func (e Entry) freshness(now time.Time, freshFor, staleFor time.Duration) Freshness {
	age := e.Age(now)
	switch {
	case age < freshFor:
		return Fresh
	case age < staleFor:
		return Stale
	default:
		return Miss
	}
}
