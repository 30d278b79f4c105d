// Package quota tracks per-caller scan usage and enforces rate limits: a
// sliding per-minute window counted in process, and an optional per-day
// limit backed by the durable scan log.
package quota

import (
	"context"
	"sync"
	"time"
)

// DefaultPerMinute is the per-caller scan rate limit.
const DefaultPerMinute = 30

// DefaultPerDay is the per-caller daily scan limit when a History backend
// is configured.
const DefaultPerDay = 1000

// History is the durable per-caller scan count source. The scan log store
// satisfies it.
type History interface {
	CountSince(ctx context.Context, caller string, since int64) (int, error)
}

// Usage summarizes one caller's scan activity.
type Usage struct {
	Caller     string `json:"caller"`
	Total      int    `json:"total"`
	LastMinute int    `json:"last_minute"`
	LastDay    int    `json:"last_day"`
}

// Tracker counts scans per caller over sliding windows.
type Tracker struct {
	perMinute int
	perDay    int
	history   History
	clock     func() time.Time

	mu     sync.Mutex
	events map[string][]time.Time
	totals map[string]int
}

// Options configure a Tracker. History enables the per-day limit; without
// it only the in-process per-minute window is enforced.
type Options struct {
	PerMinute int
	PerDay    int
	History   History
	Clock     func() time.Time
}

// NewTracker creates a Tracker. Zero options use DefaultPerMinute,
// DefaultPerDay and the wall clock.
func NewTracker(opts Options) *Tracker {
	if opts.PerMinute <= 0 {
		opts.PerMinute = DefaultPerMinute
	}
	if opts.PerDay <= 0 {
		opts.PerDay = DefaultPerDay
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Tracker{
		perMinute: opts.PerMinute,
		perDay:    opts.PerDay,
		history:   opts.History,
		clock:     opts.Clock,
		events:    make(map[string][]time.Time),
		totals:    make(map[string]int),
	}
}

// Allow reports whether the caller is within the per-minute and per-day
// limits and, if so, records the scan. A failing history backend fails
// open: the advisory daily limit is not worth refusing scans over.
func (t *Tracker) Allow(ctx context.Context, caller string) bool {
	now := t.clock()

	if t.history != nil {
		since := now.Add(-24 * time.Hour).Unix()
		if count, err := t.history.CountSince(ctx, caller, since); err == nil && count >= t.perDay {
			return false
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	recent := t.pruneLocked(caller, now)
	inLastMinute := 0
	for _, ts := range recent {
		if now.Sub(ts) < time.Minute {
			inLastMinute++
		}
	}
	if inLastMinute >= t.perMinute {
		return false
	}

	t.events[caller] = append(recent, now)
	t.totals[caller]++
	return true
}

// UsageFor summarizes the caller's recorded activity. The daily count comes
// from the durable history when one is configured, so it survives restarts.
func (t *Tracker) UsageFor(ctx context.Context, caller string) Usage {
	now := t.clock()

	t.mu.Lock()
	usage := Usage{Caller: caller, Total: t.totals[caller]}
	for _, ts := range t.pruneLocked(caller, now) {
		if now.Sub(ts) < time.Minute {
			usage.LastMinute++
		}
		usage.LastDay++
	}
	t.mu.Unlock()

	if t.history != nil {
		if count, err := t.history.CountSince(ctx, caller, now.Add(-24*time.Hour).Unix()); err == nil {
			usage.LastDay = count
		}
	}
	return usage
}

// pruneLocked drops events older than a day; they no longer feed any window.
func (t *Tracker) pruneLocked(caller string, now time.Time) []time.Time {
	events := t.events[caller]
	cut := 0
	for cut < len(events) && now.Sub(events[cut]) >= 24*time.Hour {
		cut++
	}
	if cut > 0 {
		events = append([]time.Time(nil), events[cut:]...)
		t.events[caller] = events
	}
	return events
}
