// Package cache provides the in-process scan result cache: TTL expiry plus
// per-key request coalescing so concurrent scans of the same subject run the
// pipeline once.
package cache

import (
	"context"
	"sync"
	"time"

	"solana-rugscan/internal/domain"
)

// DefaultTTL is how long a completed scan stays servable from memory.
const DefaultTTL = 30 * time.Minute

// Clock abstracts time for tests.
type Clock func() time.Time

type entry struct {
	scan     *domain.DeployerScan
	storedAt time.Time
}

type inflight struct {
	done chan struct{}
	scan *domain.DeployerScan
	err  error
}

// ScanCache caches completed deployer scans by subject address.
type ScanCache struct {
	ttl   time.Duration
	clock Clock

	mu      sync.Mutex
	entries map[string]entry
	calls   map[string]*inflight
}

// Options configure a ScanCache.
type Options struct {
	TTL   time.Duration
	Clock Clock
}

// New creates a ScanCache. Zero options use DefaultTTL and the wall clock.
func New(opts Options) *ScanCache {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &ScanCache{
		ttl:     opts.TTL,
		clock:   opts.Clock,
		entries: make(map[string]entry),
		calls:   make(map[string]*inflight),
	}
}

// Get returns a cached scan if present and fresh.
func (c *ScanCache) Get(key string) (*domain.DeployerScan, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(key)
}

func (c *ScanCache) getLocked(key string) (*domain.DeployerScan, bool) {
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.clock().Sub(e.storedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.scan, true
}

// Put stores a completed scan.
func (c *ScanCache) Put(key string, scan *domain.DeployerScan) {
	c.mu.Lock()
	c.entries[key] = entry{scan: scan, storedAt: c.clock()}
	c.mu.Unlock()
}

// GetOrCompute returns a fresh cached scan, or runs compute exactly once per
// key across concurrent callers. Every waiter gets the leader's result.
// Failed computations are not cached.
//
// The hit return reports whether the value came from the cache (including
// joining another caller's in-flight computation).
func (c *ScanCache) GetOrCompute(ctx context.Context, key string, compute func() (*domain.DeployerScan, error)) (scan *domain.DeployerScan, hit bool, err error) {
	c.mu.Lock()
	if cached, ok := c.getLocked(key); ok {
		c.mu.Unlock()
		return cached, true, nil
	}
	if call, ok := c.calls[key]; ok {
		c.mu.Unlock()
		select {
		case <-call.done:
			return call.scan, true, call.err
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}

	call := &inflight{done: make(chan struct{})}
	c.calls[key] = call
	c.mu.Unlock()

	call.scan, call.err = compute()

	c.mu.Lock()
	delete(c.calls, key)
	if call.err == nil {
		c.entries[key] = entry{scan: call.scan, storedAt: c.clock()}
	}
	c.mu.Unlock()
	close(call.done)

	return call.scan, false, call.err
}

// Invalidate drops a key.
func (c *ScanCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len reports the number of stored entries, expired or not.
func (c *ScanCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
