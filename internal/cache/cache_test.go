package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"solana-rugscan/internal/domain"
)

// fakeClock is an advanceable clock for TTL tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func sampleScan(address string) *domain.DeployerScan {
	return &domain.DeployerScan{Token: address, Verdict: domain.VerdictClean, Score: 80}
}

func TestCache_TTLExpiry(t *testing.T) {
	clock := newFakeClock()
	c := New(Options{TTL: 30 * time.Minute, Clock: clock.Now})

	c.Put("addr", sampleScan("addr"))

	if _, ok := c.Get("addr"); !ok {
		t.Fatal("expected fresh entry to hit")
	}

	clock.Advance(29 * time.Minute)
	if _, ok := c.Get("addr"); !ok {
		t.Fatal("entry should survive just under the TTL")
	}

	clock.Advance(time.Minute)
	if _, ok := c.Get("addr"); ok {
		t.Fatal("entry should expire at the TTL")
	}
}

func TestCache_GetOrComputeCoalesces(t *testing.T) {
	c := New(Options{})

	var computations atomic.Int32
	release := make(chan struct{})

	compute := func() (*domain.DeployerScan, error) {
		computations.Add(1)
		<-release
		return sampleScan("addr"), nil
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*domain.DeployerScan, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			scan, _, err := c.GetOrCompute(context.Background(), "addr", compute)
			if err != nil {
				t.Errorf("caller %d: %v", i, err)
			}
			results[i] = scan
		}(i)
	}

	// Let the goroutines pile onto the in-flight call before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := computations.Load(); got != 1 {
		t.Errorf("expected a single computation, got %d", got)
	}
	for i, scan := range results {
		if scan != results[0] {
			t.Errorf("caller %d got a different result", i)
		}
	}
}

func TestCache_FailedComputationNotCached(t *testing.T) {
	c := New(Options{})

	wantErr := errors.New("upstream down")
	_, _, err := c.GetOrCompute(context.Background(), "addr", func() (*domain.DeployerScan, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected upstream error, got %v", err)
	}

	scan, _, err := c.GetOrCompute(context.Background(), "addr", func() (*domain.DeployerScan, error) {
		return sampleScan("addr"), nil
	})
	if err != nil || scan == nil {
		t.Fatalf("retry after failure should recompute, got scan=%v err=%v", scan, err)
	}
}

func TestCache_HitReporting(t *testing.T) {
	c := New(Options{})

	_, hit, err := c.GetOrCompute(context.Background(), "addr", func() (*domain.DeployerScan, error) {
		return sampleScan("addr"), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("first computation must report a miss")
	}

	_, hit, err = c.GetOrCompute(context.Background(), "addr", func() (*domain.DeployerScan, error) {
		t.Error("fresh entry must not recompute")
		return nil, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Error("second lookup must report a hit")
	}
}

func TestCache_WaiterHonorsContext(t *testing.T) {
	c := New(Options{})

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		c.GetOrCompute(context.Background(), "addr", func() (*domain.DeployerScan, error) {
			close(started)
			<-release
			return sampleScan("addr"), nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := c.GetOrCompute(ctx, "addr", func() (*domain.DeployerScan, error) {
		return nil, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("waiter should observe cancellation, got %v", err)
	}
	close(release)
}

func TestCache_Invalidate(t *testing.T) {
	c := New(Options{})
	c.Put("addr", sampleScan("addr"))
	c.Invalidate("addr")
	if _, ok := c.Get("addr"); ok {
		t.Error("invalidated entry should miss")
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Len())
	}
}
