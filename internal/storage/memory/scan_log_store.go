package memory

import (
	"context"
	"sync"

	"solana-rugscan/internal/domain"
	"solana-rugscan/internal/storage"
)

// ScanLogStore is an in-memory implementation of storage.ScanLogStore.
type ScanLogStore struct {
	mu      sync.RWMutex
	entries []*domain.ScanLogEntry
}

// NewScanLogStore creates a new in-memory scan log store.
func NewScanLogStore() *ScanLogStore {
	return &ScanLogStore{}
}

// Verify interface compliance at compile time.
var _ storage.ScanLogStore = (*ScanLogStore)(nil)

// Append records one completed scan.
func (s *ScanLogStore) Append(_ context.Context, e *domain.ScanLogEntry) error {
	if e == nil || e.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entryCopy := *e
	s.entries = append(s.entries, &entryCopy)
	return nil
}

// RecentByDeployer retrieves the latest entries for a deployer, newest first.
func (s *ScanLogStore) RecentByDeployer(_ context.Context, deployer string, limit int) ([]*domain.ScanLogEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ScanLogEntry
	for i := len(s.entries) - 1; i >= 0 && len(result) < limit; i-- {
		if s.entries[i].Deployer == deployer {
			entryCopy := *s.entries[i]
			result = append(result, &entryCopy)
		}
	}
	return result, nil
}

// CountSince counts a caller's scans at or after the cutoff.
func (s *ScanLogStore) CountSince(_ context.Context, caller string, since int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, e := range s.entries {
		if e.Caller == caller && e.ScannedAt >= since {
			count++
		}
	}
	return count, nil
}
