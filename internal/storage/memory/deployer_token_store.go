package memory

import (
	"context"
	"sort"
	"sync"

	"solana-rugscan/internal/domain"
	"solana-rugscan/internal/storage"
)

// DeployerTokenStore is an in-memory implementation of
// storage.DeployerTokenStore. Used in tests and single-process deployments
// without Postgres.
type DeployerTokenStore struct {
	mu   sync.RWMutex
	data map[string]map[string]*domain.DeployerTokenRecord // deployer -> token -> record
}

// NewDeployerTokenStore creates a new in-memory deployer token store.
func NewDeployerTokenStore() *DeployerTokenStore {
	return &DeployerTokenStore{
		data: make(map[string]map[string]*domain.DeployerTokenRecord),
	}
}

// Verify interface compliance at compile time.
var _ storage.DeployerTokenStore = (*DeployerTokenStore)(nil)

// Upsert inserts or refreshes one deployer-token row.
func (s *DeployerTokenStore) Upsert(_ context.Context, r *domain.DeployerTokenRecord) error {
	if r == nil || r.Deployer == "" || r.Token == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(r)
	return nil
}

// UpsertBulk inserts or refreshes a batch of rows.
func (s *DeployerTokenStore) UpsertBulk(_ context.Context, records []*domain.DeployerTokenRecord) error {
	for _, r := range records {
		if r == nil || r.Deployer == "" || r.Token == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.upsertLocked(r)
	}
	return nil
}

func (s *DeployerTokenStore) upsertLocked(r *domain.DeployerTokenRecord) {
	tokens, ok := s.data[r.Deployer]
	if !ok {
		tokens = make(map[string]*domain.DeployerTokenRecord)
		s.data[r.Deployer] = tokens
	}

	// Store a copy to prevent external mutation
	recordCopy := *r
	if recordCopy.CreatedAt == nil {
		if existing, ok := tokens[r.Token]; ok {
			recordCopy.CreatedAt = existing.CreatedAt
		}
	}
	tokens[r.Token] = &recordCopy
}

// GetByDeployer retrieves all known tokens for a deployer, newest creation
// first. Rows with unknown creation time sort last.
func (s *DeployerTokenStore) GetByDeployer(_ context.Context, deployer string) ([]*domain.DeployerTokenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DeployerTokenRecord
	for _, r := range s.data[deployer] {
		recordCopy := *r
		result = append(result, &recordCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		switch {
		case a.CreatedAt == nil && b.CreatedAt == nil:
			return a.Token < b.Token
		case a.CreatedAt == nil:
			return false
		case b.CreatedAt == nil:
			return true
		case *a.CreatedAt != *b.CreatedAt:
			return *a.CreatedAt > *b.CreatedAt
		default:
			return a.Token < b.Token
		}
	})

	return result, nil
}

// GetStale retrieves the deployer's tokens last checked before the cutoff.
func (s *DeployerTokenStore) GetStale(_ context.Context, deployer string, checkedBefore int64) ([]*domain.DeployerTokenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DeployerTokenRecord
	for _, r := range s.data[deployer] {
		if r.LastCheckedAt < checkedBefore {
			recordCopy := *r
			result = append(result, &recordCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].LastCheckedAt != result[j].LastCheckedAt {
			return result[i].LastCheckedAt < result[j].LastCheckedAt
		}
		return result[i].Token < result[j].Token
	})

	return result, nil
}

// DeployerCounts reports the token and dead-token totals for a wallet.
func (s *DeployerTokenStore) DeployerCounts(_ context.Context, deployer string) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tokens := s.data[deployer]
	deaths := 0
	for _, r := range tokens {
		if r.Status == domain.StatusDead {
			deaths++
		}
	}
	return len(tokens), deaths, nil
}
