package storage

import (
	"context"

	"solana-rugscan/internal/domain"
)

// DeployerTokenStore is the persistent discovery cache: every token the
// scanner has ever attributed to a deployer, with its last verified status.
// Rows are upserted, not appended; re-verification refreshes them in place.
type DeployerTokenStore interface {
	// Upsert inserts or refreshes one deployer-token row.
	Upsert(ctx context.Context, r *domain.DeployerTokenRecord) error

	// UpsertBulk inserts or refreshes a batch of rows.
	UpsertBulk(ctx context.Context, records []*domain.DeployerTokenRecord) error

	// GetByDeployer retrieves all known tokens for a deployer, newest
	// creation first.
	GetByDeployer(ctx context.Context, deployer string) ([]*domain.DeployerTokenRecord, error)

	// GetStale retrieves the deployer's tokens last checked before the
	// cutoff (unix seconds). Used to re-verify aging statuses.
	GetStale(ctx context.Context, deployer string, checkedBefore int64) ([]*domain.DeployerTokenRecord, error)

	// DeployerCounts reports the token and dead-token totals for a wallet.
	// A wallet the store has never seen returns (0, 0, nil).
	DeployerCounts(ctx context.Context, deployer string) (tokens int, deaths int, err error)
}

// ScanLogStore records completed scans. Append-only.
type ScanLogStore interface {
	// Append records one completed scan.
	Append(ctx context.Context, e *domain.ScanLogEntry) error

	// RecentByDeployer retrieves the latest entries for a deployer,
	// newest first.
	RecentByDeployer(ctx context.Context, deployer string, limit int) ([]*domain.ScanLogEntry, error)

	// CountSince counts a caller's scans at or after the cutoff
	// (unix seconds).
	CountSince(ctx context.Context, caller string, since int64) (int, error)
}
