package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-rugscan/internal/domain"
	"solana-rugscan/internal/storage"
)

// DeployerTokenStore implements storage.DeployerTokenStore using PostgreSQL.
type DeployerTokenStore struct {
	pool *Pool
}

// NewDeployerTokenStore creates a new DeployerTokenStore.
func NewDeployerTokenStore(pool *Pool) *DeployerTokenStore {
	return &DeployerTokenStore{pool: pool}
}

// Compile-time interface check.
var _ storage.DeployerTokenStore = (*DeployerTokenStore)(nil)

const upsertDeployerTokenQuery = `
	INSERT INTO deployer_tokens (
		deployer, token, name, symbol, status, liquidity_usd, created_at, last_checked_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (deployer, token) DO UPDATE SET
		name = EXCLUDED.name,
		symbol = EXCLUDED.symbol,
		status = EXCLUDED.status,
		liquidity_usd = EXCLUDED.liquidity_usd,
		created_at = COALESCE(EXCLUDED.created_at, deployer_tokens.created_at),
		last_checked_at = EXCLUDED.last_checked_at
`

// Upsert inserts or refreshes one deployer-token row.
func (s *DeployerTokenStore) Upsert(ctx context.Context, r *domain.DeployerTokenRecord) error {
	if r == nil || r.Deployer == "" || r.Token == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, upsertDeployerTokenQuery,
		r.Deployer,
		r.Token,
		r.Name,
		r.Symbol,
		string(r.Status),
		r.LiquidityUSD,
		r.CreatedAt,
		r.LastCheckedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert deployer token: %w", err)
	}
	return nil
}

// UpsertBulk inserts or refreshes a batch of rows in one round trip.
func (s *DeployerTokenStore) UpsertBulk(ctx context.Context, records []*domain.DeployerTokenRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range records {
		if r == nil || r.Deployer == "" || r.Token == "" {
			return storage.ErrInvalidInput
		}
		batch.Queue(upsertDeployerTokenQuery,
			r.Deployer,
			r.Token,
			r.Name,
			r.Symbol,
			string(r.Status),
			r.LiquidityUSD,
			r.CreatedAt,
			r.LastCheckedAt,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range records {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert deployer token batch: %w", err)
		}
	}
	return nil
}

// GetByDeployer retrieves all known tokens for a deployer, newest creation
// first. Rows with unknown creation time sort last.
func (s *DeployerTokenStore) GetByDeployer(ctx context.Context, deployer string) ([]*domain.DeployerTokenRecord, error) {
	query := `
		SELECT deployer, token, name, symbol, status, liquidity_usd, created_at, last_checked_at
		FROM deployer_tokens
		WHERE deployer = $1
		ORDER BY created_at DESC NULLS LAST, token ASC
	`

	rows, err := s.pool.Query(ctx, query, deployer)
	if err != nil {
		return nil, fmt.Errorf("get tokens by deployer: %w", err)
	}
	defer rows.Close()

	return scanDeployerTokens(rows)
}

// GetStale retrieves the deployer's tokens last checked before the cutoff.
func (s *DeployerTokenStore) GetStale(ctx context.Context, deployer string, checkedBefore int64) ([]*domain.DeployerTokenRecord, error) {
	query := `
		SELECT deployer, token, name, symbol, status, liquidity_usd, created_at, last_checked_at
		FROM deployer_tokens
		WHERE deployer = $1 AND last_checked_at < $2
		ORDER BY last_checked_at ASC, token ASC
	`

	rows, err := s.pool.Query(ctx, query, deployer, checkedBefore)
	if err != nil {
		return nil, fmt.Errorf("get stale tokens: %w", err)
	}
	defer rows.Close()

	return scanDeployerTokens(rows)
}

// DeployerCounts reports the token and dead-token totals for a wallet.
func (s *DeployerTokenStore) DeployerCounts(ctx context.Context, deployer string) (int, int, error) {
	query := `
		SELECT count(*), count(*) FILTER (WHERE status = $2)
		FROM deployer_tokens
		WHERE deployer = $1
	`

	var tokens, deaths int
	err := s.pool.QueryRow(ctx, query, deployer, string(domain.StatusDead)).Scan(&tokens, &deaths)
	if err != nil {
		return 0, 0, fmt.Errorf("count deployer tokens: %w", err)
	}
	return tokens, deaths, nil
}

// scanDeployerTokens scans multiple rows into a slice.
func scanDeployerTokens(rows pgx.Rows) ([]*domain.DeployerTokenRecord, error) {
	var records []*domain.DeployerTokenRecord

	for rows.Next() {
		var r domain.DeployerTokenRecord
		var statusStr string

		err := rows.Scan(
			&r.Deployer,
			&r.Token,
			&r.Name,
			&r.Symbol,
			&statusStr,
			&r.LiquidityUSD,
			&r.CreatedAt,
			&r.LastCheckedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan deployer token row: %w", err)
		}

		r.Status = domain.TokenStatus(statusStr)
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deployer token rows: %w", err)
	}

	return records, nil
}
