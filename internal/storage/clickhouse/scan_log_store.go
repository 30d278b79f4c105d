package clickhouse

import (
	"context"
	"fmt"

	"solana-rugscan/internal/domain"
	"solana-rugscan/internal/storage"
)

// ScanLogStore implements storage.ScanLogStore using ClickHouse. The scan
// log is append-only history; MergeTree fits it exactly.
type ScanLogStore struct {
	conn *Conn
}

// NewScanLogStore creates a new ScanLogStore.
func NewScanLogStore(conn *Conn) *ScanLogStore {
	return &ScanLogStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ScanLogStore = (*ScanLogStore)(nil)

// Append records one completed scan.
func (s *ScanLogStore) Append(ctx context.Context, e *domain.ScanLogEntry) error {
	if e == nil || e.Address == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO scan_log (
			address, deployer, verdict, score, source, caller, scanned_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	err := s.conn.Exec(ctx, query,
		e.Address,
		e.Deployer,
		string(e.Verdict),
		int32(e.Score),
		e.Source,
		e.Caller,
		e.ScannedAt,
	)
	if err != nil {
		return fmt.Errorf("append scan log entry: %w", err)
	}
	return nil
}

// RecentByDeployer retrieves the latest entries for a deployer, newest first.
func (s *ScanLogStore) RecentByDeployer(ctx context.Context, deployer string, limit int) ([]*domain.ScanLogEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT address, deployer, verdict, score, source, caller, scanned_at
		FROM scan_log
		WHERE deployer = ?
		ORDER BY scanned_at DESC
		LIMIT ?
	`

	rows, err := s.conn.Query(ctx, query, deployer, limit)
	if err != nil {
		return nil, fmt.Errorf("query scan log by deployer: %w", err)
	}
	defer rows.Close()

	var entries []*domain.ScanLogEntry
	for rows.Next() {
		var e domain.ScanLogEntry
		var verdictStr string
		var score int32

		err := rows.Scan(
			&e.Address,
			&e.Deployer,
			&verdictStr,
			&score,
			&e.Source,
			&e.Caller,
			&e.ScannedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan log row: %w", err)
		}

		e.Verdict = domain.Verdict(verdictStr)
		e.Score = int(score)
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scan log rows: %w", err)
	}

	return entries, nil
}

// CountSince counts a caller's scans at or after the cutoff.
func (s *ScanLogStore) CountSince(ctx context.Context, caller string, since int64) (int, error) {
	query := `
		SELECT count(*) FROM scan_log
		WHERE caller = ? AND scanned_at >= ?
	`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, caller, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count scan log entries: %w", err)
	}
	return int(count), nil
}
