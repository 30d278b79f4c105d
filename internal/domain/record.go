package domain

// DeployerTokenRecord is one row of the persistent per-deployer token cache.
// Rows are upserted, never deleted; staleness is tracked per row.
// Corresponds to deployer_tokens table in PostgreSQL.
type DeployerTokenRecord struct {
	Deployer      string // deployer wallet address
	Token         string // token mint address
	Name          string
	Symbol        string
	Status        TokenStatus // alive | dead | unknown
	LiquidityUSD  float64
	CreatedAt     *int64 // unix seconds, nullable
	LastCheckedAt int64  // unix seconds
}

// ScanLogEntry is one row of the append-only scan log.
// Corresponds to scan_log table in ClickHouse.
type ScanLogEntry struct {
	Address   string
	Deployer  string
	Verdict   Verdict
	Score     int
	Source    string // channel the scan came from: api, cli, watch
	Caller    string // caller identity, empty for anonymous
	ScannedAt int64  // unix seconds
}
