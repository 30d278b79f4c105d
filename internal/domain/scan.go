// Package domain defines the shared data model for deployer reputation scans.
package domain

// Verdict is the three-way reputation classification of a deployer.
type Verdict string

const (
	VerdictClean        Verdict = "CLEAN"
	VerdictSuspicious   Verdict = "SUSPICIOUS"
	VerdictSerialRugger Verdict = "SERIAL_RUGGER"
)

// SubjectKind tags how a scanned address should be interpreted.
type SubjectKind string

const (
	// SubjectToken means the address is a token mint; the deployer is
	// resolved before scanning.
	SubjectToken SubjectKind = "token"
	// SubjectWallet means the address is scanned directly as a deployer.
	SubjectWallet SubjectKind = "wallet"
)

// ScanSubject is the immutable input to a scan.
type ScanSubject struct {
	Address string
	Kind    SubjectKind
}

// DeployerMethod records which discovery path resolved the deployer.
// MethodCache marks wallet scans served from a fresh persistent cache
// without re-running discovery.
const (
	MethodEnhancedAPI = "enhanced_api"
	MethodRPCFallback = "rpc_fallback"
	MethodCache       = "cache"
)

// DeployerStats aggregates token outcomes across a deployer's history.
type DeployerStats struct {
	TokenCount      int      `json:"token_count"`
	VerifiedCount   int      `json:"verified_count"`
	UnverifiedCount int      `json:"unverified_count"`
	DeadCount       int      `json:"dead_count"`
	AliveCount      int      `json:"alive_count"`
	DeathRate       float64  `json:"death_rate"` // dead / verified
	RugRate         float64  `json:"rug_rate"`   // legacy: (dead + unverified) / total
	AvgLifespanDays float64  `json:"avg_lifespan_days"`
	FirstDeployAt   *int64   `json:"first_deploy_at,omitempty"` // unix seconds
	NativeBalance   *float64 `json:"native_balance_sol,omitempty"`
}

// Confidence reports how much of the scan is verified vs assumed.
// Field names are part of the external contract.
type Confidence struct {
	TokensVerified        int    `json:"tokens_verified"`
	TokensUnverified      int    `json:"tokens_unverified"`
	DeployerMethod        string `json:"deployer_method"`
	ClusterChecked        bool   `json:"cluster_checked"`
	TokenRisksChecked     bool   `json:"token_risks_checked"`
	TokensMayBeIncomplete bool   `json:"tokens_may_be_incomplete"`
}

// MarketData is the live market snapshot for the scanned token.
// All fields are best-effort and may be absent.
type MarketData struct {
	PriceUSD      *float64 `json:"price_usd,omitempty"`
	LiquidityUSD  *float64 `json:"liquidity_usd,omitempty"`
	Volume24hUSD  *float64 `json:"volume_24h_usd,omitempty"`
	FDVUSD        *float64 `json:"fdv_usd,omitempty"`
	PairCreatedAt *int64   `json:"pair_created_at,omitempty"` // unix seconds
}

// ScoreBreakdown explains how the reputation score was computed.
// Invariant: round(sum of components - deductions), clamped to [0,100],
// equals Score.
type ScoreBreakdown struct {
	DeathRateComponent  float64  `json:"death_rate_component"`
	TokenCountComponent float64  `json:"token_count_component"`
	LifespanComponent   float64  `json:"lifespan_component"`
	ClusterComponent    float64  `json:"cluster_component"`
	RiskDeductions      float64  `json:"risk_deductions"`
	Score               int      `json:"score"`
	Notes               []string `json:"notes"`
}

// DeployerScan is the full output of one scan cycle. It is write-once:
// assembled by the orchestrator, then read-shared via the result cache.
type DeployerScan struct {
	Token          string          `json:"token,omitempty"` // empty for direct wallet scans
	Deployer       string          `json:"deployer"`
	Stats          DeployerStats   `json:"stats"`
	Tokens         []DeployerToken `json:"tokens"`
	Funding        *FundingInfo    `json:"funding"`
	TokenRisks     *RiskSignals    `json:"token_risks"`
	MarketData     *MarketData     `json:"market_data"`
	Score          int             `json:"score"`
	Verdict        Verdict         `json:"verdict"`
	ScoreBreakdown ScoreBreakdown  `json:"score_breakdown"`
	Evidence       []string        `json:"evidence"`
	Confidence     Confidence      `json:"confidence"`
	ScannedAt      int64           `json:"scanned_at"` // unix seconds
}
