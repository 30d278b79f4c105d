package domain

// NetworkRiskTier grades the deployer's wallet-network exposure.
type NetworkRiskTier string

const (
	TierLow    NetworkRiskTier = "low"
	TierMedium NetworkRiskTier = "medium"
	TierHigh   NetworkRiskTier = "high"
)

// FundingInfo describes where the deployer's first transaction was funded
// from and how many sibling deployers share that source.
type FundingInfo struct {
	// SourceWallet is nil when the funder could not be traced.
	SourceWallet *string `json:"source_wallet"`
	// FundedAt is the funding transaction time, unix seconds.
	FundedAt *int64 `json:"funded_at,omitempty"`
	// ClusterSize counts other deployers funded by the same source.
	ClusterSize int `json:"cluster_size"`
	// ClusterTokens and ClusterDeaths aggregate across the cluster.
	ClusterTokens int `json:"cluster_tokens"`
	ClusterDeaths int `json:"cluster_deaths"`
	// FromKnownExchange is true when the source is a known CEX hot wallet.
	FromKnownExchange bool            `json:"from_known_exchange"`
	ExchangeName      string          `json:"exchange_name,omitempty"`
	NetworkRiskTier   NetworkRiskTier `json:"network_risk_tier"`
}

// RiskSignals are discrete per-token and per-deployer risk flags.
// Nil pointers mean the signal could not be checked.
type RiskSignals struct {
	MintAuthorityActive   *bool    `json:"mint_authority_active"`
	FreezeAuthorityActive *bool    `json:"freeze_authority_active"`
	TopHolderPct          *float64 `json:"top_holder_pct"`
	BundledLaunch         *bool    `json:"bundled_launch"`
	DeployerHoldingsPct   *float64 `json:"deployer_holdings_pct"`
	DeployVelocityPerDay  *float64 `json:"deploy_velocity_per_day"`
	BurnerWallet          *bool    `json:"burner_wallet"`
}
