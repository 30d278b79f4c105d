package domain

// TokenStatus is the liveness tri-state of a discovered token.
type TokenStatus string

const (
	StatusAlive   TokenStatus = "alive"
	StatusDead    TokenStatus = "dead"
	StatusUnknown TokenStatus = "unknown"
)

// DeathType categorizes why a dead token died.
type DeathType string

const (
	// DeathNatural means liquidity decayed with no anomalous transfers.
	DeathNatural DeathType = "natural"
	// DeathLikelyRug means the initial large transfer routed to a single
	// non-exchange wallet that subsequently drained liquidity.
	DeathLikelyRug DeathType = "likely_rug"
	// DeathDistributedRug means value fanned out across multiple wallets
	// before liquidity was drained.
	DeathDistributedRug DeathType = "distributed_rug"
)

// DeathInfo is advisory evidence attached to a dead token.
type DeathInfo struct {
	Type     DeathType `json:"type"`
	Evidence string    `json:"evidence,omitempty"`
}

// DeployerToken is one token created by the deployer. It is created during
// discovery, enriched during status/metadata/classification, and immutable
// thereafter within one scan.
type DeployerToken struct {
	Address      string      `json:"address"`
	Name         string      `json:"name,omitempty"`
	Symbol       string      `json:"symbol,omitempty"`
	Status       TokenStatus `json:"status"`
	LiquidityUSD float64     `json:"liquidity_usd"`
	PriceUSD     *float64    `json:"price_usd,omitempty"`
	Volume24hUSD *float64    `json:"volume_24h_usd,omitempty"`
	FDVUSD       *float64    `json:"fdv_usd,omitempty"`
	CreatedAt    *int64      `json:"created_at,omitempty"` // unix seconds, nullable
	Death        *DeathInfo  `json:"death,omitempty"`
	Link         string      `json:"link,omitempty"`
}

// DexScreenerURL builds the evidence link for a token mint.
func DexScreenerURL(mint string) string {
	return "https://dexscreener.com/solana/" + mint
}

// ExplorerURL builds the Solana Explorer link for an address.
func ExplorerURL(address string) string {
	return "https://explorer.solana.com/address/" + address
}
