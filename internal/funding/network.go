package funding

import (
	"sync"

	"solana-rugscan/internal/domain"
)

// Network-tier thresholds: number of distinct non-exchange wallets that
// received post-rug value from the deployer's tokens.
const (
	highTierWallets   = 4
	mediumTierWallets = 1
)

// NetworkAccumulator records, per deployer, the non-exchange wallets that
// received the first post-liquidity-removal transfer of a dead token.
// Repeated destinations across a deployer's tokens indicate an operated
// wallet network.
type NetworkAccumulator struct {
	mu      sync.RWMutex
	wallets map[string]map[string]bool // deployer -> recipient set
}

// NewNetworkAccumulator creates an empty accumulator.
func NewNetworkAccumulator() *NetworkAccumulator {
	return &NetworkAccumulator{wallets: make(map[string]map[string]bool)}
}

// Record attributes a post-rug recipient wallet to a deployer. Known
// exchange wallets are ignored.
func (a *NetworkAccumulator) Record(deployer, recipient string) {
	if recipient == "" || deployer == "" {
		return
	}
	if _, isCEX := KnownExchange(recipient); isCEX {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	set, ok := a.wallets[deployer]
	if !ok {
		set = make(map[string]bool)
		a.wallets[deployer] = set
	}
	set[recipient] = true
}

// Count returns the number of distinct network wallets for a deployer.
func (a *NetworkAccumulator) Count(deployer string) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.wallets[deployer])
}

// Tier derives the network risk tier for a deployer.
func (a *NetworkAccumulator) Tier(deployer string) domain.NetworkRiskTier {
	n := a.Count(deployer)
	switch {
	case n >= highTierWallets:
		return domain.TierHigh
	case n >= mediumTierWallets:
		return domain.TierMedium
	default:
		return domain.TierLow
	}
}
