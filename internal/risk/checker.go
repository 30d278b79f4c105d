// Package risk evaluates the discrete on-chain risk flags for a scanned
// token and its deployer. Every check is best effort: a failed lookup leaves
// the corresponding signal nil rather than failing the scan.
package risk

import (
	"context"
	"log"
	"time"

	"solana-rugscan/internal/domain"
	"solana-rugscan/internal/solana"
)

// bundledLaunchBuyers is the number of distinct non-deployer wallets that
// must acquire the token within the launch window for the launch to count
// as bundled.
const bundledLaunchBuyers = 3

// bundledLaunchSlots is the launch window, in slots after the creation slot.
const bundledLaunchSlots = 2

// launchScanTxBound caps how many of the token's earliest transactions are
// inspected for bundling.
const launchScanTxBound = 20

// BurnerWindow is the funding-to-first-deploy gap below which a wallet is
// flagged as a burner.
const BurnerWindow = 60 * time.Second

// ChainReader is the RPC subset the checker needs.
type ChainReader interface {
	GetAccountInfo(ctx context.Context, pubkey string) (*solana.AccountInfo, error)
	GetTokenLargestAccounts(ctx context.Context, mint string) ([]solana.TokenAccountBalance, error)
	GetTokenSupply(ctx context.Context, mint string) (float64, error)
	GetSignaturesForAddress(ctx context.Context, address string, opts *solana.SignaturesOpts) ([]solana.SignatureInfo, error)
	GetTransaction(ctx context.Context, signature string) (*solana.Transaction, error)
}

// Checker runs the per-token risk checks.
type Checker struct {
	rpc    ChainReader
	logger *log.Logger
}

// NewChecker creates a Checker. A nil logger disables check-failure logging.
func NewChecker(rpc ChainReader, logger *log.Logger) *Checker {
	return &Checker{rpc: rpc, logger: logger}
}

// Check evaluates the token-level signals for mint: authorities from the
// mint account, holder concentration from the largest accounts, and the
// bundled-launch pattern from the earliest transactions.
func (c *Checker) Check(ctx context.Context, mint, deployer string) domain.RiskSignals {
	signals := domain.RiskSignals{}

	c.checkAuthorities(ctx, mint, &signals)
	c.checkConcentration(ctx, mint, deployer, &signals)
	c.checkBundledLaunch(ctx, mint, deployer, &signals)

	return signals
}

func (c *Checker) checkAuthorities(ctx context.Context, mint string, signals *domain.RiskSignals) {
	account, err := c.rpc.GetAccountInfo(ctx, mint)
	if err != nil || account == nil {
		c.logf("risk: mint account lookup failed for %s: %v", mint, err)
		return
	}
	state, err := solana.ParseMint(account.Data)
	if err != nil {
		c.logf("risk: mint parse failed for %s: %v", mint, err)
		return
	}

	mintActive := state.MintAuthority != nil
	freezeActive := state.FreezeAuthority != nil
	signals.MintAuthorityActive = &mintActive
	signals.FreezeAuthorityActive = &freezeActive
}

func (c *Checker) checkConcentration(ctx context.Context, mint, deployer string, signals *domain.RiskSignals) {
	supply, err := c.rpc.GetTokenSupply(ctx, mint)
	if err != nil || supply <= 0 {
		c.logf("risk: token supply lookup failed for %s: %v", mint, err)
		return
	}
	holders, err := c.rpc.GetTokenLargestAccounts(ctx, mint)
	if err != nil || len(holders) == 0 {
		c.logf("risk: largest accounts lookup failed for %s: %v", mint, err)
		return
	}

	top := holders[0].Amount / supply * 100
	signals.TopHolderPct = &top

	// getTokenLargestAccounts returns token accounts, not owners; the
	// deployer's own holdings are approximated by accounts the deployer
	// address matches directly (ATA resolution needs another lookup per
	// account, which is not worth the quota here).
	deployerPct := 0.0
	for _, h := range holders {
		if h.Address == deployer {
			deployerPct += h.Amount / supply * 100
		}
	}
	if deployerPct > 0 {
		signals.DeployerHoldingsPct = &deployerPct
	}
}

// checkBundledLaunch looks for the sniper-bundle pattern: several distinct
// wallets acquiring the token within a couple of slots of its creation.
func (c *Checker) checkBundledLaunch(ctx context.Context, mint, deployer string, signals *domain.RiskSignals) {
	sigs, err := c.rpc.GetSignaturesForAddress(ctx, mint, &solana.SignaturesOpts{Limit: 1000})
	if err != nil || len(sigs) == 0 {
		c.logf("risk: launch history lookup failed for %s: %v", mint, err)
		return
	}

	// Newest first; the tail holds the launch.
	start := len(sigs) - launchScanTxBound
	if start < 0 {
		start = 0
	}
	earliest := sigs[start:]
	creationSlot := earliest[len(earliest)-1].Slot

	buyers := make(map[string]bool)
	for i := len(earliest) - 1; i >= 0; i-- {
		sig := earliest[i]
		if sig.Slot > creationSlot+bundledLaunchSlots {
			break
		}
		if sig.Err != nil {
			continue
		}
		tx, err := c.rpc.GetTransaction(ctx, sig.Signature)
		if err != nil || tx == nil || tx.Failed {
			continue
		}
		for _, b := range tx.PostTokenBalances {
			if b.Mint != mint || b.Owner == "" || b.Owner == deployer || b.Amount <= 0 {
				continue
			}
			buyers[b.Owner] = true
		}
	}

	bundled := len(buyers) >= bundledLaunchBuyers
	signals.BundledLaunch = &bundled
}

func (c *Checker) logf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}

// BurnerWallet flags wallets that deployed their first token within
// BurnerWindow of being funded. Either timestamp missing means unchecked.
func BurnerWallet(fundedAt, firstDeployAt *int64) *bool {
	if fundedAt == nil || firstDeployAt == nil {
		return nil
	}
	gap := *firstDeployAt - *fundedAt
	burner := gap >= 0 && gap < int64(BurnerWindow/time.Second)
	return &burner
}

// DeployVelocity is tokens deployed per day since the first deploy. Returns
// nil when the first deploy time is unknown.
func DeployVelocity(tokenCount int, firstDeployAt *int64, now int64) *float64 {
	if firstDeployAt == nil || tokenCount <= 0 {
		return nil
	}
	days := float64(now-*firstDeployAt) / 86400
	if days < 1 {
		days = 1
	}
	velocity := float64(tokenCount) / days
	return &velocity
}
