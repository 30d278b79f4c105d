// Package classifier assigns a death category to dead tokens based on the
// topology of their early post-mint transfers.
package classifier

import (
	"context"
	"fmt"

	"solana-rugscan/internal/discovery"
	"solana-rugscan/internal/domain"
	"solana-rugscan/internal/funding"
	"solana-rugscan/internal/solana"
)

// deathScanTxBound caps how many of the token's earliest transactions are
// inspected.
const deathScanTxBound = 25

// largeTransferShare is the supply fraction a single early recipient must
// gain for the transfer to count as anomalous.
const largeTransferShare = 0.20

// Result is the classification plus the wallet fed into the deployer's
// network accumulator (empty for natural deaths).
type Result struct {
	Death      domain.DeathInfo
	Recipients []string // non-exchange wallets that received large early transfers
}

// Classifier inspects early token transfers on the raw ledger.
type Classifier struct {
	rpc discovery.ChainRPC
}

// New creates a Classifier.
func New(rpc discovery.ChainRPC) *Classifier {
	return &Classifier{rpc: rpc}
}

// Classify categorizes a dead token.
//
// Decision rule: find early transfers that moved a large share of supply to
// wallets other than the deployer. One such recipient (non-exchange) means
// likely_rug; several distinct recipients mean distributed_rug; none means
// the liquidity simply decayed — natural.
func (c *Classifier) Classify(ctx context.Context, mint, deployer string) (*Result, error) {
	sigs, err := c.rpc.GetSignaturesForAddress(ctx, mint, &solana.SignaturesOpts{
		Limit: 1000,
	})
	if err != nil {
		return nil, fmt.Errorf("list token history: %w", err)
	}
	if len(sigs) == 0 {
		return &Result{Death: domain.DeathInfo{Type: domain.DeathNatural}}, nil
	}

	// Signatures come newest-first; the tail is the token's earliest life.
	start := len(sigs) - deathScanTxBound
	if start < 0 {
		start = 0
	}
	earliest := sigs[start:]

	recipients := make(map[string]bool)
	maxSupply := 0.0

	for i := len(earliest) - 1; i >= 0; i-- {
		sig := earliest[i]
		if sig.Err != nil {
			continue
		}
		tx, err := c.rpc.GetTransaction(ctx, sig.Signature)
		if err != nil || tx == nil || tx.Failed {
			continue
		}

		deltas := ownerDeltas(tx, mint)
		for _, post := range postAmounts(tx, mint) {
			if post > maxSupply {
				maxSupply = post
			}
		}
		if maxSupply <= 0 {
			continue
		}

		for owner, delta := range deltas {
			if owner == "" || owner == deployer {
				continue
			}
			if _, isCEX := funding.KnownExchange(owner); isCEX {
				continue
			}
			if delta >= maxSupply*largeTransferShare {
				recipients[owner] = true
			}
		}
	}

	result := &Result{}
	for owner := range recipients {
		result.Recipients = append(result.Recipients, owner)
	}

	switch {
	case len(recipients) == 0:
		result.Death = domain.DeathInfo{
			Type:     domain.DeathNatural,
			Evidence: "no anomalous early transfers; liquidity decayed",
		}
	case len(recipients) == 1:
		result.Death = domain.DeathInfo{
			Type:     domain.DeathLikelyRug,
			Evidence: fmt.Sprintf("large early transfer concentrated in %s", result.Recipients[0]),
		}
	default:
		result.Death = domain.DeathInfo{
			Type:     domain.DeathDistributedRug,
			Evidence: fmt.Sprintf("value fanned out across %d wallets before drain", len(recipients)),
		}
	}

	return result, nil
}

// ownerDeltas computes per-owner token balance changes for the mint.
func ownerDeltas(tx *solana.Transaction, mint string) map[string]float64 {
	deltas := make(map[string]float64)
	for _, b := range tx.PreTokenBalances {
		if b.Mint == mint {
			deltas[b.Owner] -= b.Amount
		}
	}
	for _, b := range tx.PostTokenBalances {
		if b.Mint == mint {
			deltas[b.Owner] += b.Amount
		}
	}
	return deltas
}

// postAmounts returns per-owner post balances for the mint.
func postAmounts(tx *solana.Transaction, mint string) map[string]float64 {
	out := make(map[string]float64)
	for _, b := range tx.PostTokenBalances {
		if b.Mint == mint {
			out[b.Owner] += b.Amount
		}
	}
	return out
}
