package discovery

import (
	"context"
	"fmt"

	"solana-rugscan/internal/solana"
)

// fundedByTxBound caps how many of a funder's transactions are inspected
// when enumerating wallets it has funded.
const fundedByTxBound = 40

// maxFundedWallets caps the sibling set returned by WalletsFundedBy.
const maxFundedWallets = 50

// FundingSource identifies the wallet behind a deployer's first funding.
type FundingSource struct {
	Wallet    string
	Timestamp int64 // unix seconds, 0 when unknown
	Signature string
}

// Tracer answers funding-graph questions from the raw ledger.
type Tracer struct {
	rpc ChainRPC
}

// NewTracer creates a Tracer.
func NewTracer(rpc ChainRPC) *Tracer {
	return &Tracer{rpc: rpc}
}

// FundingSource traces exactly one hop back: the wallet that sent lamports
// in the deployer's first-ever transaction. Returns nil, nil for an unknown
// funder (no history, or first tx has no external sender).
func (t *Tracer) FundingSource(ctx context.Context, wallet string) (*FundingSource, error) {
	earliest, err := EarliestSignature(ctx, t.rpc, wallet)
	if err != nil {
		return nil, fmt.Errorf("walk wallet history: %w", err)
	}
	if earliest == nil {
		return nil, nil
	}

	tx, err := t.rpc.GetTransaction(ctx, earliest.Signature)
	if err != nil {
		return nil, fmt.Errorf("fetch first tx: %w", err)
	}
	if tx == nil {
		return nil, nil
	}

	sender := lamportSender(tx, wallet)
	if sender == "" {
		return nil, nil
	}

	source := &FundingSource{
		Wallet:    sender,
		Signature: earliest.Signature,
	}
	if tx.BlockTime > 0 {
		source.Timestamp = tx.BlockTime
	} else if earliest.BlockTime != nil {
		source.Timestamp = *earliest.BlockTime
	}
	return source, nil
}

// WalletsFundedBy enumerates distinct wallets the funder has sent lamports
// to, inspecting a bounded slice of its recent history.
func (t *Tracer) WalletsFundedBy(ctx context.Context, funder string) ([]string, error) {
	sigs, err := t.rpc.GetSignaturesForAddress(ctx, funder, &solana.SignaturesOpts{
		Limit: fundedByTxBound,
	})
	if err != nil {
		return nil, fmt.Errorf("list funder history: %w", err)
	}

	seen := make(map[string]bool)
	var wallets []string

	for _, sig := range sigs {
		if sig.Err != nil {
			continue
		}
		tx, err := t.rpc.GetTransaction(ctx, sig.Signature)
		if err != nil || tx == nil || tx.Failed {
			continue
		}

		for _, recipient := range lamportRecipients(tx, funder) {
			if seen[recipient] {
				continue
			}
			seen[recipient] = true
			wallets = append(wallets, recipient)
			if len(wallets) >= maxFundedWallets {
				return wallets, nil
			}
		}
	}

	return wallets, nil
}

// lamportSender finds the account that lost lamports to the wallet in tx.
func lamportSender(tx *solana.Transaction, wallet string) string {
	if len(tx.PreBalances) != len(tx.AccountKeys) || len(tx.PostBalances) != len(tx.AccountKeys) {
		return ""
	}
	for i, key := range tx.AccountKeys {
		if key == wallet || isProgramAddress(key) {
			continue
		}
		if tx.PreBalances[i] > tx.PostBalances[i] {
			return key
		}
	}
	return ""
}

// lamportRecipients finds accounts credited by the funder in tx.
func lamportRecipients(tx *solana.Transaction, funder string) []string {
	if len(tx.PreBalances) != len(tx.AccountKeys) || len(tx.PostBalances) != len(tx.AccountKeys) {
		return nil
	}
	var out []string
	for i, key := range tx.AccountKeys {
		if key == funder || isProgramAddress(key) {
			continue
		}
		if tx.PostBalances[i] > tx.PreBalances[i] {
			out = append(out, key)
		}
	}
	return out
}

func isProgramAddress(key string) bool {
	return key == solana.SystemProgram || key == solana.TokenProgram
}
