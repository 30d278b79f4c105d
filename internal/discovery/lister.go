package discovery

import (
	"context"
	"log"
	"strings"

	"solana-rugscan/internal/domain"
	"solana-rugscan/internal/solana"
)

// DefaultDiscoveryBound caps full token discovery per deployer.
const DefaultDiscoveryBound = 5000

// rpcFallbackTxBound caps how many wallet transactions the raw-ledger
// fallback inspects for InitializeMint instructions.
const rpcFallbackTxBound = 200

// TokenItem is one discovered token.
type TokenItem struct {
	Address   string
	Name      string
	Symbol    string
	CreatedAt *int64 // unix seconds, nullable
}

// ListResult is the outcome of token discovery.
type ListResult struct {
	Tokens       []TokenItem
	LimitReached bool
	Method       string
}

// Lister enumerates every token a deployer has created.
type Lister struct {
	enhanced Enhanced // may be nil
	rpc      ChainRPC
	bound    int
	logger   *log.Logger
}

// NewLister creates a Lister with the given discovery bound (0 uses the
// default).
func NewLister(enhanced Enhanced, rpc ChainRPC, bound int, logger *log.Logger) *Lister {
	if bound <= 0 {
		bound = DefaultDiscoveryBound
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Lister{enhanced: enhanced, rpc: rpc, bound: bound, logger: logger}
}

// ListDeployerTokens discovers the deployer's token set, bounded by the
// configured limit. LimitReached flags a potentially incomplete set.
func (l *Lister) ListDeployerTokens(ctx context.Context, wallet string) (*ListResult, error) {
	if l.enhanced != nil {
		result, err := l.listEnhanced(ctx, wallet)
		if err == nil {
			return result, nil
		}
		l.logger.Printf("[discovery] enhanced listing for %s failed, falling back to RPC: %v", wallet, err)
	}
	return l.listRPC(ctx, wallet)
}

func (l *Lister) listEnhanced(ctx context.Context, wallet string) (*ListResult, error) {
	result := &ListResult{Method: domain.MethodEnhancedAPI}
	seen := make(map[string]bool)

	for page := 1; len(result.Tokens) < l.bound; page++ {
		assets, total, err := l.enhanced.AssetsByCreator(ctx, wallet, page)
		if err != nil {
			return nil, err
		}
		if len(assets) == 0 {
			break
		}

		for _, a := range assets {
			if seen[a.ID] {
				continue
			}
			seen[a.ID] = true
			result.Tokens = append(result.Tokens, TokenItem{
				Address: a.ID,
				Name:    domain.SanitizeName(a.Name),
				Symbol:  domain.SanitizeSymbol(a.Symbol),
			})
			if len(result.Tokens) >= l.bound {
				result.LimitReached = true
				break
			}
		}

		if total > 0 && len(seen) >= total {
			break
		}
	}

	return result, nil
}

// listRPC walks the wallet's transaction history looking for InitializeMint
// instructions. Bounded and best-effort: old prolific deployers will be
// flagged incomplete.
func (l *Lister) listRPC(ctx context.Context, wallet string) (*ListResult, error) {
	result := &ListResult{Method: domain.MethodRPCFallback}

	sigs, err := l.rpc.GetSignaturesForAddress(ctx, wallet, &solana.SignaturesOpts{
		Limit: signaturePageLimit,
	})
	if err != nil {
		return nil, err
	}

	inspected := 0
	seen := make(map[string]bool)
	for _, sig := range sigs {
		if inspected >= rpcFallbackTxBound {
			result.LimitReached = true
			break
		}
		if sig.Err != nil {
			continue
		}
		inspected++

		tx, err := l.rpc.GetTransaction(ctx, sig.Signature)
		if err != nil || tx == nil || tx.Failed {
			continue
		}
		if !hasInitializeMint(tx.LogMessages) {
			continue
		}

		mint := mintFromTx(tx, wallet)
		if mint == "" || seen[mint] {
			continue
		}
		seen[mint] = true

		item := TokenItem{Address: mint}
		if tx.BlockTime > 0 {
			createdAt := tx.BlockTime
			item.CreatedAt = &createdAt
		}
		result.Tokens = append(result.Tokens, item)
		if len(result.Tokens) >= l.bound {
			result.LimitReached = true
			break
		}
	}

	if len(sigs) == signaturePageLimit {
		result.LimitReached = true
	}

	return result, nil
}

func hasInitializeMint(logs []string) bool {
	for _, line := range logs {
		if strings.Contains(line, "InitializeMint") {
			return true
		}
	}
	return false
}

// mintFromTx picks the minted token out of a creation transaction: the
// first post token balance owned by the wallet, else the first one at all.
func mintFromTx(tx *solana.Transaction, wallet string) string {
	for _, b := range tx.PostTokenBalances {
		if b.Owner == wallet && b.Mint != "" {
			return b.Mint
		}
	}
	for _, b := range tx.PostTokenBalances {
		if b.Mint != "" {
			return b.Mint
		}
	}
	return ""
}
