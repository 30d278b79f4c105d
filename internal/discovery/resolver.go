package discovery

import (
	"context"
	"fmt"
	"log"

	"solana-rugscan/internal/domain"
	"solana-rugscan/internal/solana"
)

// ChainRPC is the raw-ledger subset of the Solana client discovery needs.
type ChainRPC interface {
	GetSignaturesForAddress(ctx context.Context, address string, opts *solana.SignaturesOpts) ([]solana.SignatureInfo, error)
	GetTransaction(ctx context.Context, signature string) (*solana.Transaction, error)
}

// Enhanced is the indexed-API subset discovery needs. Satisfied by
// EnhancedClient; nil-able.
type Enhanced interface {
	GetAsset(ctx context.Context, mint string) (*Asset, error)
	AssetsByCreator(ctx context.Context, wallet string, page int) ([]Asset, int, error)
}

// Resolution is the outcome of deployer resolution.
type Resolution struct {
	Wallet           string
	FirstTxSignature string
	Method           string // domain.MethodEnhancedAPI | domain.MethodRPCFallback
}

// signaturePageLimit is the RPC page size for signature pagination.
const signaturePageLimit = 1000

// maxSignaturePages bounds how far back the raw-ledger walk goes.
const maxSignaturePages = 25

// Resolver resolves a token mint to the wallet that deployed it.
type Resolver struct {
	enhanced Enhanced // may be nil
	rpc      ChainRPC
	logger   *log.Logger
}

// NewResolver creates a Resolver. enhanced may be nil to force the RPC path.
func NewResolver(enhanced Enhanced, rpc ChainRPC, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{enhanced: enhanced, rpc: rpc, logger: logger}
}

// ResolveDeployer finds the deployer wallet for a mint. The indexed API is
// preferred; on miss or failure the raw ledger is walked to the mint's
// first transaction and its fee payer is taken as the deployer.
// Returns domain.ErrNotFound when neither path resolves a wallet.
func (r *Resolver) ResolveDeployer(ctx context.Context, mint string) (*Resolution, error) {
	if r.enhanced != nil {
		asset, err := r.enhanced.GetAsset(ctx, mint)
		if err != nil {
			r.logger.Printf("[discovery] enhanced getAsset %s failed, falling back to RPC: %v", mint, err)
		} else if asset != nil && asset.Creator != "" {
			return &Resolution{
				Wallet: asset.Creator,
				Method: domain.MethodEnhancedAPI,
			}, nil
		}
	}

	earliest, err := EarliestSignature(ctx, r.rpc, mint)
	if err != nil {
		return nil, fmt.Errorf("walk mint history: %w", err)
	}
	if earliest == nil {
		return nil, domain.ErrNotFound
	}

	tx, err := r.rpc.GetTransaction(ctx, earliest.Signature)
	if err != nil {
		return nil, fmt.Errorf("fetch mint creation tx: %w", err)
	}
	if tx == nil || len(tx.AccountKeys) == 0 {
		return nil, domain.ErrNotFound
	}

	// Fee payer is always the first account key.
	return &Resolution{
		Wallet:           tx.AccountKeys[0],
		FirstTxSignature: earliest.Signature,
		Method:           domain.MethodRPCFallback,
	}, nil
}

// EarliestSignature pages backwards through an address's signature history
// and returns the oldest entry, bounded by maxSignaturePages.
// Returns nil when the address has no history.
func EarliestSignature(ctx context.Context, rpc ChainRPC, address string) (*solana.SignatureInfo, error) {
	var oldest *solana.SignatureInfo
	before := ""

	for page := 0; page < maxSignaturePages; page++ {
		sigs, err := rpc.GetSignaturesForAddress(ctx, address, &solana.SignaturesOpts{
			Before: before,
			Limit:  signaturePageLimit,
		})
		if err != nil {
			return nil, err
		}
		if len(sigs) == 0 {
			break
		}

		last := sigs[len(sigs)-1]
		oldest = &last
		before = last.Signature

		if len(sigs) < signaturePageLimit {
			break
		}
	}

	return oldest, nil
}
