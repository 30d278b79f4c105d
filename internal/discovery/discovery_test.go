package discovery

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"solana-rugscan/internal/domain"
	"solana-rugscan/internal/solana"
)

// fakeRPC serves canned signature pages and transactions.
type fakeRPC struct {
	sigs map[string][]solana.SignatureInfo
	txs  map[string]*solana.Transaction
}

func (f *fakeRPC) GetSignaturesForAddress(_ context.Context, address string, opts *solana.SignaturesOpts) ([]solana.SignatureInfo, error) {
	sigs := f.sigs[address]
	if opts != nil && opts.Before != "" {
		// All fixtures fit in one page.
		return nil, nil
	}
	return sigs, nil
}

func (f *fakeRPC) GetTransaction(_ context.Context, signature string) (*solana.Transaction, error) {
	return f.txs[signature], nil
}

// fakeEnhanced serves canned DAS responses.
type fakeEnhanced struct {
	assets    map[string]*Asset
	byCreator map[string][]Asset
	err       error
}

func (f *fakeEnhanced) GetAsset(_ context.Context, mint string) (*Asset, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.assets[mint], nil
}

func (f *fakeEnhanced) AssetsByCreator(_ context.Context, wallet string, page int) ([]Asset, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	assets := f.byCreator[wallet]
	if page > 1 {
		return nil, len(assets), nil
	}
	return assets, len(assets), nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestResolveDeployer_EnhancedPath(t *testing.T) {
	enhanced := &fakeEnhanced{assets: map[string]*Asset{
		"MintA": {ID: "MintA", Creator: "WalletX"},
	}}
	resolver := NewResolver(enhanced, &fakeRPC{}, quietLogger())

	res, err := resolver.ResolveDeployer(context.Background(), "MintA")
	if err != nil {
		t.Fatalf("ResolveDeployer failed: %v", err)
	}
	if res.Wallet != "WalletX" {
		t.Errorf("expected WalletX, got %s", res.Wallet)
	}
	if res.Method != domain.MethodEnhancedAPI {
		t.Errorf("expected enhanced_api method, got %s", res.Method)
	}
}

func TestResolveDeployer_RPCFallback(t *testing.T) {
	blockTime := int64(1700000000)
	rpc := &fakeRPC{
		sigs: map[string][]solana.SignatureInfo{
			"MintA": {
				{Signature: "sig2", BlockTime: &blockTime},
				{Signature: "sig1", BlockTime: &blockTime}, // oldest is last
			},
		},
		txs: map[string]*solana.Transaction{
			"sig1": {
				Signature:   "sig1",
				AccountKeys: []string{"DeployerY", "MintA", solana.TokenProgram},
			},
		},
	}
	// Enhanced errors out; fallback must kick in.
	resolver := NewResolver(&fakeEnhanced{err: errors.New("boom")}, rpc, quietLogger())

	res, err := resolver.ResolveDeployer(context.Background(), "MintA")
	if err != nil {
		t.Fatalf("ResolveDeployer failed: %v", err)
	}
	if res.Wallet != "DeployerY" {
		t.Errorf("expected fee payer DeployerY, got %s", res.Wallet)
	}
	if res.Method != domain.MethodRPCFallback {
		t.Errorf("expected rpc_fallback method, got %s", res.Method)
	}
	if res.FirstTxSignature != "sig1" {
		t.Errorf("expected earliest signature sig1, got %s", res.FirstTxSignature)
	}
}

func TestResolveDeployer_NotFound(t *testing.T) {
	resolver := NewResolver(nil, &fakeRPC{}, quietLogger())

	_, err := resolver.ResolveDeployer(context.Background(), "MintUnknown")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListDeployerTokens_Enhanced(t *testing.T) {
	enhanced := &fakeEnhanced{byCreator: map[string][]Asset{
		"WalletX": {
			{ID: "MintA", Name: "Token A", Symbol: "TKA"},
			{ID: "MintB", Name: "Token B\x00\x00", Symbol: "TKB"},
			{ID: "MintA"}, // duplicate dropped
		},
	}}
	lister := NewLister(enhanced, &fakeRPC{}, 0, quietLogger())

	res, err := lister.ListDeployerTokens(context.Background(), "WalletX")
	if err != nil {
		t.Fatalf("ListDeployerTokens failed: %v", err)
	}
	if len(res.Tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(res.Tokens))
	}
	if res.Tokens[1].Name != "Token B" {
		t.Errorf("expected sanitized name, got %q", res.Tokens[1].Name)
	}
	if res.LimitReached {
		t.Error("bound not hit, LimitReached should be false")
	}
}

func TestListDeployerTokens_Bound(t *testing.T) {
	assets := make([]Asset, 10)
	for i := range assets {
		assets[i] = Asset{ID: string(rune('A' + i))}
	}
	enhanced := &fakeEnhanced{byCreator: map[string][]Asset{"WalletX": assets}}
	lister := NewLister(enhanced, &fakeRPC{}, 4, quietLogger())

	res, err := lister.ListDeployerTokens(context.Background(), "WalletX")
	if err != nil {
		t.Fatalf("ListDeployerTokens failed: %v", err)
	}
	if len(res.Tokens) != 4 {
		t.Errorf("expected bound of 4 tokens, got %d", len(res.Tokens))
	}
	if !res.LimitReached {
		t.Error("expected LimitReached when bound hit")
	}
}

func TestListDeployerTokens_RPCFallback(t *testing.T) {
	blockTime := int64(1700000100)
	rpc := &fakeRPC{
		sigs: map[string][]solana.SignatureInfo{
			"WalletX": {
				{Signature: "mintTx"},
				{Signature: "otherTx"},
			},
		},
		txs: map[string]*solana.Transaction{
			"mintTx": {
				Signature:   "mintTx",
				BlockTime:   blockTime,
				LogMessages: []string{"Program log: Instruction: InitializeMint"},
				PostTokenBalances: []solana.TokenBalance{
					{Mint: "MintA", Owner: "WalletX", Amount: 1000},
				},
			},
			"otherTx": {
				Signature:   "otherTx",
				LogMessages: []string{"Program log: Instruction: Transfer"},
			},
		},
	}
	lister := NewLister(nil, rpc, 0, quietLogger())

	res, err := lister.ListDeployerTokens(context.Background(), "WalletX")
	if err != nil {
		t.Fatalf("ListDeployerTokens failed: %v", err)
	}
	if res.Method != domain.MethodRPCFallback {
		t.Errorf("expected rpc_fallback, got %s", res.Method)
	}
	if len(res.Tokens) != 1 || res.Tokens[0].Address != "MintA" {
		t.Fatalf("expected [MintA], got %+v", res.Tokens)
	}
	if res.Tokens[0].CreatedAt == nil || *res.Tokens[0].CreatedAt != blockTime {
		t.Errorf("expected created_at from block time, got %v", res.Tokens[0].CreatedAt)
	}
}

func TestFundingSource(t *testing.T) {
	blockTime := int64(1699999000)
	rpc := &fakeRPC{
		sigs: map[string][]solana.SignatureInfo{
			"DeployerY": {
				{Signature: "later"},
				{Signature: "first", BlockTime: &blockTime},
			},
		},
		txs: map[string]*solana.Transaction{
			"first": {
				Signature:    "first",
				BlockTime:    blockTime,
				AccountKeys:  []string{"FunderZ", "DeployerY", solana.SystemProgram},
				PreBalances:  []uint64{10_000_000_000, 0, 1},
				PostBalances: []uint64{8_999_995_000, 1_000_000_000, 1},
			},
		},
	}
	tracer := NewTracer(rpc)

	source, err := tracer.FundingSource(context.Background(), "DeployerY")
	if err != nil {
		t.Fatalf("FundingSource failed: %v", err)
	}
	if source == nil || source.Wallet != "FunderZ" {
		t.Fatalf("expected FunderZ, got %+v", source)
	}
	if source.Timestamp != blockTime {
		t.Errorf("expected timestamp %d, got %d", blockTime, source.Timestamp)
	}
}

func TestFundingSource_UnknownFunder(t *testing.T) {
	tracer := NewTracer(&fakeRPC{})

	source, err := tracer.FundingSource(context.Background(), "FreshWallet")
	if err != nil {
		t.Fatalf("FundingSource failed: %v", err)
	}
	if source != nil {
		t.Errorf("expected nil source for wallet with no history, got %+v", source)
	}
}

func TestWalletsFundedBy(t *testing.T) {
	rpc := &fakeRPC{
		sigs: map[string][]solana.SignatureInfo{
			"FunderZ": {
				{Signature: "fund1"},
				{Signature: "fund2"},
			},
		},
		txs: map[string]*solana.Transaction{
			"fund1": {
				AccountKeys:  []string{"FunderZ", "WalletA", solana.SystemProgram},
				PreBalances:  []uint64{10, 0, 1},
				PostBalances: []uint64{5, 5, 1},
			},
			"fund2": {
				AccountKeys:  []string{"FunderZ", "WalletB", "WalletA", solana.SystemProgram},
				PreBalances:  []uint64{5, 0, 5, 1},
				PostBalances: []uint64{1, 2, 7, 1},
			},
		},
	}
	tracer := NewTracer(rpc)

	wallets, err := tracer.WalletsFundedBy(context.Background(), "FunderZ")
	if err != nil {
		t.Fatalf("WalletsFundedBy failed: %v", err)
	}
	if len(wallets) != 2 {
		t.Fatalf("expected 2 distinct wallets, got %v", wallets)
	}
}
