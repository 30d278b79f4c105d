package funding

import (
	"context"
	"fmt"

	"solana-rugscan/internal/discovery"
	"solana-rugscan/internal/domain"
)

// Tracer is the funding-graph subset of the discovery adapter.
type Tracer interface {
	FundingSource(ctx context.Context, wallet string) (*discovery.FundingSource, error)
	WalletsFundedBy(ctx context.Context, funder string) ([]string, error)
}

// DeployerProbe answers whether a wallet is a known token deployer, with
// aggregate counts. Backed by the persistent token cache, so only deployers
// the service has already seen count toward a cluster.
type DeployerProbe interface {
	DeployerCounts(ctx context.Context, wallet string) (tokens int, deaths int, err error)
}

// Analyzer sizes the co-funded deployer cluster.
type Analyzer struct {
	tracer  Tracer
	probe   DeployerProbe
	network *NetworkAccumulator
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(tracer Tracer, probe DeployerProbe, network *NetworkAccumulator) *Analyzer {
	if network == nil {
		network = NewNetworkAccumulator()
	}
	return &Analyzer{tracer: tracer, probe: probe, network: network}
}

// Network exposes the shared accumulator so the death classifier can feed it.
func (a *Analyzer) Network() *NetworkAccumulator {
	return a.network
}

// Analyze traces one funding hop for the deployer and sizes its cluster.
// The error return marks the cluster as unchecked; the caller degrades to
// defaults rather than failing the scan.
func (a *Analyzer) Analyze(ctx context.Context, deployer string) (*domain.FundingInfo, error) {
	info := &domain.FundingInfo{
		NetworkRiskTier: a.network.Tier(deployer),
	}

	source, err := a.tracer.FundingSource(ctx, deployer)
	if err != nil {
		return nil, fmt.Errorf("trace funding source: %w", err)
	}
	if source == nil {
		// Unknown funder: nothing more to analyze.
		return info, nil
	}

	wallet := source.Wallet
	info.SourceWallet = &wallet
	if source.Timestamp > 0 {
		ts := source.Timestamp
		info.FundedAt = &ts
	}

	if name, isCEX := KnownExchange(wallet); isCEX {
		// CEX hot wallets fund unrelated wallets by the thousand;
		// sibling enumeration would be meaningless noise.
		info.FromKnownExchange = true
		info.ExchangeName = name
		return info, nil
	}

	siblings, err := a.tracer.WalletsFundedBy(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("enumerate funded wallets: %w", err)
	}

	for _, sibling := range siblings {
		if sibling == deployer {
			continue
		}
		tokens, deaths, err := a.probe.DeployerCounts(ctx, sibling)
		if err != nil || tokens == 0 {
			continue
		}
		info.ClusterSize++
		info.ClusterTokens += tokens
		info.ClusterDeaths += deaths
	}

	return info, nil
}
