package funding

import (
	"context"
	"errors"
	"testing"

	"solana-rugscan/internal/discovery"
	"solana-rugscan/internal/domain"
)

type fakeTracer struct {
	source   *discovery.FundingSource
	siblings []string
	err      error
}

func (f *fakeTracer) FundingSource(_ context.Context, _ string) (*discovery.FundingSource, error) {
	return f.source, f.err
}

func (f *fakeTracer) WalletsFundedBy(_ context.Context, _ string) ([]string, error) {
	return f.siblings, f.err
}

type fakeProbe struct {
	counts map[string][2]int // wallet -> {tokens, deaths}
}

func (f *fakeProbe) DeployerCounts(_ context.Context, wallet string) (int, int, error) {
	c := f.counts[wallet]
	return c[0], c[1], nil
}

func TestAnalyze_ClusterSizing(t *testing.T) {
	tracer := &fakeTracer{
		source:   &discovery.FundingSource{Wallet: "FunderZ", Timestamp: 1700000000},
		siblings: []string{"DeployerA", "DeployerB", "Bystander", "DeployerSelf"},
	}
	probe := &fakeProbe{counts: map[string][2]int{
		"DeployerA": {5, 4},
		"DeployerB": {2, 0},
		// Bystander has no deployed tokens.
	}}
	analyzer := NewAnalyzer(tracer, probe, nil)

	info, err := analyzer.Analyze(context.Background(), "DeployerSelf")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if info.SourceWallet == nil || *info.SourceWallet != "FunderZ" {
		t.Fatalf("expected FunderZ source, got %+v", info.SourceWallet)
	}
	if info.ClusterSize != 2 {
		t.Errorf("expected cluster size 2, got %d", info.ClusterSize)
	}
	if info.ClusterTokens != 7 || info.ClusterDeaths != 4 {
		t.Errorf("expected cluster tokens 7 / deaths 4, got %d / %d", info.ClusterTokens, info.ClusterDeaths)
	}
	if info.FromKnownExchange {
		t.Error("FunderZ is not a known exchange")
	}
}

func TestAnalyze_ExchangeFunderStopsTraversal(t *testing.T) {
	tracer := &fakeTracer{
		source:   &discovery.FundingSource{Wallet: "5tzFkiKscXHK5ZXCGbXZxdw7gTjjD1mBwuoFbhUvuAi9"},
		siblings: []string{"ShouldNotBeVisited"},
	}
	analyzer := NewAnalyzer(tracer, &fakeProbe{}, nil)

	info, err := analyzer.Analyze(context.Background(), "DeployerSelf")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if !info.FromKnownExchange || info.ExchangeName != "binance" {
		t.Errorf("expected binance hot wallet classification, got %+v", info)
	}
	if info.ClusterSize != 0 {
		t.Errorf("cluster must not be sized behind a CEX, got %d", info.ClusterSize)
	}
}

func TestAnalyze_UnknownFunder(t *testing.T) {
	analyzer := NewAnalyzer(&fakeTracer{}, &fakeProbe{}, nil)

	info, err := analyzer.Analyze(context.Background(), "DeployerSelf")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if info.SourceWallet != nil {
		t.Errorf("expected nil source wallet, got %v", *info.SourceWallet)
	}
	if info.ClusterSize != 0 {
		t.Errorf("expected empty cluster, got %d", info.ClusterSize)
	}
}

func TestAnalyze_TraceFailure(t *testing.T) {
	analyzer := NewAnalyzer(&fakeTracer{err: errors.New("rpc down")}, &fakeProbe{}, nil)

	if _, err := analyzer.Analyze(context.Background(), "DeployerSelf"); err == nil {
		t.Fatal("expected error so caller can degrade to defaults")
	}
}

func TestNetworkAccumulator_Tiers(t *testing.T) {
	acc := NewNetworkAccumulator()

	if tier := acc.Tier("D"); tier != domain.TierLow {
		t.Errorf("empty accumulator should be low tier, got %s", tier)
	}

	acc.Record("D", "Wallet1")
	if tier := acc.Tier("D"); tier != domain.TierMedium {
		t.Errorf("one wallet should be medium tier, got %s", tier)
	}

	// CEX recipients are ignored.
	acc.Record("D", "5tzFkiKscXHK5ZXCGbXZxdw7gTjjD1mBwuoFbhUvuAi9")
	if acc.Count("D") != 1 {
		t.Errorf("CEX recipient must not be recorded, count %d", acc.Count("D"))
	}

	acc.Record("D", "Wallet2")
	acc.Record("D", "Wallet3")
	acc.Record("D", "Wallet4")
	if tier := acc.Tier("D"); tier != domain.TierHigh {
		t.Errorf("four wallets should be high tier, got %s", tier)
	}

	// Duplicates do not inflate the count.
	acc.Record("D", "Wallet4")
	if acc.Count("D") != 4 {
		t.Errorf("expected 4 distinct wallets, got %d", acc.Count("D"))
	}
}
