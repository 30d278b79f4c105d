// Package main is the one-shot CLI: scan a token mint or deployer wallet
// and print the report.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"solana-rugscan/internal/cache"
	"solana-rugscan/internal/classifier"
	"solana-rugscan/internal/discovery"
	"solana-rugscan/internal/domain"
	"solana-rugscan/internal/funding"
	"solana-rugscan/internal/market"
	"solana-rugscan/internal/orchestrator"
	"solana-rugscan/internal/report"
	"solana-rugscan/internal/risk"
	"solana-rugscan/internal/scoring"
	"solana-rugscan/internal/solana"
	"solana-rugscan/internal/storage/memory"
)

func main() {
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	enhancedEndpoint := flag.String("enhanced-endpoint", os.Getenv("ENHANCED_API_ENDPOINT"), "DAS-style indexed API endpoint (optional)")
	wallet := flag.Bool("wallet", false, "Treat the address as a deployer wallet, not a token mint")
	asJSON := flag.Bool("json", false, "Print the raw scan JSON instead of Markdown")
	timeout := flag.Duration("timeout", 3*time.Minute, "Scan timeout")
	flag.Parse()

	logger := log.New(os.Stderr, "[scan] ", log.LstdFlags)

	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	if flag.NArg() != 1 {
		logger.Fatalf("usage: %s [flags] <address>", os.Args[0])
	}
	address := flag.Arg(0)

	rpc := solana.NewHTTPClient(*rpcEndpoint)

	var enhanced discovery.Enhanced
	if *enhancedEndpoint != "" {
		enhanced = discovery.NewEnhancedClient(*enhancedEndpoint, nil)
	}

	tokenStore := memory.NewDeployerTokenStore()
	tracer := discovery.NewTracer(rpc)
	network := funding.NewNetworkAccumulator()

	deps := orchestrator.Deps{
		Resolver:   discovery.NewResolver(enhanced, rpc, logger),
		Lister:     discovery.NewLister(enhanced, rpc, 0, logger),
		Market:     market.NewClient(),
		RiskReport: market.NewRiskReportClient("", nil),
		Funding:    funding.NewAnalyzer(tracer, tokenStore, network),
		Classifier: classifier.New(rpc),
		Network:    network,
		Risk:       risk.NewChecker(rpc, logger),
		Balance:    rpc,
		Scorer:     scoring.NewEngine(scoring.DefaultParams()),
		TokenStore: tokenStore,
		ScanLog:    memory.NewScanLogStore(),
		Cache:      cache.New(cache.Options{}),
	}
	if enhanced != nil {
		deps.Metadata = enhanced
	}
	orch := orchestrator.New(deps, orchestrator.Options{Logger: logger})

	kind := domain.SubjectToken
	if *wallet {
		kind = domain.SubjectWallet
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	scan, err := orch.Scan(ctx, domain.ScanSubject{Address: address, Kind: kind}, "cli", "")
	if err != nil {
		logger.Fatalf("Scan failed: %v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(scan); err != nil {
			logger.Fatalf("Encode failed: %v", err)
		}
		return
	}
	fmt.Print(report.RenderMarkdown(scan))
}
