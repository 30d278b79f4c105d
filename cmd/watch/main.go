// Package main watches the token program for new mints over WebSocket and
// scans each deployer as its token launches, printing verdicts as they land.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solana-rugscan/internal/cache"
	"solana-rugscan/internal/classifier"
	"solana-rugscan/internal/discovery"
	"solana-rugscan/internal/domain"
	"solana-rugscan/internal/funding"
	"solana-rugscan/internal/market"
	"solana-rugscan/internal/orchestrator"
	"solana-rugscan/internal/risk"
	"solana-rugscan/internal/scoring"
	"solana-rugscan/internal/solana"
	"solana-rugscan/internal/storage/memory"
)

// scanWorkers bounds concurrent scans; launches can burst well past what
// the RPC quota tolerates.
const scanWorkers = 4

func main() {
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("SOLANA_WS_ENDPOINT"), "Solana WebSocket endpoint")
	enhancedEndpoint := flag.String("enhanced-endpoint", os.Getenv("ENHANCED_API_ENDPOINT"), "DAS-style indexed API endpoint (optional)")
	minScore := flag.Int("alert-below", 60, "Only print scans scoring below this")
	flag.Parse()

	logger := log.New(os.Stdout, "[watch] ", log.LstdFlags)

	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	if *wsEndpoint == "" {
		logger.Fatal("--ws-endpoint is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

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

	watcher, err := solana.NewMintWatcher(ctx, *wsEndpoint, nil)
	if err != nil {
		logger.Fatalf("Failed to connect watcher: %v", err)
	}
	defer watcher.Close()

	logger.Println("Watching for new mints...")

	jobs := make(chan solana.MintEvent)
	for w := 0; w < scanWorkers; w++ {
		go func() {
			for event := range jobs {
				scanLaunch(ctx, orch, rpc, event, *minScore, logger)
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			close(jobs)
			logger.Println("Shutdown complete")
			return
		case event, ok := <-watcher.Events():
			if !ok {
				close(jobs)
				logger.Println("Watcher closed")
				return
			}
			select {
			case jobs <- event:
			default:
				// Workers saturated; dropping is better than falling
				// behind the stream.
				logger.Printf("Dropping launch %s, scanners busy", event.Signature)
			}
		}
	}
}

// scanLaunch resolves the minted token from the creation transaction and
// scans it.
func scanLaunch(ctx context.Context, orch *orchestrator.Orchestrator, rpc *solana.HTTPClient, event solana.MintEvent, minScore int, logger *log.Logger) {
	scanCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	tx, err := rpc.GetTransaction(scanCtx, event.Signature)
	if err != nil || tx == nil || tx.Failed {
		return
	}

	mint := ""
	for _, b := range tx.PostTokenBalances {
		if b.Mint != "" {
			mint = b.Mint
			break
		}
	}
	if mint == "" {
		return
	}

	scan, err := orch.Scan(scanCtx, domain.ScanSubject{Address: mint, Kind: domain.SubjectToken}, "watch", "")
	if err != nil {
		logger.Printf("Scan %s failed: %v", mint, err)
		return
	}
	if scan.Score >= minScore {
		return
	}

	fmt.Printf("%s  %s  score=%d  deployer=%s  tokens=%d dead=%d  %s\n",
		scan.Verdict, mint, scan.Score, scan.Deployer,
		scan.Stats.TokenCount, scan.Stats.DeadCount, domain.DexScreenerURL(mint))
}
