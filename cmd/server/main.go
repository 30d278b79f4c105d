// Package main runs the scanner as an HTTP service:
// - /scan: on-demand deployer reputation scans (JSON or Markdown)
// - /usage: per-caller quota usage
// - /healthz, /metrics: liveness and Prometheus metrics
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"solana-rugscan/internal/cache"
	"solana-rugscan/internal/classifier"
	"solana-rugscan/internal/discovery"
	"solana-rugscan/internal/domain"
	"solana-rugscan/internal/funding"
	"solana-rugscan/internal/market"
	"solana-rugscan/internal/observability"
	"solana-rugscan/internal/orchestrator"
	"solana-rugscan/internal/quota"
	"solana-rugscan/internal/report"
	"solana-rugscan/internal/risk"
	"solana-rugscan/internal/scoring"
	"solana-rugscan/internal/solana"
	"solana-rugscan/internal/storage"
	chstore "solana-rugscan/internal/storage/clickhouse"
	"solana-rugscan/internal/storage/memory"
	"solana-rugscan/internal/storage/migrations"
	pgstore "solana-rugscan/internal/storage/postgres"
)

// anonymousCaller is the quota bucket for requests without an API key.
const anonymousCaller = "anonymous"

// Server holds the HTTP service's components.
type Server struct {
	orch    *orchestrator.Orchestrator
	tracker *quota.Tracker
	logger  *log.Logger
}

func main() {
	loadEnvFile()

	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	enhancedEndpoint := flag.String("enhanced-endpoint", os.Getenv("ENHANCED_API_ENDPOINT"), "DAS-style indexed API endpoint (optional)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	addr := flag.String("addr", ":8080", "HTTP listen address")
	marketBaseURL := flag.String("market-base-url", "", "Pair API base URL override")
	riskReportBaseURL := flag.String("riskreport-base-url", "", "Risk report API base URL override")
	cacheTTL := flag.Duration("cache-ttl", cache.DefaultTTL, "Scan result cache TTL")
	staleness := flag.Duration("staleness", orchestrator.DefaultStaleness, "Alive token re-verification window")
	perMinute := flag.Int("rate-limit", quota.DefaultPerMinute, "Per-caller scans per minute")
	perDay := flag.Int("rate-limit-daily", quota.DefaultPerDay, "Per-caller scans per day, counted from the scan log")
	discoveryBound := flag.Int("discovery-bound", discovery.DefaultDiscoveryBound, "Max tokens discovered per deployer")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tokenStore, scanLog, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	orch := buildOrchestrator(buildOptions{
		rpcEndpoint:       *rpcEndpoint,
		enhancedEndpoint:  *enhancedEndpoint,
		marketBaseURL:     *marketBaseURL,
		riskReportBaseURL: *riskReportBaseURL,
		cacheTTL:          *cacheTTL,
		staleness:         *staleness,
		discoveryBound:    *discoveryBound,
		tokenStore:        tokenStore,
		scanLog:           scanLog,
	})

	server := &Server{
		orch:    orch,
		tracker: quota.NewTracker(quota.Options{PerMinute: *perMinute, PerDay: *perDay, History: scanLog}),
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/scan", server.handleScan)
	mux.HandleFunc("/usage", server.handleUsage)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())

	httpServer := &http.Server{
		Addr:         *addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM; second signal forces exit.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Shutdown error: %v", err)
		}

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing exit", sig)
			os.Exit(1)
		case <-shutdownCtx.Done():
		}
	}()

	logger.Printf("Listening on %s", *addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("HTTP server error: %v", err)
	}
	logger.Println("Shutdown complete")
}

// buildOptions carries everything needed to wire the scan pipeline.
type buildOptions struct {
	rpcEndpoint       string
	enhancedEndpoint  string
	marketBaseURL     string
	riskReportBaseURL string
	cacheTTL          time.Duration
	staleness         time.Duration
	discoveryBound    int
	tokenStore        storage.DeployerTokenStore
	scanLog           storage.ScanLogStore
}

// buildOrchestrator wires the full dependency graph.
func buildOrchestrator(opts buildOptions) *orchestrator.Orchestrator {
	rpc := solana.NewHTTPClient(opts.rpcEndpoint)

	var enhanced discovery.Enhanced
	if opts.enhancedEndpoint != "" {
		enhanced = discovery.NewEnhancedClient(opts.enhancedEndpoint, nil)
	}

	discoveryLogger := log.New(os.Stdout, "[discovery] ", log.LstdFlags)
	resolver := discovery.NewResolver(enhanced, rpc, discoveryLogger)
	lister := discovery.NewLister(enhanced, rpc, opts.discoveryBound, discoveryLogger)
	tracer := discovery.NewTracer(rpc)

	var marketOpts []market.Option
	if opts.marketBaseURL != "" {
		marketOpts = append(marketOpts, market.WithBaseURL(opts.marketBaseURL))
	}
	marketClient := market.NewClient(marketOpts...)
	riskReports := market.NewRiskReportClient(opts.riskReportBaseURL, nil)

	network := funding.NewNetworkAccumulator()
	analyzer := funding.NewAnalyzer(tracer, opts.tokenStore, network)

	deps := orchestrator.Deps{
		Resolver:   resolver,
		Lister:     lister,
		Market:     marketClient,
		RiskReport: riskReports,
		Funding:    analyzer,
		Classifier: classifier.New(rpc),
		Network:    network,
		Risk:       risk.NewChecker(rpc, log.New(os.Stdout, "[risk] ", log.LstdFlags)),
		Balance:    rpc,
		Scorer:     scoring.NewEngine(scoring.DefaultParams()),
		TokenStore: opts.tokenStore,
		ScanLog:    opts.scanLog,
		Cache:      cache.New(cache.Options{TTL: opts.cacheTTL}),
	}
	if enhanced != nil {
		deps.Metadata = enhanced
	}

	return orchestrator.New(deps, orchestrator.Options{
		Staleness: opts.staleness,
		Logger:    log.New(os.Stdout, "[orchestrator] ", log.LstdFlags),
	})
}

// createStores builds the persistent (or in-memory) storage pair.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (storage.DeployerTokenStore, storage.ScanLogStore, func(), error) {
	if useMemory {
		return memory.NewDeployerTokenStore(), memory.NewScanLogStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}
	return pgstore.NewDeployerTokenStore(pool), chstore.NewScanLogStore(chConn), cleanup, nil
}

// handleScan serves GET /scan?address=<mint|wallet>&kind=token|wallet.
// format=markdown renders the human report instead of JSON.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		http.Error(w, "address is required", http.StatusBadRequest)
		return
	}

	kind := domain.SubjectToken
	if r.URL.Query().Get("kind") == string(domain.SubjectWallet) {
		kind = domain.SubjectWallet
	}

	caller := callerID(r)
	if !s.tracker.Allow(r.Context(), caller) {
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	scan, err := s.orch.Scan(r.Context(), domain.ScanSubject{Address: address, Kind: kind}, "api", caller)
	if err != nil {
		s.writeScanError(w, address, err)
		return
	}

	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(report.RenderMarkdown(scan)))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(scan)
}

// handleUsage serves GET /usage: the caller's own quota counters.
func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.tracker.UsageFor(r.Context(), callerID(r)))
}

func (s *Server) writeScanError(w http.ResponseWriter, address string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAddress):
		http.Error(w, "invalid address", http.StatusBadRequest)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "deployer not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		s.logger.Printf("scan %s: upstream unavailable: %v", address, err)
		http.Error(w, "upstream unavailable, try again later", http.StatusServiceUnavailable)
	default:
		s.logger.Printf("scan %s failed: %v", address, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// callerID identifies the caller for quota purposes.
func callerID(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	return anonymousCaller
}

// loadEnvFile loads environment variables from .env if present. Existing
// env vars win.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
