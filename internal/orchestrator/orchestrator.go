// Package orchestrator runs the scan pipeline: resolve the deployer, walk
// its token history, verify liveness against market data, analyze funding,
// classify deaths, and score the result.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"solana-rugscan/internal/cache"
	"solana-rugscan/internal/classifier"
	"solana-rugscan/internal/discovery"
	"solana-rugscan/internal/domain"
	"solana-rugscan/internal/market"
	"solana-rugscan/internal/observability"
	"solana-rugscan/internal/risk"
	"solana-rugscan/internal/scoring"
	"solana-rugscan/internal/solana"
	"solana-rugscan/internal/storage"
)

// DefaultStaleness is how long a verified alive status from the persistent
// cache is trusted before the token is re-checked against market data.
// Dead statuses never expire.
const DefaultStaleness = 6 * time.Hour

// deathClassifyBound caps per-scan ledger classification of dead tokens.
const deathClassifyBound = 10

// metadataWorkers is the concurrency for token metadata backfill.
const metadataWorkers = 5

// metadataFetchBound caps how many nameless tokens get a metadata lookup.
const metadataFetchBound = 30

// evidenceTokenLimit caps per-scan dead-token evidence lines.
const evidenceTokenLimit = 3

// Resolver resolves a token mint to its deployer.
type Resolver interface {
	ResolveDeployer(ctx context.Context, mint string) (*discovery.Resolution, error)
}

// Lister enumerates a deployer's tokens.
type Lister interface {
	ListDeployerTokens(ctx context.Context, wallet string) (*discovery.ListResult, error)
}

// MetadataSource backfills names for mints discovery could not identify.
type MetadataSource interface {
	GetAsset(ctx context.Context, mint string) (*discovery.Asset, error)
}

// MarketSource provides bulk token liveness and single-token price lookups.
type MarketSource interface {
	BulkTokenStatus(ctx context.Context, mints []string) (map[string]market.TokenStatus, error)
	TokenPrice(ctx context.Context, mint string) (*float64, error)
}

// RiskReporter fetches the third-party risk report for a token.
type RiskReporter interface {
	Report(ctx context.Context, mint string) (*market.RiskReport, error)
}

// FundingAnalyzer traces the deployer's funding source and sizes its
// co-funded cluster.
type FundingAnalyzer interface {
	Analyze(ctx context.Context, deployer string) (*domain.FundingInfo, error)
}

// DeathClassifier categorizes a dead token from its early transfers.
type DeathClassifier interface {
	Classify(ctx context.Context, mint, deployer string) (*classifier.Result, error)
}

// NetworkRecorder accumulates rug recipients into the wallet network.
type NetworkRecorder interface {
	Record(deployer, recipient string)
}

// RiskChecker evaluates per-token risk signals.
type RiskChecker interface {
	Check(ctx context.Context, mint, deployer string) domain.RiskSignals
}

// BalanceReader reads native SOL balances.
type BalanceReader interface {
	GetBalance(ctx context.Context, pubkey string) (uint64, error)
}

// Scorer maps aggregate signals to a score and verdict.
type Scorer interface {
	Score(in scoring.Input) (domain.ScoreBreakdown, domain.Verdict)
}

// Deps are the orchestrator's collaborators. Resolver, Lister, Market and
// Scorer are required; the rest are optional and degrade to unchecked
// signals when nil.
type Deps struct {
	Resolver   Resolver
	Lister     Lister
	Metadata   MetadataSource
	Market     MarketSource
	RiskReport RiskReporter
	Funding    FundingAnalyzer
	Classifier DeathClassifier
	Network    NetworkRecorder
	Risk       RiskChecker
	Balance    BalanceReader
	Scorer     Scorer

	TokenStore storage.DeployerTokenStore
	ScanLog    storage.ScanLogStore
	Cache      *cache.ScanCache
}

// Options tune the pipeline.
type Options struct {
	Staleness time.Duration
	Clock     func() time.Time
	Logger    *log.Logger
}

// Orchestrator runs scans.
type Orchestrator struct {
	deps      Deps
	staleness time.Duration
	clock     func() time.Time
	logger    *log.Logger
}

// New creates an Orchestrator. Zero options use defaults.
func New(deps Deps, opts Options) *Orchestrator {
	if opts.Staleness <= 0 {
		opts.Staleness = DefaultStaleness
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Orchestrator{
		deps:      deps,
		staleness: opts.Staleness,
		clock:     opts.Clock,
		logger:    opts.Logger,
	}
}

// Scan runs the full pipeline for a subject. Results are cached and
// concurrent scans of the same subject are coalesced.
//
// Errors: domain.ErrInvalidAddress for malformed input, domain.ErrNotFound
// when the deployer cannot be resolved, domain.ErrUpstreamUnavailable when
// a required upstream is down.
func (o *Orchestrator) Scan(ctx context.Context, subject domain.ScanSubject, source, caller string) (*domain.DeployerScan, error) {
	if !solana.ValidAddress(subject.Address) {
		observability.RecordScanError("invalid_address")
		return nil, domain.ErrInvalidAddress
	}

	started := o.clock()

	var scan *domain.DeployerScan
	var hit bool
	var err error
	if o.deps.Cache != nil {
		key := string(subject.Kind) + ":" + subject.Address
		scan, hit, err = o.deps.Cache.GetOrCompute(ctx, key, func() (*domain.DeployerScan, error) {
			return o.runScan(ctx, subject, source, caller)
		})
		observability.RecordCacheLookup(hit)
	} else {
		scan, err = o.runScan(ctx, subject, source, caller)
	}
	if err != nil {
		observability.RecordScanError(errorType(err))
		return nil, err
	}
	if !hit {
		observability.RecordScan(string(subject.Kind), source, string(scan.Verdict),
			o.clock().Sub(started).Seconds(), scan.ScannedAt)
	}
	return scan, nil
}

func (o *Orchestrator) runScan(ctx context.Context, subject domain.ScanSubject, source, caller string) (*domain.DeployerScan, error) {
	now := o.clock().Unix()
	scan := &domain.DeployerScan{ScannedAt: now}

	if subject.Kind == domain.SubjectToken {
		resolution, err := o.deps.Resolver.ResolveDeployer(ctx, subject.Address)
		switch {
		case err == nil:
			scan.Token = subject.Address
			scan.Deployer = resolution.Wallet
			scan.Confidence.DeployerMethod = resolution.Method
			// A wallet pasted as a token resolves to itself; scan it
			// directly as a deployer.
			if scan.Deployer == subject.Address {
				scan.Token = ""
			}
		case errors.Is(err, domain.ErrNotFound) && solana.IsOnCurve(subject.Address):
			// Not a known mint, but an ordinary keypair address.
			scan.Deployer = subject.Address
		case errors.Is(err, domain.ErrNotFound):
			return nil, domain.ErrNotFound
		default:
			return nil, fmt.Errorf("%w: resolve deployer: %v", domain.ErrUpstreamUnavailable, err)
		}
	} else {
		scan.Deployer = subject.Address
	}

	known := o.knownRecords(ctx, scan.Deployer)

	var tokens map[string]*domain.DeployerToken
	var limitReached bool
	if o.discoveryFresh(known) {
		// Warm path: a fresh row stamp means a full enumeration already ran
		// inside the staleness window. Paginated discovery is the expensive
		// part of a scan; serve the token set from the cache instead.
		tokens = mergeKnownTokens(&discovery.ListResult{}, known)
		if scan.Confidence.DeployerMethod == "" {
			scan.Confidence.DeployerMethod = domain.MethodCache
		}
		observability.RecordDiscoverySkip()
	} else {
		listed, err := o.deps.Lister.ListDeployerTokens(ctx, scan.Deployer)
		if err != nil {
			return nil, fmt.Errorf("%w: list deployer tokens: %v", domain.ErrUpstreamUnavailable, err)
		}
		if scan.Confidence.DeployerMethod == "" {
			scan.Confidence.DeployerMethod = listed.Method
		}
		observability.RecordDiscovery(len(listed.Tokens),
			listed.Method == domain.MethodRPCFallback, listed.LimitReached)
		tokens = mergeKnownTokens(listed, known)
		limitReached = listed.LimitReached
	}

	// The scanned mint always participates, even when discovery missed it.
	if scan.Token != "" {
		if _, ok := tokens[scan.Token]; !ok {
			tokens[scan.Token] = &domain.DeployerToken{Address: scan.Token, Status: domain.StatusUnknown}
		}
	}

	reusedAt, incomplete := o.verifyStatuses(ctx, scan.Deployer, scan.Token, tokens, known)
	scan.Confidence.TokensMayBeIncomplete = limitReached || incomplete

	if scan.Token != "" {
		scan.MarketData = marketSnapshot(tokens[scan.Token])
	}

	o.backfillMetadata(ctx, tokens)
	o.fanOut(ctx, scan)
	o.classifyDeaths(ctx, scan.Deployer, tokens)

	scan.Tokens = sortedTokens(tokens)
	scan.Stats = buildStats(scan.Tokens, now, scan.Stats.NativeBalance)
	o.finishRiskSignals(scan, now)

	scan.Confidence.TokensVerified = scan.Stats.VerifiedCount
	scan.Confidence.TokensUnverified = scan.Stats.UnverifiedCount

	breakdown, verdict := o.deps.Scorer.Score(scoring.Input{
		TokenCount:      scan.Stats.TokenCount,
		VerifiedCount:   scan.Stats.VerifiedCount,
		UnverifiedCount: scan.Stats.UnverifiedCount,
		DeadCount:       scan.Stats.DeadCount,
		AvgLifespanDays: scan.Stats.AvgLifespanDays,
		ClusterSize:     clusterSize(scan.Funding),
		Risk:            riskOrEmpty(scan.TokenRisks),
	})
	scan.ScoreBreakdown = breakdown
	scan.Score = breakdown.Score
	scan.Verdict = verdict
	scan.Evidence = buildEvidence(scan)

	o.persist(ctx, subject, scan, reusedAt, source, caller)

	return scan, nil
}

// knownRecords reads the persistent token cache for a deployer. Read
// failures degrade to a cold scan.
func (o *Orchestrator) knownRecords(ctx context.Context, deployer string) []*domain.DeployerTokenRecord {
	if o.deps.TokenStore == nil {
		return nil
	}
	known, err := o.deps.TokenStore.GetByDeployer(ctx, deployer)
	if err != nil {
		o.logger.Printf("[orchestrator] token cache read for %s failed: %v", deployer, err)
		return nil
	}
	return known
}

// discoveryFresh reports whether any cached row was stamped inside the
// staleness window. Verified rows are stamped at scan time and reused rows
// keep their original stamp, so the newest stamp works as a per-deployer
// discovery watermark: fresh means a full enumeration already ran recently.
func (o *Orchestrator) discoveryFresh(known []*domain.DeployerTokenRecord) bool {
	cutoff := o.clock().Unix() - int64(o.staleness/time.Second)
	for _, r := range known {
		if r.LastCheckedAt >= cutoff {
			return true
		}
	}
	return false
}

// mergeKnownTokens unions fresh discovery with the persistent cache, which
// may remember tokens beyond the discovery bound.
func mergeKnownTokens(listed *discovery.ListResult, known []*domain.DeployerTokenRecord) map[string]*domain.DeployerToken {
	tokens := make(map[string]*domain.DeployerToken, len(listed.Tokens)+len(known))
	for _, item := range listed.Tokens {
		tokens[item.Address] = &domain.DeployerToken{
			Address:   item.Address,
			Name:      item.Name,
			Symbol:    item.Symbol,
			Status:    domain.StatusUnknown,
			CreatedAt: item.CreatedAt,
		}
	}

	for _, r := range known {
		t, ok := tokens[r.Token]
		if !ok {
			t = &domain.DeployerToken{Address: r.Token, Status: domain.StatusUnknown}
			tokens[r.Token] = t
		}
		if t.Name == "" {
			t.Name = r.Name
		}
		if t.Symbol == "" {
			t.Symbol = r.Symbol
		}
		if t.CreatedAt == nil {
			t.CreatedAt = r.CreatedAt
		}
	}
	return tokens
}

// verifyStatuses bulk-checks liveness, reusing verified rows from the
// persistent cache where possible: dead is terminal and never re-checked,
// alive rows are trusted inside the staleness window, unknown rows always
// get a market call. The scanned mint itself is always re-checked so the
// result carries a live market snapshot. Returns the original stamps of the
// reused rows so persistence does not refresh them, and whether
// verification was incomplete.
func (o *Orchestrator) verifyStatuses(ctx context.Context, deployer, subjectMint string, tokens map[string]*domain.DeployerToken, known []*domain.DeployerTokenRecord) (map[string]int64, bool) {
	reusable := make(map[string]*domain.DeployerTokenRecord)
	if o.deps.TokenStore != nil && len(known) > 0 {
		staleCutoff := o.clock().Unix() - int64(o.staleness/time.Second)
		stale := make(map[string]bool)
		if records, err := o.deps.TokenStore.GetStale(ctx, deployer, staleCutoff); err == nil {
			for _, r := range records {
				stale[r.Token] = true
			}
		}
		for _, r := range known {
			if r.Token == subjectMint {
				continue
			}
			if r.Status == domain.StatusDead || (r.Status == domain.StatusAlive && !stale[r.Token]) {
				reusable[r.Token] = r
			}
		}
	}

	reusedAt := make(map[string]int64)
	var toCheck []string
	for mint, t := range tokens {
		if r, ok := reusable[mint]; ok {
			t.Status = r.Status
			t.LiquidityUSD = r.LiquidityUSD
			reusedAt[mint] = r.LastCheckedAt
			continue
		}
		toCheck = append(toCheck, mint)
	}
	sort.Strings(toCheck)

	if len(toCheck) == 0 {
		return reusedAt, false
	}

	start := o.clock()
	statuses, err := o.deps.Market.BulkTokenStatus(ctx, toCheck)
	observability.RecordUpstreamCall("dexscreener", o.clock().Sub(start).Seconds(), err)
	if err != nil {
		// Tokens stay unknown; the score degrades via the unverified count.
		o.logger.Printf("[orchestrator] bulk status for %s failed: %v", deployer, err)
		return reusedAt, true
	}

	for _, mint := range toCheck {
		t := tokens[mint]
		status, ok := statuses[mint]
		if !ok {
			t.Status = domain.StatusUnknown
			continue
		}
		if status.Alive {
			t.Status = domain.StatusAlive
		} else {
			t.Status = domain.StatusDead
		}
		t.LiquidityUSD = status.LiquidityUSD
		t.PriceUSD = status.PriceUSD
		t.Volume24hUSD = status.Volume24hUSD
		t.FDVUSD = status.FDVUSD
		if t.Name == "" {
			t.Name = domain.SanitizeName(status.Name)
		}
		if t.Symbol == "" {
			t.Symbol = domain.SanitizeSymbol(status.Symbol)
		}
		if t.CreatedAt == nil && status.PairCreatedAt != nil {
			t.CreatedAt = status.PairCreatedAt
		}
	}
	return reusedAt, false
}

// backfillMetadata names still-anonymous tokens via the indexed API,
// bounded and concurrent. Best-effort.
func (o *Orchestrator) backfillMetadata(ctx context.Context, tokens map[string]*domain.DeployerToken) {
	if o.deps.Metadata == nil {
		return
	}

	var nameless []*domain.DeployerToken
	for _, t := range tokens {
		if t.Name == "" {
			nameless = append(nameless, t)
		}
	}
	sort.Slice(nameless, func(i, j int) bool { return nameless[i].Address < nameless[j].Address })
	if len(nameless) > metadataFetchBound {
		nameless = nameless[:metadataFetchBound]
	}

	jobs := make(chan *domain.DeployerToken)
	var wg sync.WaitGroup
	for w := 0; w < metadataWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				asset, err := o.deps.Metadata.GetAsset(ctx, t.Address)
				if err != nil || asset == nil {
					continue
				}
				t.Name = domain.SanitizeName(asset.Name)
				t.Symbol = domain.SanitizeSymbol(asset.Symbol)
			}
		}()
	}
	for _, t := range nameless {
		jobs <- t
	}
	close(jobs)
	wg.Wait()
}

// fanOut runs the independent best-effort lookups in parallel. Failures
// leave the corresponding field nil and the confidence flag unset.
func (o *Orchestrator) fanOut(ctx context.Context, scan *domain.DeployerScan) {
	var wg sync.WaitGroup
	var mu sync.Mutex

	if o.deps.Funding != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			info, err := o.deps.Funding.Analyze(ctx, scan.Deployer)
			if err != nil {
				o.logger.Printf("[orchestrator] funding analysis for %s failed: %v", scan.Deployer, err)
				return
			}
			mu.Lock()
			scan.Funding = info
			scan.Confidence.ClusterChecked = true
			mu.Unlock()
		}()
	}

	if o.deps.Balance != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lamports, err := o.deps.Balance.GetBalance(ctx, scan.Deployer)
			if err != nil {
				return
			}
			sol := float64(lamports) / solana.LamportsPerSOL
			mu.Lock()
			scan.Stats.NativeBalance = &sol
			mu.Unlock()
		}()
	}

	if scan.Token != "" && o.deps.Risk != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			signals := o.deps.Risk.Check(ctx, scan.Token, scan.Deployer)
			mu.Lock()
			scan.TokenRisks = &signals
			scan.Confidence.TokenRisksChecked = true
			mu.Unlock()
		}()
	}

	if scan.Token != "" && scan.MarketData != nil && scan.MarketData.PriceUSD == nil {
		// The bulk pairs endpoint omits price for thin pairs; a dedicated
		// lookup often still has it.
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := o.clock()
			price, err := o.deps.Market.TokenPrice(ctx, scan.Token)
			observability.RecordUpstreamCall("dexscreener", o.clock().Sub(start).Seconds(), err)
			if err != nil || price == nil {
				return
			}
			mu.Lock()
			scan.MarketData.PriceUSD = price
			mu.Unlock()
		}()
	}

	if scan.Token != "" && o.deps.RiskReport != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := o.clock()
			report, err := o.deps.RiskReport.Report(ctx, scan.Token)
			observability.RecordUpstreamCall("riskreport", o.clock().Sub(start).Seconds(), err)
			if err != nil || report == nil {
				return
			}
			mu.Lock()
			for _, risk := range report.Risks {
				scan.Evidence = append(scan.Evidence, "report: "+risk)
			}
			mu.Unlock()
		}()
	}

	wg.Wait()
}

// classifyDeaths runs ledger classification on a bounded set of dead tokens
// and feeds rug recipients into the wallet network.
func (o *Orchestrator) classifyDeaths(ctx context.Context, deployer string, tokens map[string]*domain.DeployerToken) {
	if o.deps.Classifier == nil {
		return
	}

	var dead []*domain.DeployerToken
	for _, t := range tokens {
		if t.Status == domain.StatusDead && t.Death == nil {
			dead = append(dead, t)
		}
	}
	sort.Slice(dead, func(i, j int) bool { return dead[i].Address < dead[j].Address })
	if len(dead) > deathClassifyBound {
		dead = dead[:deathClassifyBound]
	}

	for _, t := range dead {
		result, err := o.deps.Classifier.Classify(ctx, t.Address, deployer)
		if err != nil {
			o.logger.Printf("[orchestrator] death classification for %s failed: %v", t.Address, err)
			continue
		}
		death := result.Death
		t.Death = &death
		if o.deps.Network != nil {
			for _, recipient := range result.Recipients {
				o.deps.Network.Record(deployer, recipient)
			}
		}
	}
}

// finishRiskSignals adds the deployer-level signals that need stats and
// funding context. Wallet scans carry only these.
func (o *Orchestrator) finishRiskSignals(scan *domain.DeployerScan, now int64) {
	if scan.TokenRisks == nil {
		if scan.Token != "" {
			// Per-token checks failed outright; leave everything unchecked.
			return
		}
		scan.TokenRisks = &domain.RiskSignals{}
	}

	var fundedAt *int64
	if scan.Funding != nil {
		fundedAt = scan.Funding.FundedAt
	}
	scan.TokenRisks.BurnerWallet = risk.BurnerWallet(fundedAt, scan.Stats.FirstDeployAt)
	scan.TokenRisks.DeployVelocityPerDay = risk.DeployVelocity(scan.Stats.TokenCount, scan.Stats.FirstDeployAt, now)
}

// persist upserts the token cache and appends the scan log. Rows reused
// from the cache keep their original stamp so the staleness window and the
// discovery watermark decay on schedule. Failures are logged, never
// surfaced: the scan itself already succeeded.
func (o *Orchestrator) persist(ctx context.Context, subject domain.ScanSubject, scan *domain.DeployerScan, reusedAt map[string]int64, source, caller string) {
	now := scan.ScannedAt

	if o.deps.TokenStore != nil {
		records := make([]*domain.DeployerTokenRecord, 0, len(scan.Tokens))
		for _, t := range scan.Tokens {
			checkedAt := now
			if ts, ok := reusedAt[t.Address]; ok {
				checkedAt = ts
			}
			records = append(records, &domain.DeployerTokenRecord{
				Deployer:      scan.Deployer,
				Token:         t.Address,
				Name:          t.Name,
				Symbol:        t.Symbol,
				Status:        t.Status,
				LiquidityUSD:  t.LiquidityUSD,
				CreatedAt:     t.CreatedAt,
				LastCheckedAt: checkedAt,
			})
		}
		start := o.clock()
		err := o.deps.TokenStore.UpsertBulk(ctx, records)
		observability.RecordDBQuery("postgres", "upsert_deployer_tokens", o.clock().Sub(start).Seconds(), err)
		if err != nil {
			o.logger.Printf("[orchestrator] token cache write for %s failed: %v", scan.Deployer, err)
		}
	}

	if o.deps.ScanLog != nil {
		start := o.clock()
		err := o.deps.ScanLog.Append(ctx, &domain.ScanLogEntry{
			Address:   subject.Address,
			Deployer:  scan.Deployer,
			Verdict:   scan.Verdict,
			Score:     scan.Score,
			Source:    source,
			Caller:    caller,
			ScannedAt: now,
		})
		observability.RecordDBQuery("clickhouse", "append_scan_log", o.clock().Sub(start).Seconds(), err)
		if err != nil {
			o.logger.Printf("[orchestrator] scan log append for %s failed: %v", subject.Address, err)
		}
	}
}

// marketSnapshot lifts the scanned token's fields into the top-level
// market section of the result.
func marketSnapshot(t *domain.DeployerToken) *domain.MarketData {
	if t == nil {
		return nil
	}
	liquidity := t.LiquidityUSD
	return &domain.MarketData{
		PriceUSD:      t.PriceUSD,
		LiquidityUSD:  &liquidity,
		Volume24hUSD:  t.Volume24hUSD,
		FDVUSD:        t.FDVUSD,
		PairCreatedAt: t.CreatedAt,
	}
}

// sortedTokens orders tokens newest first, unknown creation time last.
func sortedTokens(tokens map[string]*domain.DeployerToken) []domain.DeployerToken {
	out := make([]domain.DeployerToken, 0, len(tokens))
	for _, t := range tokens {
		t.Link = domain.DexScreenerURL(t.Address)
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.CreatedAt == nil && b.CreatedAt == nil:
			return a.Address < b.Address
		case a.CreatedAt == nil:
			return false
		case b.CreatedAt == nil:
			return true
		case *a.CreatedAt != *b.CreatedAt:
			return *a.CreatedAt > *b.CreatedAt
		default:
			return a.Address < b.Address
		}
	})
	return out
}

// buildStats aggregates token outcomes. Lifespan averages over alive tokens
// with a known creation time; death times are not knowable from market data.
func buildStats(tokens []domain.DeployerToken, now int64, nativeBalance *float64) domain.DeployerStats {
	stats := domain.DeployerStats{
		TokenCount:    len(tokens),
		NativeBalance: nativeBalance,
	}

	var lifespanSum float64
	var lifespanN int
	for _, t := range tokens {
		switch t.Status {
		case domain.StatusAlive:
			stats.AliveCount++
		case domain.StatusDead:
			stats.DeadCount++
		default:
			stats.UnverifiedCount++
		}
		if t.CreatedAt != nil {
			if stats.FirstDeployAt == nil || *t.CreatedAt < *stats.FirstDeployAt {
				created := *t.CreatedAt
				stats.FirstDeployAt = &created
			}
			if t.Status == domain.StatusAlive {
				lifespanSum += float64(now-*t.CreatedAt) / 86400
				lifespanN++
			}
		}
	}

	stats.VerifiedCount = stats.AliveCount + stats.DeadCount
	if stats.VerifiedCount > 0 {
		stats.DeathRate = float64(stats.DeadCount) / float64(stats.VerifiedCount)
	}
	if stats.TokenCount > 0 {
		stats.RugRate = float64(stats.DeadCount+stats.UnverifiedCount) / float64(stats.TokenCount)
	}
	if lifespanN > 0 {
		stats.AvgLifespanDays = lifespanSum / float64(lifespanN)
	}
	return stats
}

// buildEvidence renders the human-readable findings, stats first, then any
// third-party report lines collected during fan-out.
func buildEvidence(scan *domain.DeployerScan) []string {
	s := scan.Stats
	evidence := []string{fmt.Sprintf("%d of %d verified tokens dead (%d unverified)",
		s.DeadCount, s.VerifiedCount, s.UnverifiedCount)}

	shown := 0
	for _, t := range scan.Tokens {
		if t.Status != domain.StatusDead || shown >= evidenceTokenLimit {
			continue
		}
		line := "dead token " + t.Address
		if t.Name != "" {
			line = fmt.Sprintf("dead token %s (%s)", t.Name, t.Address)
		}
		if t.Death != nil {
			line += " [" + string(t.Death.Type) + "]"
		}
		evidence = append(evidence, line)
		shown++
	}

	if f := scan.Funding; f != nil {
		switch {
		case f.FromKnownExchange:
			evidence = append(evidence, "funded from "+f.ExchangeName+" hot wallet")
		case f.SourceWallet != nil && f.ClusterSize > 0:
			evidence = append(evidence, fmt.Sprintf("funder %s also funded %d other deployers (%d tokens, %d dead)",
				*f.SourceWallet, f.ClusterSize, f.ClusterTokens, f.ClusterDeaths))
		case f.SourceWallet == nil:
			evidence = append(evidence, "funding source could not be traced")
		}
		if f.NetworkRiskTier == domain.TierHigh {
			evidence = append(evidence, "deployer operates a high-risk wallet network")
		}
	}

	return append(evidence, scan.Evidence...)
}

func clusterSize(f *domain.FundingInfo) int {
	if f == nil {
		return 0
	}
	return f.ClusterSize
}

func riskOrEmpty(r *domain.RiskSignals) domain.RiskSignals {
	if r == nil {
		return domain.RiskSignals{}
	}
	return *r
}

func errorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidAddress):
		return "invalid_address"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return "upstream_unavailable"
	default:
		return "internal"
	}
}
