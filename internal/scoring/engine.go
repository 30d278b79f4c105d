// Package scoring maps aggregated deployer signals to a 0-100 reputation
// score, a three-way verdict, and a human-readable breakdown. The engine is
// a pure function: deterministic, side-effect free, never panics on
// pre-validated inputs.
package scoring

import (
	"fmt"
	"math"

	"solana-rugscan/internal/domain"
)

// Params are the calibratable scoring constants. The shape of the formula
// (Bayesian shrinkage, log dampening, monotonic cluster penalty) is fixed;
// the constants are tuned.
type Params struct {
	// PriorWeight is the pseudo-count of the 0.5-centered death prior.
	PriorWeight float64

	// Component weights. Components sum to at most 100.
	DeathWeight    float64
	CountWeight    float64
	LifespanWeight float64
	ClusterWeight  float64

	// Token-count dampening: penalty factor is
	// log10(n) * (CountDampenBase + CountDampenDeathScale*deathRate).
	CountDampenBase       float64
	CountDampenDeathScale float64

	// LifespanFullDays is the average lifespan earning the full weight.
	LifespanFullDays float64

	// ClusterPenaltyPer is points lost per co-funded deployer.
	ClusterPenaltyPer float64

	// Fixed risk deductions.
	MintDeduction          float64
	FreezeDeduction        float64
	ConcentrationDeduction float64
	BundledDeduction       float64
	BurnerDeduction        float64

	// ConcentrationThresholdPct triggers the concentration deduction.
	ConcentrationThresholdPct float64

	// Verdict thresholds.
	CleanThreshold      int
	SuspiciousThreshold int

	// SerialMinDeadVerified is the eligibility guard: SERIAL_RUGGER
	// requires at least this many verified dead tokens.
	SerialMinDeadVerified int
}

// DefaultParams returns the production calibration.
func DefaultParams() Params {
	return Params{
		PriorWeight:               2,
		DeathWeight:               40,
		CountWeight:               20,
		LifespanWeight:            20,
		ClusterWeight:             20,
		CountDampenBase:           0.3,
		CountDampenDeathScale:     1.8,
		LifespanFullDays:          60,
		ClusterPenaltyPer:         4,
		MintDeduction:             10,
		FreezeDeduction:           5,
		ConcentrationDeduction:    5,
		BundledDeduction:          5,
		BurnerDeduction:           10,
		ConcentrationThresholdPct: 80,
		CleanThreshold:            60,
		SuspiciousThreshold:       30,
		SerialMinDeadVerified:     3,
	}
}

// Input are the pre-validated aggregate signals for one deployer.
// Counts are non-negative; DeadCount <= VerifiedCount <= TokenCount.
type Input struct {
	TokenCount      int
	VerifiedCount   int
	UnverifiedCount int
	DeadCount       int // verified dead only
	AvgLifespanDays float64
	ClusterSize     int
	Risk            domain.RiskSignals
}

// Engine scores deployers with a fixed parameter set.
type Engine struct {
	params Params
}

// NewEngine creates an Engine. Zero-value params fall back to defaults.
func NewEngine(params Params) *Engine {
	if params.DeathWeight == 0 {
		params = DefaultParams()
	}
	return &Engine{params: params}
}

// Score computes the breakdown and verdict for the input.
func (e *Engine) Score(in Input) (domain.ScoreBreakdown, domain.Verdict) {
	p := e.params

	deathRate := 0.0
	if in.VerifiedCount > 0 {
		deathRate = float64(in.DeadCount) / float64(in.VerifiedCount)
	}

	// Death-rate component with Bayesian shrinkage toward a 0.5 prior:
	// small verified samples regress to the prior instead of letting one
	// early failure destroy the score.
	posterior := (float64(in.DeadCount) + p.PriorWeight*0.5) /
		(float64(in.VerifiedCount) + p.PriorWeight)
	deathComp := (1 - posterior) * p.DeathWeight

	// Token-count component: log dampening so the 10th token matters far
	// less than the 2nd, scaled by the death rate so a prolific-but-clean
	// deployer is penalized less than a prolific-and-lethal one.
	countComp := p.CountWeight
	if in.TokenCount > 1 {
		factor := math.Log10(float64(in.TokenCount)) *
			(p.CountDampenBase + p.CountDampenDeathScale*deathRate)
		if factor > 1 {
			factor = 1
		}
		countComp = p.CountWeight * (1 - factor)
	}

	// Lifespan component: monotonic in average pair age, capped.
	lifespanComp := in.AvgLifespanDays * p.LifespanWeight / p.LifespanFullDays
	if lifespanComp > p.LifespanWeight {
		lifespanComp = p.LifespanWeight
	}
	if lifespanComp < 0 {
		lifespanComp = 0
	}

	// Cluster component: monotonically decreasing in cluster size.
	clusterComp := p.ClusterWeight - p.ClusterPenaltyPer*float64(in.ClusterSize)
	if clusterComp < 0 {
		clusterComp = 0
	}

	deductions, notes := e.deductions(in.Risk)

	raw := deathComp + countComp + lifespanComp + clusterComp - deductions
	score := int(math.Round(raw))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	notes = append(notes,
		fmt.Sprintf("death rate %.0f%% over %d verified tokens (posterior %.2f)",
			deathRate*100, in.VerifiedCount, posterior),
		fmt.Sprintf("%d tokens total, %d unverified", in.TokenCount, in.UnverifiedCount),
	)
	if in.ClusterSize > 0 {
		notes = append(notes, fmt.Sprintf("%d co-funded deployers in cluster", in.ClusterSize))
	}

	breakdown := domain.ScoreBreakdown{
		DeathRateComponent:  round2(deathComp),
		TokenCountComponent: round2(countComp),
		LifespanComponent:   round2(lifespanComp),
		ClusterComponent:    round2(clusterComp),
		RiskDeductions:      round2(deductions),
		Score:               score,
		Notes:               notes,
	}

	return breakdown, e.verdict(score, in.DeadCount)
}

// deductions sums the independent fixed risk deductions.
func (e *Engine) deductions(risk domain.RiskSignals) (float64, []string) {
	p := e.params
	total := 0.0
	var notes []string

	if risk.MintAuthorityActive != nil && *risk.MintAuthorityActive {
		total += p.MintDeduction
		notes = append(notes, fmt.Sprintf("mint authority active (-%.0f)", p.MintDeduction))
	}
	if risk.FreezeAuthorityActive != nil && *risk.FreezeAuthorityActive {
		total += p.FreezeDeduction
		notes = append(notes, fmt.Sprintf("freeze authority active (-%.0f)", p.FreezeDeduction))
	}
	if risk.TopHolderPct != nil && *risk.TopHolderPct > p.ConcentrationThresholdPct {
		total += p.ConcentrationDeduction
		notes = append(notes, fmt.Sprintf("top holder %.1f%% (-%.0f)", *risk.TopHolderPct, p.ConcentrationDeduction))
	}
	if risk.BundledLaunch != nil && *risk.BundledLaunch {
		total += p.BundledDeduction
		notes = append(notes, fmt.Sprintf("bundled launch detected (-%.0f)", p.BundledDeduction))
	}
	if risk.BurnerWallet != nil && *risk.BurnerWallet {
		total += p.BurnerDeduction
		notes = append(notes, fmt.Sprintf("burner wallet funding pattern (-%.0f)", p.BurnerDeduction))
	}

	return total, notes
}

// verdict maps score to the three-way verdict. SERIAL_RUGGER is gated on
// the verified dead-token count: 1-2 dead tokens can never produce a
// serial label, no matter the score.
func (e *Engine) verdict(score, deadVerified int) domain.Verdict {
	switch {
	case score >= e.params.CleanThreshold:
		return domain.VerdictClean
	case score >= e.params.SuspiciousThreshold:
		return domain.VerdictSuspicious
	case deadVerified >= e.params.SerialMinDeadVerified:
		return domain.VerdictSerialRugger
	default:
		return domain.VerdictSuspicious
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
