package scoring

import (
	"testing"

	"solana-rugscan/internal/domain"
)

func boolPtr(v bool) *bool      { return &v }
func f64Ptr(v float64) *float64 { return &v }

func score(t *testing.T, in Input) (domain.ScoreBreakdown, domain.Verdict) {
	t.Helper()
	return NewEngine(DefaultParams()).Score(in)
}

func TestScore_ClampedToRange(t *testing.T) {
	engine := NewEngine(DefaultParams())
	allRisk := domain.RiskSignals{
		MintAuthorityActive:   boolPtr(true),
		FreezeAuthorityActive: boolPtr(true),
		TopHolderPct:          f64Ptr(99),
		BundledLaunch:         boolPtr(true),
		BurnerWallet:          boolPtr(true),
	}

	for tokens := 0; tokens <= 200; tokens += 7 {
		for dead := 0; dead <= tokens; dead += 5 {
			for _, cluster := range []int{0, 1, 5, 20} {
				for _, risk := range []domain.RiskSignals{{}, allRisk} {
					b, _ := engine.Score(Input{
						TokenCount:      tokens,
						VerifiedCount:   tokens,
						DeadCount:       dead,
						AvgLifespanDays: float64(tokens % 90),
						ClusterSize:     cluster,
						Risk:            risk,
					})
					if b.Score < 0 || b.Score > 100 {
						t.Fatalf("score %d out of range for tokens=%d dead=%d cluster=%d",
							b.Score, tokens, dead, cluster)
					}
				}
			}
		}
	}
}

func TestScore_CleanSingleTokenDeployer(t *testing.T) {
	// One token, alive for two months, no risk flags: unambiguously clean.
	b, verdict := score(t, Input{
		TokenCount:      1,
		VerifiedCount:   1,
		DeadCount:       0,
		AvgLifespanDays: 60,
	})

	if verdict != domain.VerdictClean {
		t.Errorf("expected CLEAN, got %s (score %d)", verdict, b.Score)
	}
	if b.Score < 75 {
		t.Errorf("clean single-token deployer should score >= 75, got %d", b.Score)
	}
}

func TestScore_SerialRuggerEligibilityGuard(t *testing.T) {
	// 1 or 2 verified dead tokens can never produce SERIAL_RUGGER, no
	// matter how bad the rest of the signals are.
	worst := domain.RiskSignals{
		MintAuthorityActive:   boolPtr(true),
		FreezeAuthorityActive: boolPtr(true),
		TopHolderPct:          f64Ptr(95),
		BundledLaunch:         boolPtr(true),
		BurnerWallet:          boolPtr(true),
	}

	for dead := 1; dead <= 2; dead++ {
		b, verdict := score(t, Input{
			TokenCount:    dead,
			VerifiedCount: dead,
			DeadCount:     dead,
			ClusterSize:   10,
			Risk:          worst,
		})
		if verdict == domain.VerdictSerialRugger {
			t.Errorf("%d dead tokens must not yield SERIAL_RUGGER (score %d)", dead, b.Score)
		}
	}

	b, verdict := score(t, Input{
		TokenCount:    3,
		VerifiedCount: 3,
		DeadCount:     3,
	})
	if verdict != domain.VerdictSerialRugger {
		t.Errorf("3/3 verified dead should yield SERIAL_RUGGER, got %s (score %d)", verdict, b.Score)
	}
	if b.Score >= 30 {
		t.Errorf("3/3 dead must score below the suspicious floor, got %d", b.Score)
	}
}

func TestScore_BayesianSmallSampleProtection(t *testing.T) {
	// One dead token out of two must not score worse than a 50% death rate
	// proven over a hundred tokens: the posterior shrinks small samples
	// toward the prior while the count dampening punishes volume.
	small, _ := score(t, Input{TokenCount: 2, VerifiedCount: 2, DeadCount: 1})
	large, _ := score(t, Input{TokenCount: 100, VerifiedCount: 100, DeadCount: 50})

	if small.Score < large.Score {
		t.Errorf("small sample (score %d) should not score below proven 50%% at scale (score %d)",
			small.Score, large.Score)
	}
	if small.DeathRateComponent != large.DeathRateComponent {
		// Identical empirical rate but different sample sizes still share
		// the same posterior only when the counts scale exactly; this pair
		// does: (1+1)/(2+2) == (50+1)/(100+2) == 0.5.
		t.Errorf("both posteriors should sit at the prior: %.2f vs %.2f",
			small.DeathRateComponent, large.DeathRateComponent)
	}
}

func TestScore_RiskDeductionsAreFixed(t *testing.T) {
	base := Input{TokenCount: 1, VerifiedCount: 1, AvgLifespanDays: 60}

	clean, _ := score(t, base)

	flagged := base
	flagged.Risk = domain.RiskSignals{
		MintAuthorityActive:   boolPtr(true),
		FreezeAuthorityActive: boolPtr(true),
		TopHolderPct:          f64Ptr(85),
		BundledLaunch:         boolPtr(true),
	}
	b, _ := score(t, flagged)

	if b.RiskDeductions != 25 {
		t.Errorf("mint+freeze+concentration+bundled should deduct exactly 25, got %.2f", b.RiskDeductions)
	}
	if clean.Score-b.Score != 25 {
		t.Errorf("deductions should subtract point-for-point: %d -> %d", clean.Score, b.Score)
	}
}

func TestScore_ConcentrationThreshold(t *testing.T) {
	at := Input{TokenCount: 1, VerifiedCount: 1, Risk: domain.RiskSignals{TopHolderPct: f64Ptr(80)}}
	above := Input{TokenCount: 1, VerifiedCount: 1, Risk: domain.RiskSignals{TopHolderPct: f64Ptr(80.1)}}

	bAt, _ := score(t, at)
	bAbove, _ := score(t, above)

	if bAt.RiskDeductions != 0 {
		t.Errorf("exactly 80%% should not trigger the deduction, got %.2f", bAt.RiskDeductions)
	}
	if bAbove.RiskDeductions != 5 {
		t.Errorf("above 80%% should deduct 5, got %.2f", bAbove.RiskDeductions)
	}
}

func TestScore_ClusterMonotonicity(t *testing.T) {
	prev := 101
	for size := 0; size <= 10; size++ {
		b, _ := score(t, Input{
			TokenCount:    1,
			VerifiedCount: 1,
			ClusterSize:   size,
		})
		if b.Score > prev {
			t.Errorf("score must not increase with cluster size: %d -> %d at size %d",
				prev, b.Score, size)
		}
		prev = b.Score
	}
}

func TestScore_UnverifiedExcludedFromDeathRate(t *testing.T) {
	// Unverified tokens widen the count component's base but never enter
	// the death-rate posterior.
	few, _ := score(t, Input{TokenCount: 4, VerifiedCount: 4, DeadCount: 2})
	many, _ := score(t, Input{TokenCount: 4, VerifiedCount: 4, UnverifiedCount: 0, DeadCount: 2})

	if few.DeathRateComponent != many.DeathRateComponent {
		t.Errorf("death components should match: %.2f vs %.2f",
			few.DeathRateComponent, many.DeathRateComponent)
	}

	withUnverified, _ := score(t, Input{TokenCount: 10, VerifiedCount: 4, UnverifiedCount: 6, DeadCount: 2})
	if withUnverified.DeathRateComponent != few.DeathRateComponent {
		t.Errorf("unverified tokens must not move the death component: %.2f vs %.2f",
			withUnverified.DeathRateComponent, few.DeathRateComponent)
	}
}

func TestScore_VerdictThresholds(t *testing.T) {
	engine := NewEngine(DefaultParams())

	cases := []struct {
		name string
		in   Input
		want domain.Verdict
	}{
		{
			name: "prolific and clean stays clean",
			in:   Input{TokenCount: 20, VerifiedCount: 20, DeadCount: 0, AvgLifespanDays: 90},
			want: domain.VerdictClean,
		},
		{
			name: "half-dead portfolio is suspicious",
			in:   Input{TokenCount: 6, VerifiedCount: 6, DeadCount: 2, AvgLifespanDays: 20},
			want: domain.VerdictSuspicious,
		},
		{
			name: "graveyard deployer is serial",
			in:   Input{TokenCount: 12, VerifiedCount: 10, UnverifiedCount: 2, DeadCount: 9, ClusterSize: 5},
			want: domain.VerdictSerialRugger,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, verdict := engine.Score(tc.in)
			if verdict != tc.want {
				t.Errorf("expected %s, got %s (score %d, breakdown %+v)", tc.want, verdict, b.Score, b)
			}
		})
	}
}

func TestScore_BreakdownSumsToScore(t *testing.T) {
	in := Input{
		TokenCount:      8,
		VerifiedCount:   6,
		UnverifiedCount: 2,
		DeadCount:       3,
		AvgLifespanDays: 15,
		ClusterSize:     2,
		Risk:            domain.RiskSignals{MintAuthorityActive: boolPtr(true)},
	}
	b, _ := score(t, in)

	sum := b.DeathRateComponent + b.TokenCountComponent + b.LifespanComponent +
		b.ClusterComponent - b.RiskDeductions
	diff := float64(b.Score) - sum
	if diff > 0.51 || diff < -0.51 {
		t.Errorf("score %d should be the rounded component sum %.2f", b.Score, sum)
	}
	if len(b.Notes) == 0 {
		t.Error("breakdown should carry explanatory notes")
	}
}
