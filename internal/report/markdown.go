// Package report renders scan results for humans: a Markdown document with
// the verdict up top and the supporting evidence below.
package report

import (
	"fmt"
	"strings"
	"time"

	"solana-rugscan/internal/domain"
)

// tokenTableLimit caps the token history table; prolific deployers get a
// truncation note instead of a thousand rows.
const tokenTableLimit = 25

// RenderMarkdown renders a scan as a Markdown string.
func RenderMarkdown(scan *domain.DeployerScan) string {
	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("# Deployer Report: %s\n\n", verdictBanner(scan.Verdict)))
	sb.WriteString(fmt.Sprintf("**Score: %d/100**\n\n", scan.Score))
	if scan.Token != "" {
		sb.WriteString(fmt.Sprintf("Token: [`%s`](%s)\n\n", scan.Token, domain.DexScreenerURL(scan.Token)))
	}
	sb.WriteString(fmt.Sprintf("Deployer: [`%s`](%s)\n\n", scan.Deployer, domain.ExplorerURL(scan.Deployer)))
	sb.WriteString(fmt.Sprintf("Scanned: %s\n\n", time.Unix(scan.ScannedAt, 0).UTC().Format(time.RFC3339)))

	// History
	sb.WriteString("## Track Record\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Tokens deployed | %d |\n", scan.Stats.TokenCount))
	sb.WriteString(fmt.Sprintf("| Verified | %d |\n", scan.Stats.VerifiedCount))
	sb.WriteString(fmt.Sprintf("| Alive | %d |\n", scan.Stats.AliveCount))
	sb.WriteString(fmt.Sprintf("| Dead | %d |\n", scan.Stats.DeadCount))
	sb.WriteString(fmt.Sprintf("| Death rate | %.0f%% |\n", scan.Stats.DeathRate*100))
	if scan.Stats.AvgLifespanDays > 0 {
		sb.WriteString(fmt.Sprintf("| Avg lifespan | %.1f days |\n", scan.Stats.AvgLifespanDays))
	}
	if scan.Stats.NativeBalance != nil {
		sb.WriteString(fmt.Sprintf("| Wallet balance | %.4f SOL |\n", *scan.Stats.NativeBalance))
	}
	sb.WriteString("\n")

	// Score breakdown
	sb.WriteString("## Score Breakdown\n\n")
	sb.WriteString("| Component | Points |\n")
	sb.WriteString("|-----------|--------|\n")
	b := scan.ScoreBreakdown
	sb.WriteString(fmt.Sprintf("| Survival | %.2f |\n", b.DeathRateComponent))
	sb.WriteString(fmt.Sprintf("| Track length | %.2f |\n", b.TokenCountComponent))
	sb.WriteString(fmt.Sprintf("| Lifespan | %.2f |\n", b.LifespanComponent))
	sb.WriteString(fmt.Sprintf("| Cluster | %.2f |\n", b.ClusterComponent))
	sb.WriteString(fmt.Sprintf("| Risk deductions | -%.2f |\n", b.RiskDeductions))
	sb.WriteString(fmt.Sprintf("| **Total** | **%d** |\n", b.Score))
	sb.WriteString("\n")
	for _, note := range b.Notes {
		sb.WriteString(fmt.Sprintf("- %s\n", note))
	}
	if len(b.Notes) > 0 {
		sb.WriteString("\n")
	}

	// Token history
	sb.WriteString("## Token History\n\n")
	if len(scan.Tokens) > 0 {
		sb.WriteString("| Token | Status | Liquidity | Created | Death |\n")
		sb.WriteString("|-------|--------|-----------|---------|-------|\n")
		shown := scan.Tokens
		if len(shown) > tokenTableLimit {
			shown = shown[:tokenTableLimit]
		}
		for _, t := range shown {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
				tokenLabel(t), statusLabel(t.Status),
				liquidityLabel(t.LiquidityUSD), createdLabel(t.CreatedAt), deathLabel(t.Death)))
		}
		if len(scan.Tokens) > tokenTableLimit {
			sb.WriteString(fmt.Sprintf("\n_...and %d more._\n", len(scan.Tokens)-tokenTableLimit))
		}
	} else {
		sb.WriteString("No tokens found for this deployer.\n")
	}
	sb.WriteString("\n")

	// Funding
	if f := scan.Funding; f != nil {
		sb.WriteString("## Funding\n\n")
		switch {
		case f.FromKnownExchange:
			sb.WriteString(fmt.Sprintf("Funded from **%s** hot wallet.\n", f.ExchangeName))
		case f.SourceWallet != nil:
			sb.WriteString(fmt.Sprintf("Funded by [`%s`](%s)", *f.SourceWallet, domain.ExplorerURL(*f.SourceWallet)))
			if f.FundedAt != nil {
				sb.WriteString(fmt.Sprintf(" at %s", time.Unix(*f.FundedAt, 0).UTC().Format(time.RFC3339)))
			}
			sb.WriteString(".\n")
			if f.ClusterSize > 0 {
				sb.WriteString(fmt.Sprintf("\nSame funder seeded **%d** other deployers: %d tokens, %d dead.\n",
					f.ClusterSize, f.ClusterTokens, f.ClusterDeaths))
			}
		default:
			sb.WriteString("Funding source could not be traced.\n")
		}
		if f.NetworkRiskTier != "" && f.NetworkRiskTier != domain.TierLow {
			sb.WriteString(fmt.Sprintf("\nWallet network risk: **%s**.\n", f.NetworkRiskTier))
		}
		sb.WriteString("\n")
	}

	// Risk signals
	if r := scan.TokenRisks; r != nil {
		var flags []string
		if r.MintAuthorityActive != nil && *r.MintAuthorityActive {
			flags = append(flags, "mint authority still active")
		}
		if r.FreezeAuthorityActive != nil && *r.FreezeAuthorityActive {
			flags = append(flags, "freeze authority still active")
		}
		if r.TopHolderPct != nil {
			if flag := concentrationFlag(*r.TopHolderPct); flag != "" {
				flags = append(flags, flag)
			}
		}
		if r.BundledLaunch != nil && *r.BundledLaunch {
			flags = append(flags, "bundled launch (coordinated first buys)")
		}
		if r.BurnerWallet != nil && *r.BurnerWallet {
			flags = append(flags, "deployer looks like a burner wallet")
		}
		if r.DeployVelocityPerDay != nil && *r.DeployVelocityPerDay > 1 {
			flags = append(flags, fmt.Sprintf("deploying %.1f tokens/day", *r.DeployVelocityPerDay))
		}
		if len(flags) > 0 {
			sb.WriteString("## Risk Flags\n\n")
			for _, flag := range flags {
				sb.WriteString(fmt.Sprintf("- %s\n", flag))
			}
			sb.WriteString("\n")
		}
	}

	// Evidence
	if len(scan.Evidence) > 0 {
		sb.WriteString("## Evidence\n\n")
		for _, line := range scan.Evidence {
			sb.WriteString(fmt.Sprintf("- %s\n", line))
		}
		sb.WriteString("\n")
	}

	// Confidence footer
	sb.WriteString("---\n\n")
	sb.WriteString(fmt.Sprintf("_%d of %d tokens verified (method: %s)._",
		scan.Confidence.TokensVerified,
		scan.Confidence.TokensVerified+scan.Confidence.TokensUnverified,
		scan.Confidence.DeployerMethod))
	if scan.Confidence.TokensMayBeIncomplete {
		sb.WriteString(" _Token list may be incomplete._")
	}
	if !scan.Confidence.ClusterChecked {
		sb.WriteString(" _Funding cluster unchecked._")
	}
	sb.WriteString("\n")

	return sb.String()
}

func verdictBanner(v domain.Verdict) string {
	switch v {
	case domain.VerdictClean:
		return "✅ CLEAN"
	case domain.VerdictSuspicious:
		return "⚠️ SUSPICIOUS"
	case domain.VerdictSerialRugger:
		return "🚨 SERIAL RUGGER"
	default:
		return string(v)
	}
}

// concentrationFlag grades the top holder's share into severity bands. The
// score applies its fixed deduction separately; the bands only inform the
// reader how bad the distribution is.
func concentrationFlag(pct float64) string {
	switch {
	case pct > 85:
		return fmt.Sprintf("top holder owns %.1f%% of supply (near-total control)", pct)
	case pct > 70:
		return fmt.Sprintf("top holder owns %.1f%% of supply (critical concentration)", pct)
	case pct > 50:
		return fmt.Sprintf("top holder owns %.1f%% of supply (majority holder)", pct)
	default:
		return ""
	}
}

func tokenLabel(t domain.DeployerToken) string {
	short := t.Address
	if len(short) > 8 {
		short = short[:4] + ".." + short[len(short)-4:]
	}
	label := short
	if t.Name != "" {
		label = t.Name + " (" + short + ")"
	}
	if t.Link != "" {
		return fmt.Sprintf("[%s](%s)", label, t.Link)
	}
	return label
}

func statusLabel(s domain.TokenStatus) string {
	switch s {
	case domain.StatusAlive:
		return "🟢 alive"
	case domain.StatusDead:
		return "💀 dead"
	default:
		return "❔ unknown"
	}
}

func liquidityLabel(usd float64) string {
	switch {
	case usd >= 1_000_000:
		return fmt.Sprintf("$%.1fM", usd/1_000_000)
	case usd >= 1_000:
		return fmt.Sprintf("$%.1fK", usd/1_000)
	case usd > 0:
		return fmt.Sprintf("$%.0f", usd)
	default:
		return "-"
	}
}

func createdLabel(createdAt *int64) string {
	if createdAt == nil {
		return "-"
	}
	return time.Unix(*createdAt, 0).UTC().Format("2006-01-02")
}

func deathLabel(d *domain.DeathInfo) string {
	if d == nil {
		return "-"
	}
	return string(d.Type)
}
