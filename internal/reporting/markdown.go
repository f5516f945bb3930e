package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RenderMarkdown renders a report as Markdown.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	title := r.Title
	if title == "" {
		title = "Dividend Projection"
	}

	// Header
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	if r.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run: `%s` (scenario `%s`, %s)\n\n", r.RunID, r.ScenarioID, r.Status))
	}

	// Assumptions
	sb.WriteString("## Assumptions\n\n")
	sb.WriteString("| Assumption | Value |\n")
	sb.WriteString("|------------|-------|\n")
	for _, a := range r.Assumptions {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", a.Name, a.Value))
	}
	sb.WriteString("\n")

	// Summary
	s := r.Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Periods | %d (%s years) |\n", s.Periods, s.Years.String()))
	sb.WriteString(fmt.Sprintf("| Final Value | $%s |\n", s.FinalValue.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("| Final Shares | %s |\n", s.FinalShares.StringFixed(4)))
	sb.WriteString(fmt.Sprintf("| Annual Income | $%s |\n", s.FinalAnnualIncome.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("| Monthly Income | $%s |\n", s.FinalMonthlyIncome.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("| Total Invested | $%s |\n", s.TotalInvested.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("| Total Dividends | $%s |\n", s.TotalDividends.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("| Tax Withheld | $%s |\n", s.TotalTaxWithheld.StringFixed(2)))
	if s.TotalDistributed.IsPositive() {
		sb.WriteString(fmt.Sprintf("| Dividends Paid Out | $%s |\n", s.TotalDistributed.StringFixed(2)))
	}
	if s.TotalWithdrawals.IsPositive() {
		sb.WriteString(fmt.Sprintf("| Withdrawals | $%s |\n", s.TotalWithdrawals.StringFixed(2)))
	}
	sb.WriteString(fmt.Sprintf("| Total Return | $%s (%s%%) |\n", s.TotalReturn.StringFixed(2), s.TotalReturnPct.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("| Annualized Return | %s |\n", formatPct(s.AnnualizedPct)))
	sb.WriteString(fmt.Sprintf("| Yield on Cost | %s |\n", formatPct(s.YieldOnCostPct)))
	sb.WriteString(fmt.Sprintf("| Final Phase | %s |\n", s.FinalPhase))
	sb.WriteString("\n")

	// Year-by-year
	sb.WriteString("## Year by Year\n\n")
	if len(r.Yearly) == 0 {
		sb.WriteString("No yearly snapshots available.\n\n")
	} else {
		sb.WriteString("| Year | Value | Annual Income | Contributions | Dividends | Invested | Price Gain | Yield on Cost |\n")
		sb.WriteString("|------|-------|---------------|---------------|-----------|----------|------------|---------------|\n")
		for _, y := range r.Yearly {
			sb.WriteString(fmt.Sprintf("| %d | $%s | $%s | $%s | $%s | $%s | $%s | %s |\n",
				y.Year,
				y.Value.StringFixed(2),
				y.AnnualIncome.StringFixed(2),
				y.ContributionsThisYear.StringFixed(2),
				y.DividendsThisYear.StringFixed(2),
				y.InvestedCapital.StringFixed(2),
				y.PriceGain.StringFixed(2),
				formatPct(y.YieldOnCostPct),
			))
		}
		sb.WriteString("\n")
	}

	// Milestones
	sb.WriteString("## Milestones\n\n")
	if len(r.Milestones) == 0 {
		sb.WriteString("No milestones reached.\n")
	} else {
		sb.WriteString("| Milestone | Period | Year | Value |\n")
		sb.WriteString("|-----------|--------|------|-------|\n")
		for _, m := range r.Milestones {
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | $%s |\n", m.Label, m.Period, m.Year, m.Value.StringFixed(2)))
		}
	}

	return sb.String()
}

func formatPct(p *decimal.Decimal) string {
	if p == nil {
		return "n/a"
	}
	return p.StringFixed(2) + "%"
}
