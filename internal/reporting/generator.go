package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"dividend-projection-lab/internal/domain"
	"dividend-projection-lab/internal/metrics"
	"dividend-projection-lab/internal/storage"
)

// Generator produces reports from simulation output or stored runs.
type Generator struct {
	scenarioStore storage.ScenarioStore
	runStore      storage.RunStore
	aggregator    *metrics.Aggregator
	now           func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
// Stores may be nil when only Build is used.
func NewGenerator(
	scenarioStore storage.ScenarioStore,
	runStore storage.RunStore,
	aggregator *metrics.Aggregator,
) *Generator {
	return &Generator{
		scenarioStore: scenarioStore,
		runStore:      runStore,
		aggregator:    aggregator,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a report for a stored run.
func (g *Generator) Generate(ctx context.Context, runID string) (*Report, error) {
	if g.runStore == nil || g.aggregator == nil {
		return nil, fmt.Errorf("generator has no stores configured")
	}

	run, err := g.runStore.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}

	scenario, err := g.scenarioStore.GetByID(ctx, run.ScenarioID)
	if err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", run.ScenarioID, err)
	}

	sim, err := g.aggregator.ComputeReport(ctx, runID)
	if err != nil {
		return nil, err
	}

	report := g.Build(scenario.Name, sim)
	report.RunID = run.ID
	report.ScenarioID = scenario.ID
	report.Status = run.Status
	return report, nil
}

// Build converts a simulation report into its rendered form.
func (g *Generator) Build(title string, sim *domain.SimulationReport) *Report {
	return &Report{
		GeneratedAt: g.now(),
		Title:       title,
		Status:      domain.RunStatusCompleted,
		Assumptions: buildAssumptions(sim.Config),
		Summary:     buildSummary(sim.Summary),
		Yearly:      buildYearly(sim.YearlySnapshots),
		Milestones:  buildMilestones(sim.Milestones),
		Trace:       sim.Trace,
	}
}

func buildAssumptions(cfg domain.SimulationConfig) []AssumptionRow {
	price := cfg.InitialSharePrice
	if price == 0 {
		price = domain.DefaultSharePrice
	}
	freq := cfg.Frequency
	if freq == "" {
		freq = domain.FrequencyMonthly
	}

	rows := []AssumptionRow{
		{Name: "Initial principal", Value: "$" + Money(cfg.InitialPrincipal).StringFixed(2)},
		{Name: "Initial share price", Value: "$" + Money(price).StringFixed(2)},
		{Name: "Dividend yield", Value: Percent(cfg.DividendYield).StringFixed(2) + "%"},
		{Name: "Dividend growth", Value: Percent(cfg.DividendGrowthRate).StringFixed(2) + "%"},
		{Name: "Price appreciation", Value: Percent(cfg.PriceAppreciationRate).StringFixed(2) + "%"},
		{Name: "Horizon", Value: fmt.Sprintf("%g years, %s", cfg.HorizonYears, freq)},
		{Name: "Contribution", Value: describeContribution(cfg.Contribution)},
		{Name: "Dividends", Value: string(cfg.ReinvestMode)},
		{Name: "Tax drag", Value: Percent(cfg.TaxDrag).StringFixed(2) + "%"},
	}

	if cfg.Withdrawal != nil {
		rows = append(rows, AssumptionRow{
			Name:  "Withdrawal",
			Value: fmt.Sprintf("%s%% per year from period %d", Percent(cfg.Withdrawal.AnnualRate).StringFixed(2), cfg.Withdrawal.TriggerPeriod),
		})
	}
	return rows
}

func describeContribution(c domain.ContributionConfig) string {
	mode := c.Mode
	if mode == "" {
		mode = domain.ContributionFlat
	}
	s := fmt.Sprintf("$%s per period (%s)", Money(c.Amount).StringFixed(2), mode)
	if mode == domain.ContributionEscalating {
		s += fmt.Sprintf(", +%s%%/yr", Percent(c.EscalationRate).StringFixed(2))
	}
	if len(c.Pauses) > 0 {
		s += fmt.Sprintf(", %d pause(s)", len(c.Pauses))
	}
	if len(c.LumpSums) > 0 {
		s += fmt.Sprintf(", %d lump sum(s)", len(c.LumpSums))
	}
	return s
}

func buildSummary(s domain.Summary) SummarySection {
	return SummarySection{
		Periods:            s.Periods,
		Years:              decimal2(s.Years),
		FinalValue:         Money(s.FinalValue),
		FinalShares:        decimal4(s.FinalShares),
		FinalAnnualIncome:  Money(s.FinalAnnualIncome),
		FinalMonthlyIncome: Money(s.FinalAnnualIncome / 12),
		TotalInvested:      Money(s.TotalInvested),
		TotalDividends:     Money(s.TotalDividends),
		TotalTaxWithheld:   Money(s.TotalTaxWithheld),
		TotalDistributed:   Money(s.TotalDistributed),
		TotalWithdrawals:   Money(s.TotalWithdrawals),
		TotalReturn:        Money(s.TotalReturn),
		TotalReturnPct:     Percent(s.TotalReturnPct),
		AnnualizedPct:      percentPtr(s.AnnualizedReturn),
		YieldOnCostPct:     percentPtr(s.FinalYieldOnCost),
		FinalPhase:         s.FinalPhase,
	}
}

func buildYearly(snaps []domain.YearlySnapshot) []YearRow {
	rows := make([]YearRow, len(snaps))
	for i, s := range snaps {
		rows[i] = YearRow{
			Year:                    s.Year,
			Value:                   Money(s.Value),
			AnnualIncome:            Money(s.AnnualIncome),
			ContributionsThisYear:   Money(s.ContributionsThisYear),
			DividendsThisYear:       Money(s.DividendsThisYear),
			CumulativeContributions: Money(s.CumulativeContributions),
			CumulativeDividends:     Money(s.CumulativeDividends),
			InvestedCapital:         Money(s.InvestedCapital),
			PriceGain:               Money(s.PriceGain),
			YieldOnCostPct:          percentPtr(s.YieldOnCost),
		}
	}
	return rows
}

func buildMilestones(ms []domain.Milestone) []MilestoneRow {
	rows := make([]MilestoneRow, len(ms))
	for i, m := range ms {
		rows[i] = MilestoneRow{
			Label:  milestoneLabel(m),
			Period: m.Period,
			Year:   m.Year,
			Value:  Money(m.Value),
		}
	}
	return rows
}

func milestoneLabel(m domain.Milestone) string {
	switch m.Kind {
	case domain.MilestoneDividendsExceedContributions:
		return "Dividends exceed contributions"
	case domain.MilestoneValueThreshold:
		return "Portfolio reaches $" + Money(m.Threshold).StringFixed(0)
	case domain.MilestoneWithdrawalStarted:
		return "Withdrawals begin"
	default:
		return string(m.Kind)
	}
}

func decimal2(v float64) decimal.Decimal { return decimal.NewFromFloat(v).Round(2) }
func decimal4(v float64) decimal.Decimal { return decimal.NewFromFloat(v).Round(4) }
