package reporting

import (
	"time"

	"github.com/shopspring/decimal"

	"dividend-projection-lab/internal/domain"
)

// Report is the rendered view of one projection. Money is rounded to cents.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	Title       string
	RunID       string // empty for ad hoc projections
	ScenarioID  string
	Status      domain.RunStatus

	Assumptions []AssumptionRow
	Summary     SummarySection
	Yearly      []YearRow
	Milestones  []MilestoneRow

	// Trace is kept for CSV export of the period-level data.
	Trace []domain.PeriodRecord
}

// AssumptionRow is one input assumption.
type AssumptionRow struct {
	Name  string
	Value string
}

// SummarySection contains final totals.
type SummarySection struct {
	Periods            int
	Years              decimal.Decimal
	FinalValue         decimal.Decimal
	FinalShares        decimal.Decimal
	FinalAnnualIncome  decimal.Decimal
	FinalMonthlyIncome decimal.Decimal
	TotalInvested      decimal.Decimal
	TotalDividends     decimal.Decimal
	TotalTaxWithheld   decimal.Decimal
	TotalDistributed   decimal.Decimal
	TotalWithdrawals   decimal.Decimal
	TotalReturn        decimal.Decimal
	TotalReturnPct     decimal.Decimal
	AnnualizedPct      *decimal.Decimal // nil when undefined
	YieldOnCostPct     *decimal.Decimal // nil when nothing was invested
	FinalPhase         domain.Phase
}

// YearRow represents one row in the year-by-year table.
type YearRow struct {
	Year                    int
	Value                   decimal.Decimal
	AnnualIncome            decimal.Decimal
	ContributionsThisYear   decimal.Decimal
	DividendsThisYear       decimal.Decimal
	CumulativeContributions decimal.Decimal
	CumulativeDividends     decimal.Decimal
	InvestedCapital         decimal.Decimal
	PriceGain               decimal.Decimal
	YieldOnCostPct          *decimal.Decimal
}

// MilestoneRow represents one milestone event.
type MilestoneRow struct {
	Label  string
	Period int
	Year   int
	Value  decimal.Decimal
}

// Money rounds a float amount to cents, half away from zero.
func Money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// Percent converts a fraction to a percentage rounded to two places.
func Percent(fraction float64) decimal.Decimal {
	return decimal.NewFromFloat(fraction).Shift(2).Round(2)
}

func percentPtr(fraction *float64) *decimal.Decimal {
	if fraction == nil {
		return nil
	}
	p := Percent(*fraction)
	return &p
}
