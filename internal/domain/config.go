package domain

// Frequency is the compounding period frequency.
type Frequency string

// Frequency constants
const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyAnnual    Frequency = "annual"
)

// PeriodsPerYear returns the number of periods per year, or 0 for an unknown frequency.
func (f Frequency) PeriodsPerYear() int {
	switch f {
	case FrequencyMonthly:
		return 12
	case FrequencyQuarterly:
		return 4
	case FrequencyAnnual:
		return 1
	default:
		return 0
	}
}

// ReinvestMode selects what happens to net dividend cash.
type ReinvestMode string

// Reinvestment modes
const (
	ReinvestDRIP    ReinvestMode = "drip"     // net dividends buy new shares
	ReinvestCashOut ReinvestMode = "cash_out" // net dividends are paid out as income
)

// ContributionMode selects how the periodic contribution is resolved.
type ContributionMode string

// Contribution modes
const (
	ContributionFlat       ContributionMode = "flat"
	ContributionEscalating ContributionMode = "escalating"
	ContributionPaused     ContributionMode = "paused"
)

// DefaultSharePrice is used when a config leaves InitialSharePrice at zero.
const DefaultSharePrice = 100.0

// DefaultMilestoneThresholds are the portfolio values tracked when a config sets none.
var DefaultMilestoneThresholds = []float64{100_000, 250_000, 500_000, 1_000_000}

// PeriodRange is an inclusive range of period indices.
type PeriodRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Contains reports whether period lies within the range.
func (r PeriodRange) Contains(period int) bool {
	return period >= r.From && period <= r.To
}

// LumpSum is a one-off contribution made in a single period.
type LumpSum struct {
	Period int     `json:"period"`
	Amount float64 `json:"amount"`
}

// ContributionConfig describes external cash added each period.
type ContributionConfig struct {
	Mode           ContributionMode `json:"mode"`
	Amount         float64          `json:"amount"`                    // per-period base amount
	EscalationRate float64          `json:"escalation_rate,omitempty"` // annual, applied at year boundaries
	Pauses         []PeriodRange    `json:"pauses,omitempty"`
	LumpSums       []LumpSum        `json:"lump_sums,omitempty"`
}

// WithdrawalConfig switches the simulation into the decumulation phase.
type WithdrawalConfig struct {
	TriggerPeriod int     `json:"trigger_period"` // first WITHDRAWING period
	AnnualRate    float64 `json:"annual_rate"`    // fraction of portfolio value withdrawn per year
}

// SimulationConfig is the immutable input to a projection.
// All rates are annual fractions; the normalizer converts them to per-period values.
type SimulationConfig struct {
	InitialPrincipal      float64            `json:"initial_principal"`
	InitialSharePrice     float64            `json:"initial_share_price,omitempty"`
	DividendYield         float64            `json:"dividend_yield"`
	DividendGrowthRate    float64            `json:"dividend_growth_rate"`
	PriceAppreciationRate float64            `json:"price_appreciation_rate"`
	HorizonYears          float64            `json:"horizon_years"`
	Frequency             Frequency          `json:"frequency"`
	Contribution          ContributionConfig `json:"contribution"`
	ReinvestMode          ReinvestMode       `json:"reinvest_mode"`
	TaxDrag               float64            `json:"tax_drag"`
	Withdrawal            *WithdrawalConfig  `json:"withdrawal,omitempty"`
	MilestoneThresholds   []float64          `json:"milestone_thresholds,omitempty"`
}

// NormalizedConfig is a validated SimulationConfig with every rate converted
// into the per-period compounding base. Only the engine consumes it.
type NormalizedConfig struct {
	Source SimulationConfig

	PeriodsPerYear int
	TotalPeriods   int
	HorizonYears   float64 // TotalPeriods / PeriodsPerYear

	InitialPrincipal float64
	InitialPrice     float64
	InitialDPS       float64 // annual dividend per share at period 0

	PriceGrowthPerPeriod    float64 // geometric equivalent of the annual appreciation rate
	DividendGrowthPerPeriod float64 // geometric equivalent of the annual dividend growth rate
	TaxDrag                 float64 // clamped to [0,1]
	ReinvestMode            ReinvestMode

	Contribution ContributionConfig

	WithdrawalEnabled       bool
	WithdrawalTrigger       int
	WithdrawalRatePerPeriod float64 // annual rate / periods per year

	MilestoneThresholds []float64 // sorted ascending
}
