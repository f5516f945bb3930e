package domain

// YearlySnapshot is the portfolio state sampled at a year boundary.
type YearlySnapshot struct {
	Year      int `json:"year"`
	EndPeriod int `json:"end_period"`

	Shares       float64 `json:"shares"`
	Price        float64 `json:"price"`
	Value        float64 `json:"value"`
	AnnualIncome float64 `json:"annual_income"`

	ContributionsThisYear float64 `json:"contributions_this_year"`
	DividendsThisYear     float64 `json:"dividends_this_year"` // net

	CumulativeContributions float64 `json:"cumulative_contributions"`
	CumulativeDividends     float64 `json:"cumulative_dividends"`
	CumulativeWithdrawals   float64 `json:"cumulative_withdrawals"`

	// Decomposition of value into invested capital and market gain.
	InvestedCapital float64 `json:"invested_capital"` // principal + contributions
	PriceGain       float64 `json:"price_gain"`

	YieldOnCost *float64 `json:"yield_on_cost"` // nil when invested capital is zero
}

// MilestoneKind identifies a milestone event.
type MilestoneKind string

// Milestone kinds
const (
	MilestoneDividendsExceedContributions MilestoneKind = "dividends_exceed_contributions"
	MilestoneValueThreshold               MilestoneKind = "value_threshold"
	MilestoneWithdrawalStarted            MilestoneKind = "withdrawal_started"
)

// Milestone marks the first period at which an event occurred.
type Milestone struct {
	Kind      MilestoneKind `json:"kind"`
	Period    int           `json:"period"`
	Year      int           `json:"year"`
	Threshold float64       `json:"threshold,omitempty"` // set for value_threshold
	Value     float64       `json:"value"`               // portfolio value at the period
}

// Summary holds final totals for a run.
type Summary struct {
	Periods int     `json:"periods"`
	Years   float64 `json:"years"`

	FinalShares       float64 `json:"final_shares"`
	FinalPrice        float64 `json:"final_price"`
	FinalValue        float64 `json:"final_value"`
	FinalAnnualIncome float64 `json:"final_annual_income"`
	FinalPhase        Phase   `json:"final_phase"`

	InitialPrincipal      float64  `json:"initial_principal"`
	TotalContributions    float64  `json:"total_contributions"`
	TotalInvested         float64  `json:"total_invested"`  // principal + contributions
	TotalDividends        float64  `json:"total_dividends"` // gross
	TotalTaxWithheld      float64  `json:"total_tax_withheld"`
	TotalReinvested       float64  `json:"total_reinvested"`
	TotalDistributed      float64  `json:"total_distributed"`
	TotalWithdrawals      float64  `json:"total_withdrawals"`
	TotalReturn           float64  `json:"total_return"`
	TotalReturnPct        float64  `json:"total_return_pct"`
	AnnualizedReturn      *float64 `json:"annualized_return"` // nil when undefined
	FinalYieldOnCost      *float64 `json:"final_yield_on_cost"`
	WithdrawalStartPeriod *int     `json:"withdrawal_start_period,omitempty"`
}

// SimulationReport is the derived, read-only output of one projection.
type SimulationReport struct {
	Config          SimulationConfig `json:"config"`
	Trace           []PeriodRecord   `json:"trace"`
	YearlySnapshots []YearlySnapshot `json:"yearly_snapshots"`
	Milestones      []Milestone      `json:"milestones"`
	Summary         Summary          `json:"summary"`
}
