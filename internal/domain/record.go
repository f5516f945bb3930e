package domain

// Phase is the lifecycle state of a simulation.
type Phase string

// Simulation phases. WITHDRAWING is terminal.
const (
	PhaseAccumulating Phase = "ACCUMULATING"
	PhaseWithdrawing  Phase = "WITHDRAWING"
)

// PeriodRecord is the immutable outcome of one simulated period.
// The ordered sequence of records is the only output of the engine.
type PeriodRecord struct {
	Index int   `json:"index"`
	Year  int   `json:"year"` // 1-based
	Phase Phase `json:"phase"`

	// Dividends
	DividendCash        float64 `json:"dividend_cash"` // gross, before tax drag
	TaxWithheld         float64 `json:"tax_withheld"`
	NetDividend         float64 `json:"net_dividend"`
	DividendReinvested  float64 `json:"dividend_reinvested"`
	DividendDistributed float64 `json:"dividend_distributed"`

	// Purchases
	Contribution    float64 `json:"contribution"`
	PurchasePrice   float64 `json:"purchase_price"`
	SharesPurchased float64 `json:"shares_purchased"`

	// Decumulation
	Withdrawal float64 `json:"withdrawal"`
	SharesSold float64 `json:"shares_sold"`

	// Ending state
	EndingShares       float64 `json:"ending_shares"`
	EndingPrice        float64 `json:"ending_price"`
	EndingValue        float64 `json:"ending_value"`         // EndingShares * EndingPrice
	EndingAnnualIncome float64 `json:"ending_annual_income"` // EndingShares * annual DPS after growth

	// Running totals
	CumulativeContributions float64 `json:"cumulative_contributions"` // excludes initial principal
	CumulativeDividends     float64 `json:"cumulative_dividends"`     // net dividends received
	CumulativeWithdrawals   float64 `json:"cumulative_withdrawals"`
}
