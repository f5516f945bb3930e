// Package verification replays stored runs and checks their traces still match the engine.
package verification

import (
	"context"
	"math"

	"dividend-projection-lab/internal/domain"
)

// FloatTolerance is the absolute tolerance for float64 comparisons.
const FloatTolerance = 1e-7

// FieldDivergence represents a mismatch between stored and replayed values.
type FieldDivergence struct {
	Period   int         `json:"period"` // -1 for run-level fields
	Field    string      `json:"field"`
	Expected interface{} `json:"expected"` // stored value
	Actual   interface{} `json:"actual"`   // replayed value
}

// VerificationResult contains the result of verifying a single run.
type VerificationResult struct {
	RunID           string            `json:"run_id"`
	ScenarioID      string            `json:"scenario_id"`
	Match           bool              `json:"match"`
	StoredPeriods   int               `json:"stored_periods"`
	ReplayedPeriods int               `json:"replayed_periods"`
	Divergences     []FieldDivergence `json:"divergences,omitempty"`
}

// VerificationReport contains results for batch verification.
type VerificationReport struct {
	TotalRuns     int                  `json:"total_runs"`
	MatchedRuns   int                  `json:"matched_runs"`
	DivergentRuns int                  `json:"divergent_runs"`
	Results       []VerificationResult `json:"results"`
}

// Verifier re-simulates stored runs.
type Verifier interface {
	// VerifyRun replays one run from its scenario config and compares every period.
	VerifyRun(ctx context.Context, runID string) (*VerificationResult, error)

	// VerifyScenario verifies every stored run of a scenario.
	VerifyScenario(ctx context.Context, scenarioID string) (*VerificationReport, error)
}

// recordField reads one float field of a period record.
type recordField struct {
	name string
	get  func(r *domain.PeriodRecord) float64
}

var recordFields = []recordField{
	{"DividendCash", func(r *domain.PeriodRecord) float64 { return r.DividendCash }},
	{"TaxWithheld", func(r *domain.PeriodRecord) float64 { return r.TaxWithheld }},
	{"NetDividend", func(r *domain.PeriodRecord) float64 { return r.NetDividend }},
	{"DividendReinvested", func(r *domain.PeriodRecord) float64 { return r.DividendReinvested }},
	{"DividendDistributed", func(r *domain.PeriodRecord) float64 { return r.DividendDistributed }},
	{"Contribution", func(r *domain.PeriodRecord) float64 { return r.Contribution }},
	{"PurchasePrice", func(r *domain.PeriodRecord) float64 { return r.PurchasePrice }},
	{"SharesPurchased", func(r *domain.PeriodRecord) float64 { return r.SharesPurchased }},
	{"Withdrawal", func(r *domain.PeriodRecord) float64 { return r.Withdrawal }},
	{"SharesSold", func(r *domain.PeriodRecord) float64 { return r.SharesSold }},
	{"EndingShares", func(r *domain.PeriodRecord) float64 { return r.EndingShares }},
	{"EndingPrice", func(r *domain.PeriodRecord) float64 { return r.EndingPrice }},
	{"EndingValue", func(r *domain.PeriodRecord) float64 { return r.EndingValue }},
	{"EndingAnnualIncome", func(r *domain.PeriodRecord) float64 { return r.EndingAnnualIncome }},
	{"CumulativeContributions", func(r *domain.PeriodRecord) float64 { return r.CumulativeContributions }},
	{"CumulativeDividends", func(r *domain.PeriodRecord) float64 { return r.CumulativeDividends }},
	{"CumulativeWithdrawals", func(r *domain.PeriodRecord) float64 { return r.CumulativeWithdrawals }},
}

// ComparePeriodRecords compares two traces record by record.
// A length mismatch is reported once as a run-level divergence; the
// common prefix is still compared.
func ComparePeriodRecords(stored, replayed []domain.PeriodRecord) []FieldDivergence {
	var divergences []FieldDivergence

	if len(stored) != len(replayed) {
		divergences = append(divergences, FieldDivergence{
			Period:   -1,
			Field:    "PeriodCount",
			Expected: len(stored),
			Actual:   len(replayed),
		})
	}

	n := min(len(stored), len(replayed))
	for i := 0; i < n; i++ {
		divergences = append(divergences, CompareRecord(&stored[i], &replayed[i])...)
	}
	return divergences
}

// CompareRecord compares two period records field by field.
func CompareRecord(stored, replayed *domain.PeriodRecord) []FieldDivergence {
	var divergences []FieldDivergence

	// Identity fields must match exactly
	if stored.Index != replayed.Index {
		divergences = append(divergences, FieldDivergence{Period: stored.Index, Field: "Index", Expected: stored.Index, Actual: replayed.Index})
	}
	if stored.Year != replayed.Year {
		divergences = append(divergences, FieldDivergence{Period: stored.Index, Field: "Year", Expected: stored.Year, Actual: replayed.Year})
	}
	if stored.Phase != replayed.Phase {
		divergences = append(divergences, FieldDivergence{Period: stored.Index, Field: "Phase", Expected: stored.Phase, Actual: replayed.Phase})
	}

	for _, f := range recordFields {
		want, got := f.get(stored), f.get(replayed)
		if !floatEquals(want, got) {
			divergences = append(divergences, FieldDivergence{Period: stored.Index, Field: f.name, Expected: want, Actual: got})
		}
	}

	return divergences
}

// floatEquals compares two float64 values within FloatTolerance.
func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= FloatTolerance
}
