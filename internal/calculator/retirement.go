package calculator

import (
	"fmt"
	"math"

	"dividend-projection-lab/internal/domain"
)

// DefaultExpectedReturn is the annual return assumed when sizing extra contributions.
const DefaultExpectedReturn = 0.07

// RetirementIncomeInput describes a retirement income goal.
type RetirementIncomeInput struct {
	TargetAnnualIncome    float64 `json:"target_annual_income"`
	DividendYield         float64 `json:"dividend_yield"`
	CurrentPortfolio      float64 `json:"current_portfolio"`
	MonthlyContribution   float64 `json:"monthly_contribution"`
	YearsToRetirement     float64 `json:"years_to_retirement"`
	YearsInRetirement     float64 `json:"years_in_retirement"`
	DividendGrowthRate    float64 `json:"dividend_growth_rate"`
	PriceAppreciationRate float64 `json:"price_appreciation_rate"`
	WithdrawalRate        float64 `json:"withdrawal_rate"`
	ExpectedReturn        float64 `json:"expected_return"` // 0 means DefaultExpectedReturn
	TaxRate               float64 `json:"tax_rate"`
}

// RetirementIncomeResult is the output of the retirement income calculator.
type RetirementIncomeResult struct {
	RequiredPortfolio             float64 `json:"required_portfolio"`  // target / yield
	ProjectedPortfolio            float64 `json:"projected_portfolio"` // value at retirement
	Gap                           float64 `json:"gap"`
	OnTrack                       bool    `json:"on_track"`
	AdditionalMonthlyContribution float64 `json:"additional_monthly_contribution"`
	IncomeAtRetirement            float64 `json:"income_at_retirement"` // annual dividends at retirement
	FirstYearWithdrawals          float64 `json:"first_year_withdrawals"`
	FinalValue                    float64 `json:"final_value"`

	Report *domain.SimulationReport `json:"report"`
}

// RetirementIncome projects accumulation up to retirement and decumulation after it.
func (c *Calculator) RetirementIncome(in RetirementIncomeInput) (*RetirementIncomeResult, error) {
	if in.DividendYield <= 0 {
		return nil, fmt.Errorf("%w: dividend_yield must be > 0", ErrInvalidInput)
	}
	if in.YearsToRetirement < 0 || in.YearsInRetirement < 0 || in.YearsToRetirement+in.YearsInRetirement <= 0 {
		return nil, fmt.Errorf("%w: years must be non-negative and not both zero", ErrInvalidInput)
	}

	const ppy = 12
	trigger := int(math.Round(in.YearsToRetirement * ppy))

	cfg := domain.SimulationConfig{
		InitialPrincipal:      in.CurrentPortfolio,
		DividendYield:         in.DividendYield,
		DividendGrowthRate:    in.DividendGrowthRate,
		PriceAppreciationRate: in.PriceAppreciationRate,
		HorizonYears:          in.YearsToRetirement + in.YearsInRetirement,
		Frequency:             domain.FrequencyMonthly,
		Contribution:          domain.ContributionConfig{Mode: domain.ContributionFlat, Amount: in.MonthlyContribution},
		ReinvestMode:          domain.ReinvestDRIP,
		TaxDrag:               in.TaxRate,
	}
	if in.YearsInRetirement > 0 {
		cfg.Withdrawal = &domain.WithdrawalConfig{TriggerPeriod: trigger, AnnualRate: in.WithdrawalRate}
	}

	report, err := c.engine.Simulate(cfg)
	if err != nil {
		return nil, err
	}

	result := &RetirementIncomeResult{
		RequiredPortfolio:  in.TargetAnnualIncome / in.DividendYield,
		ProjectedPortfolio: in.CurrentPortfolio,
		IncomeAtRetirement: in.CurrentPortfolio * in.DividendYield,
		FinalValue:         report.Summary.FinalValue,
		Report:             report,
	}

	// State at retirement is the ending state of the period before the trigger.
	if trigger > 0 && trigger <= len(report.Trace) {
		atRetirement := report.Trace[trigger-1]
		result.ProjectedPortfolio = atRetirement.EndingValue
		result.IncomeAtRetirement = atRetirement.EndingAnnualIncome
	}
	for i := trigger; i < trigger+ppy && i < len(report.Trace); i++ {
		result.FirstYearWithdrawals += report.Trace[i].Withdrawal
	}

	result.Gap = math.Max(0, result.RequiredPortfolio-result.ProjectedPortfolio)
	result.OnTrack = result.Gap == 0
	if result.Gap > 0 && trigger > 0 {
		rate := in.ExpectedReturn
		if rate == 0 {
			rate = DefaultExpectedReturn
		}
		result.AdditionalMonthlyContribution = RequiredMonthlyContribution(result.Gap, rate, trigger)
	}

	return result, nil
}

// RequiredMonthlyContribution returns the level monthly deposit that grows to
// gap over months at annualReturn compounded monthly.
// Returns +Inf when months is zero and gap is positive.
func RequiredMonthlyContribution(gap, annualReturn float64, months int) float64 {
	if gap <= 0 {
		return 0
	}
	if months <= 0 {
		return math.Inf(1)
	}
	r := annualReturn / 12
	if r == 0 {
		return gap / float64(months)
	}
	factor := (math.Pow(1+r, float64(months)) - 1) / r
	return gap / factor
}
