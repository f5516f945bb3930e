package calculator

import (
	"dividend-projection-lab/internal/domain"
)

// DividendGrowthInput projects income from a holding with growing dividends.
type DividendGrowthInput struct {
	InitialInvestment     float64 `json:"initial_investment"`
	DividendYield         float64 `json:"dividend_yield"`
	DividendGrowthRate    float64 `json:"dividend_growth_rate"`
	PriceAppreciationRate float64 `json:"price_appreciation_rate"`
	Years                 float64 `json:"years"`
	TaxRate               float64 `json:"tax_rate"`
	Reinvest              bool    `json:"reinvest"`
}

// IncomeYear is one row of a dividend growth projection.
type IncomeYear struct {
	Year             int      `json:"year"`
	AnnualIncome     float64  `json:"annual_income"`
	MonthlyIncome    float64  `json:"monthly_income"`
	CumulativeIncome float64  `json:"cumulative_income"` // net dividends received
	YieldOnCost      *float64 `json:"yield_on_cost"`
}

// DividendGrowthResult is the output of the dividend growth calculator.
type DividendGrowthResult struct {
	Years             []IncomeYear `json:"years"`
	InitialIncome     float64      `json:"initial_income"`
	FinalAnnualIncome float64      `json:"final_annual_income"`
	IncomeMultiple    float64      `json:"income_multiple"` // final / initial, 0 when initial is 0
}

// DividendGrowth projects annual dividend income without new contributions.
func (c *Calculator) DividendGrowth(in DividendGrowthInput) (*DividendGrowthResult, error) {
	mode := domain.ReinvestCashOut
	if in.Reinvest {
		mode = domain.ReinvestDRIP
	}
	cfg := domain.SimulationConfig{
		InitialPrincipal:      in.InitialInvestment,
		DividendYield:         in.DividendYield,
		DividendGrowthRate:    in.DividendGrowthRate,
		PriceAppreciationRate: in.PriceAppreciationRate,
		HorizonYears:          in.Years,
		Frequency:             domain.FrequencyMonthly,
		ReinvestMode:          mode,
		TaxDrag:               in.TaxRate,
	}

	report, err := c.engine.Simulate(cfg)
	if err != nil {
		return nil, err
	}

	result := &DividendGrowthResult{
		InitialIncome:     in.InitialInvestment * in.DividendYield,
		FinalAnnualIncome: report.Summary.FinalAnnualIncome,
	}
	for _, snap := range report.YearlySnapshots {
		result.Years = append(result.Years, IncomeYear{
			Year:             snap.Year,
			AnnualIncome:     snap.AnnualIncome,
			MonthlyIncome:    snap.AnnualIncome / 12,
			CumulativeIncome: snap.CumulativeDividends,
			YieldOnCost:      snap.YieldOnCost,
		})
	}
	if result.InitialIncome > 0 {
		result.IncomeMultiple = result.FinalAnnualIncome / result.InitialIncome
	}

	return result, nil
}
