package calculator

import (
	"fmt"
	"math"

	"dividend-projection-lab/internal/domain"
)

// YieldOnCostInput projects how yield on original cost evolves.
type YieldOnCostInput struct {
	InitialInvestment     float64 `json:"initial_investment"`
	MonthlyContribution   float64 `json:"monthly_contribution"`
	DividendYield         float64 `json:"dividend_yield"`
	DividendGrowthRate    float64 `json:"dividend_growth_rate"`
	PriceAppreciationRate float64 `json:"price_appreciation_rate"`
	Years                 float64 `json:"years"`
	TaxRate               float64 `json:"tax_rate"`
	Reinvest              bool    `json:"reinvest"`
}

// YieldYear compares yield on cost with current market yield.
type YieldYear struct {
	Year            int      `json:"year"`
	AnnualIncome    float64  `json:"annual_income"`
	InvestedCapital float64  `json:"invested_capital"`
	YieldOnCost     *float64 `json:"yield_on_cost"`
	CurrentYield    float64  `json:"current_yield"` // income / market value
}

// YieldOnCostResult is the output of the yield-on-cost calculator.
type YieldOnCostResult struct {
	Years            []YieldYear `json:"years"`
	FinalYieldOnCost *float64    `json:"final_yield_on_cost"`
}

// YieldOnCost projects yield on cost per year.
func (c *Calculator) YieldOnCost(in YieldOnCostInput) (*YieldOnCostResult, error) {
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
		Contribution:          domain.ContributionConfig{Mode: domain.ContributionFlat, Amount: in.MonthlyContribution},
		ReinvestMode:          mode,
		TaxDrag:               in.TaxRate,
	}

	report, err := c.engine.Simulate(cfg)
	if err != nil {
		return nil, err
	}

	result := &YieldOnCostResult{FinalYieldOnCost: report.Summary.FinalYieldOnCost}
	for _, snap := range report.YearlySnapshots {
		y := YieldYear{
			Year:            snap.Year,
			AnnualIncome:    snap.AnnualIncome,
			InvestedCapital: snap.InvestedCapital,
			YieldOnCost:     snap.YieldOnCost,
		}
		if snap.Value > 0 {
			y.CurrentYield = snap.AnnualIncome / snap.Value
		}
		result.Years = append(result.Years, y)
	}

	return result, nil
}

// ImpliedGrowthRate returns the compound annual dividend growth rate that
// takes initialDPS to currentDPS over years.
func ImpliedGrowthRate(initialDPS, currentDPS, years float64) (float64, error) {
	if initialDPS <= 0 || currentDPS < 0 || years <= 0 {
		return 0, fmt.Errorf("%w: dividends and years must be positive", ErrInvalidInput)
	}
	return math.Pow(currentDPS/initialDPS, 1/years) - 1, nil
}
