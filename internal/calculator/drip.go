package calculator

import (
	"fmt"

	"dividend-projection-lab/internal/domain"
)

// DRIPInput mirrors the inputs of a classic DRIP calculator form.
type DRIPInput struct {
	InitialInvestment     float64 `json:"initial_investment"`
	SharePrice            float64 `json:"share_price"`
	AnnualDividend        float64 `json:"annual_dividend"` // per share
	MonthlyContribution   float64 `json:"monthly_contribution"`
	DividendGrowthRate    float64 `json:"dividend_growth_rate"`
	PriceAppreciationRate float64 `json:"price_appreciation_rate"`
	Years                 float64 `json:"years"`
	TaxRate               float64 `json:"tax_rate"`
	Reinvest              bool    `json:"reinvest"`
}

// Config converts the form inputs into a monthly simulation config.
func (in DRIPInput) Config() (domain.SimulationConfig, error) {
	if in.SharePrice <= 0 {
		return domain.SimulationConfig{}, fmt.Errorf("%w: share_price must be > 0", ErrInvalidInput)
	}
	mode := domain.ReinvestCashOut
	if in.Reinvest {
		mode = domain.ReinvestDRIP
	}
	return domain.SimulationConfig{
		InitialPrincipal:      in.InitialInvestment,
		InitialSharePrice:     in.SharePrice,
		DividendYield:         in.AnnualDividend / in.SharePrice,
		DividendGrowthRate:    in.DividendGrowthRate,
		PriceAppreciationRate: in.PriceAppreciationRate,
		HorizonYears:          in.Years,
		Frequency:             domain.FrequencyMonthly,
		Contribution:          domain.ContributionConfig{Mode: domain.ContributionFlat, Amount: in.MonthlyContribution},
		ReinvestMode:          mode,
		TaxDrag:               in.TaxRate,
	}, nil
}

// DRIP projects a dividend reinvestment plan.
func (c *Calculator) DRIP(in DRIPInput) (*domain.SimulationReport, error) {
	cfg, err := in.Config()
	if err != nil {
		return nil, err
	}
	return c.engine.Simulate(cfg)
}

// RunPreset projects a named preset.
func (c *Calculator) RunPreset(name string) (*domain.SimulationReport, error) {
	p, err := Preset(name)
	if err != nil {
		return nil, err
	}
	return c.engine.Simulate(p.Config)
}
