package domain

// Preset name constants
const (
	PresetConservative  = "conservative"
	PresetAggressive    = "aggressive"
	PresetFIRE          = "fire"
	PresetAristocrats   = "aristocrats"
	PresetHighYield     = "high-yield"
	PresetYoungInvestor = "young-investor"
)

// Preset is a named starting point for a DRIP projection.
type Preset struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Config      SimulationConfig `json:"config"`
}

// Predefined presets. All reinvest dividends and contribute monthly.
// Yields are derived from annual dividend / share price.
var (
	PresetConfigConservative = Preset{
		Name:        PresetConservative,
		Description: "Blue-chip income: steady dividends, moderate growth",
		Config:      presetConfig(100_000, 100, 4.00, 500, 0.03, 0.05, 20),
	}

	PresetConfigAggressive = Preset{
		Name:        PresetAggressive,
		Description: "Dividend growth stocks with lower starting yield",
		Config:      presetConfig(50_000, 150, 3.00, 1_000, 0.10, 0.12, 30),
	}

	PresetConfigFIRE = Preset{
		Name:        PresetFIRE,
		Description: "High savings rate aiming for early retirement",
		Config:      presetConfig(25_000, 75, 3.75, 2_500, 0.07, 0.08, 15),
	}

	PresetConfigAristocrats = Preset{
		Name:        PresetAristocrats,
		Description: "Dividend aristocrats with 25+ years of increases",
		Config:      presetConfig(75_000, 120, 4.80, 750, 0.07, 0.08, 25),
	}

	PresetConfigHighYield = Preset{
		Name:        PresetHighYield,
		Description: "REITs and utilities: high current income, slow growth",
		Config:      presetConfig(150_000, 50, 4.00, 250, 0.04, 0.04, 20),
	}

	PresetConfigYoungInvestor = Preset{
		Name:        PresetYoungInvestor,
		Description: "Small start, long horizon, growth-weighted",
		Config:      presetConfig(5_000, 50, 1.50, 300, 0.08, 0.10, 40),
	}
)

// AllPresets returns the predefined presets in display order.
func AllPresets() []Preset {
	return []Preset{
		PresetConfigConservative,
		PresetConfigAggressive,
		PresetConfigFIRE,
		PresetConfigAristocrats,
		PresetConfigHighYield,
		PresetConfigYoungInvestor,
	}
}

// presetTaxDrag is the qualified dividend rate assumed by every preset.
const presetTaxDrag = 0.15

func presetConfig(principal, price, annualDividend, monthly, divGrowth, appreciation, years float64) SimulationConfig {
	return SimulationConfig{
		InitialPrincipal:      principal,
		InitialSharePrice:     price,
		DividendYield:         annualDividend / price,
		DividendGrowthRate:    divGrowth,
		PriceAppreciationRate: appreciation,
		HorizonYears:          years,
		Frequency:             FrequencyMonthly,
		Contribution: ContributionConfig{
			Mode:   ContributionFlat,
			Amount: monthly,
		},
		ReinvestMode: ReinvestDRIP,
		TaxDrag:      presetTaxDrag,
	}
}
