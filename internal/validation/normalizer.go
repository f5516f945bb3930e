// Package validation checks simulation configs and converts them into the
// per-period compounding base consumed by the engine.
package validation

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"dividend-projection-lab/internal/domain"
	"dividend-projection-lab/internal/schedule"
)

// Rate bounds for annual growth inputs.
const (
	MinGrowthRate    = -1.0 // -100%: the asset goes to zero
	MaxGrowthRate    = 10.0 // 1000%
	MaxDividendYield = 1.0
	MaxHorizonYears  = 100.0
	MaxAmount        = 1e12 // principal, share price, contributions, lump sums
)

// DefaultMaxPeriods bounds the work a single run may do.
const DefaultMaxPeriods = 1200

// Violation is a single failed input check.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error lists every violated field of a config.
// It matches domain.ErrInvalidConfiguration via errors.Is.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.Field + ": " + v.Message
	}
	return domain.ErrInvalidConfiguration.Error() + ": " + strings.Join(parts, "; ")
}

func (e *Error) Unwrap() error {
	return domain.ErrInvalidConfiguration
}

// Options controls normalization.
type Options struct {
	MaxPeriods int // 0 means DefaultMaxPeriods
}

type checker struct {
	violations []Violation
}

func (c *checker) add(field, format string, args ...any) {
	c.violations = append(c.violations, Violation{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (c *checker) finite(field string, v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		c.add(field, "must be a finite number")
		return false
	}
	return true
}

func (c *checker) between(field string, v, lo, hi float64) {
	if c.finite(field, v) && (v < lo || v > hi) {
		c.add(field, "must be between %g and %g, got %g", lo, hi, v)
	}
}

// Normalize validates cfg and returns its per-period form.
// All violations are collected before returning; the result is nil on error.
func Normalize(cfg domain.SimulationConfig, opts Options) (*domain.NormalizedConfig, error) {
	maxPeriods := opts.MaxPeriods
	if maxPeriods <= 0 {
		maxPeriods = DefaultMaxPeriods
	}

	c := &checker{}

	// 1. Amounts and prices
	c.between("initial_principal", cfg.InitialPrincipal, 0, MaxAmount)
	c.between("initial_share_price", cfg.InitialSharePrice, 0, MaxAmount)
	c.between("dividend_yield", cfg.DividendYield, 0, MaxDividendYield)

	// 2. Annual rates
	c.between("dividend_growth_rate", cfg.DividendGrowthRate, MinGrowthRate, MaxGrowthRate)
	c.between("price_appreciation_rate", cfg.PriceAppreciationRate, MinGrowthRate, MaxGrowthRate)

	// 3. Horizon and frequency
	ppy := cfg.Frequency.PeriodsPerYear()
	if ppy == 0 {
		c.add("frequency", "must be one of monthly, quarterly, annual, got %q", cfg.Frequency)
	}
	totalPeriods := 0
	if c.finite("horizon_years", cfg.HorizonYears) {
		switch {
		case cfg.HorizonYears <= 0:
			c.add("horizon_years", "must be > 0, got %g", cfg.HorizonYears)
		case cfg.HorizonYears > MaxHorizonYears:
			c.add("horizon_years", "must be <= %g, got %g", MaxHorizonYears, cfg.HorizonYears)
		case ppy > 0:
			n, err := schedule.PeriodCount(cfg.HorizonYears, cfg.Frequency)
			if err != nil {
				c.add("horizon_years", "must cover at least one %s period", cfg.Frequency)
			} else if n > maxPeriods {
				c.add("horizon_years", "requires %d periods, limit is %d", n, maxPeriods)
			} else {
				totalPeriods = n
			}
		}
	}

	// 4. Contributions
	mode := cfg.Contribution.Mode
	if mode == "" {
		mode = domain.ContributionFlat
	}
	switch mode {
	case domain.ContributionFlat, domain.ContributionEscalating:
		if len(cfg.Contribution.Pauses) > 0 {
			c.add("contribution.pauses", "pause ranges require paused mode, got %q", mode)
		}
	case domain.ContributionPaused:
		if len(cfg.Contribution.Pauses) == 0 {
			c.add("contribution.pauses", "paused mode requires at least one pause range")
		}
	default:
		c.add("contribution.mode", "must be one of flat, escalating, paused, got %q", mode)
	}
	c.between("contribution.amount", cfg.Contribution.Amount, 0, MaxAmount)
	if esc := cfg.Contribution.EscalationRate; c.finite("contribution.escalation_rate", esc) && (esc <= -1 || esc > MaxGrowthRate) {
		c.add("contribution.escalation_rate", "must be > -1 and <= %g, got %g", MaxGrowthRate, esc)
	}
	for i, r := range cfg.Contribution.Pauses {
		if r.From < 0 || r.To < r.From {
			c.add(fmt.Sprintf("contribution.pauses[%d]", i), "invalid range %d..%d", r.From, r.To)
		}
	}
	for i, ls := range cfg.Contribution.LumpSums {
		field := fmt.Sprintf("contribution.lump_sums[%d]", i)
		c.between(field+".amount", ls.Amount, 0, MaxAmount)
		if ls.Period < 0 || (totalPeriods > 0 && ls.Period >= totalPeriods) {
			c.add(field+".period", "must be within the horizon, got %d", ls.Period)
		}
	}

	// 5. Reinvestment and tax drag
	reinvest := cfg.ReinvestMode
	if reinvest == "" {
		reinvest = domain.ReinvestDRIP
	}
	if reinvest != domain.ReinvestDRIP && reinvest != domain.ReinvestCashOut {
		c.add("reinvest_mode", "must be drip or cash_out, got %q", cfg.ReinvestMode)
	}
	taxDrag := cfg.TaxDrag
	if math.IsNaN(taxDrag) {
		c.add("tax_drag", "must be a number")
	}
	taxDrag = math.Max(0, math.Min(1, taxDrag))

	// 6. Withdrawal phase
	if w := cfg.Withdrawal; w != nil {
		if w.TriggerPeriod < 0 || (totalPeriods > 0 && w.TriggerPeriod >= totalPeriods) {
			c.add("withdrawal.trigger_period", "must be within the horizon, got %d", w.TriggerPeriod)
		}
		c.between("withdrawal.annual_rate", w.AnnualRate, 0, 1)
	}

	// 7. Milestones
	for i, th := range cfg.MilestoneThresholds {
		field := fmt.Sprintf("milestone_thresholds[%d]", i)
		if c.finite(field, th) && th <= 0 {
			c.add(field, "must be > 0, got %g", th)
		}
	}

	if len(c.violations) > 0 {
		return nil, &Error{Violations: c.violations}
	}

	price := cfg.InitialSharePrice
	if price == 0 {
		price = domain.DefaultSharePrice
	}

	thresholds := cfg.MilestoneThresholds
	if len(thresholds) == 0 {
		thresholds = domain.DefaultMilestoneThresholds
	}
	thresholds = append([]float64(nil), thresholds...)
	sort.Float64s(thresholds)

	contrib := cfg.Contribution
	contrib.Mode = mode
	contrib.Pauses = append([]domain.PeriodRange(nil), contrib.Pauses...)
	contrib.LumpSums = append([]domain.LumpSum(nil), contrib.LumpSums...)

	n := &domain.NormalizedConfig{
		Source:                  cfg,
		PeriodsPerYear:          ppy,
		TotalPeriods:            totalPeriods,
		HorizonYears:            float64(totalPeriods) / float64(ppy),
		InitialPrincipal:        cfg.InitialPrincipal,
		InitialPrice:            price,
		InitialDPS:              cfg.DividendYield * price,
		PriceGrowthPerPeriod:    PerPeriodGrowth(cfg.PriceAppreciationRate, ppy),
		DividendGrowthPerPeriod: PerPeriodGrowth(cfg.DividendGrowthRate, ppy),
		TaxDrag:                 taxDrag,
		ReinvestMode:            reinvest,
		Contribution:            contrib,
		MilestoneThresholds:     thresholds,
	}
	if w := cfg.Withdrawal; w != nil {
		n.WithdrawalEnabled = true
		n.WithdrawalTrigger = w.TriggerPeriod
		n.WithdrawalRatePerPeriod = w.AnnualRate / float64(ppy)
	}

	return n, nil
}

// PerPeriodGrowth converts an annual growth rate into the geometric per-period
// rate that compounds back to it over one year.
func PerPeriodGrowth(annual float64, periodsPerYear int) float64 {
	if periodsPerYear <= 1 {
		return annual
	}
	return math.Pow(1+annual, 1/float64(periodsPerYear)) - 1
}
