// Package schedule generates the ordered compounding periods of a projection.
package schedule

import (
	"errors"
	"fmt"
	"math"

	"dividend-projection-lab/internal/domain"
)

// Schedule errors. Both wrap domain.ErrInvalidConfiguration.
var (
	ErrInvalidHorizon   = fmt.Errorf("%w: horizon must be positive", domain.ErrInvalidConfiguration)
	ErrInvalidFrequency = fmt.Errorf("%w: frequency must be monthly, quarterly or annual", domain.ErrInvalidConfiguration)
)

// Period is one compounding period.
type Period struct {
	Index        int     // 0-based position in the schedule
	Year         int     // 1-based year the period belongs to
	PeriodInYear int     // 0-based position within its year
	Fraction     float64 // duration in years (1/periods per year)
	YearEnd      bool    // last period of its year, or last period of the schedule
}

// PeriodCount returns round(horizonYears * periods per year).
func PeriodCount(horizonYears float64, freq domain.Frequency) (int, error) {
	ppy := freq.PeriodsPerYear()
	if ppy <= 0 {
		return 0, ErrInvalidFrequency
	}
	if math.IsNaN(horizonYears) || math.IsInf(horizonYears, 0) || horizonYears <= 0 {
		return 0, ErrInvalidHorizon
	}

	n := int(math.Round(horizonYears * float64(ppy)))
	if n <= 0 {
		return 0, ErrInvalidHorizon
	}
	return n, nil
}

// Generate returns the ordered periods for a horizon and frequency.
func Generate(horizonYears float64, freq domain.Frequency) ([]Period, error) {
	n, err := PeriodCount(horizonYears, freq)
	if err != nil {
		return nil, err
	}
	return build(n, freq.PeriodsPerYear()), nil
}

// FromNormalized returns the periods of an already normalized config.
func FromNormalized(cfg *domain.NormalizedConfig) ([]Period, error) {
	if cfg == nil || cfg.TotalPeriods <= 0 || cfg.PeriodsPerYear <= 0 {
		return nil, errors.Join(ErrInvalidHorizon, ErrInvalidFrequency)
	}
	return build(cfg.TotalPeriods, cfg.PeriodsPerYear), nil
}

func build(n, ppy int) []Period {
	periods := make([]Period, n)
	fraction := 1.0 / float64(ppy)
	for i := 0; i < n; i++ {
		inYear := i % ppy
		periods[i] = Period{
			Index:        i,
			Year:         i/ppy + 1,
			PeriodInYear: inYear,
			Fraction:     fraction,
			YearEnd:      inYear == ppy-1 || i == n-1,
		}
	}
	return periods
}
