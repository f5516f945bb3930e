// Package contribution resolves the external cash added in each period.
package contribution

import (
	"math"

	"dividend-projection-lab/internal/domain"
)

// Resolver returns the contribution for a period.
// It trusts its config to be normalized; invalid amounts never reach it.
type Resolver struct {
	mode           domain.ContributionMode
	amount         float64
	escalation     float64
	periodsPerYear int
	pauses         []domain.PeriodRange
	lumpSums       map[int]float64
}

// NewResolver builds a resolver from a normalized config.
func NewResolver(cfg *domain.NormalizedConfig) *Resolver {
	r := &Resolver{
		mode:           cfg.Contribution.Mode,
		amount:         cfg.Contribution.Amount,
		escalation:     cfg.Contribution.EscalationRate,
		periodsPerYear: cfg.PeriodsPerYear,
		pauses:         cfg.Contribution.Pauses,
		lumpSums:       make(map[int]float64, len(cfg.Contribution.LumpSums)),
	}
	for _, ls := range cfg.Contribution.LumpSums {
		r.lumpSums[ls.Period] += ls.Amount
	}
	if r.periodsPerYear <= 0 {
		r.periodsPerYear = 1
	}
	return r
}

// Resolve returns the contribution for period. Always >= 0.
func (r *Resolver) Resolve(period int) float64 {
	return r.Scheduled(period) + r.lumpSums[period]
}

// Scheduled returns the recurring part of the contribution, excluding lump sums.
func (r *Resolver) Scheduled(period int) float64 {
	switch r.mode {
	case domain.ContributionEscalating:
		// Steps once per completed year, never within a year.
		year := period / r.periodsPerYear
		return r.amount * math.Pow(1+r.escalation, float64(year))
	case domain.ContributionPaused:
		if r.paused(period) {
			return 0
		}
		return r.amount
	default:
		return r.amount
	}
}

func (r *Resolver) paused(period int) bool {
	for _, p := range r.pauses {
		if p.Contains(period) {
			return true
		}
	}
	return false
}
