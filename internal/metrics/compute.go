package metrics

import (
	"math"

	"dividend-projection-lab/internal/domain"
)

// DefaultWindow is the trailing window, in periods, for the
// dividends-exceed-contributions milestone.
const DefaultWindow = 12

// Options controls aggregation.
type Options struct {
	Window int // 0 means DefaultWindow
}

// Aggregate derives the report from an ordered trace in one forward pass.
// It never recomputes simulation state; everything comes from the records.
func Aggregate(cfg *domain.NormalizedConfig, trace []domain.PeriodRecord, opts Options) *domain.SimulationReport {
	window := opts.Window
	if window <= 0 {
		window = DefaultWindow
	}
	ppy := cfg.PeriodsPerYear
	if ppy <= 0 {
		ppy = 1
	}

	report := &domain.SimulationReport{
		Config:     cfg.Source,
		Trace:      trace,
		Milestones: []domain.Milestone{},
	}

	var (
		yearContrib, yearDiv float64
		totalDividends       float64
		totalTax             float64
		totalReinvested      float64
		totalDistributed     float64

		windowDiv, windowContrib float64
		dividendsMilestone       bool
		withdrawalStart          *int
		nextThreshold            int
	)
	thresholds := cfg.MilestoneThresholds

	for i, rec := range trace {
		// Running totals
		yearContrib += rec.Contribution
		yearDiv += rec.NetDividend
		totalDividends += rec.DividendCash
		totalTax += rec.TaxWithheld
		totalReinvested += rec.DividendReinvested
		totalDistributed += rec.DividendDistributed

		// Trailing window sums
		windowDiv += rec.NetDividend
		windowContrib += rec.Contribution
		if i >= window {
			old := trace[i-window]
			windowDiv -= old.NetDividend
			windowContrib -= old.Contribution
		}

		// Milestones
		if !dividendsMilestone && windowDiv > 0 && windowDiv >= windowContrib {
			dividendsMilestone = true
			report.Milestones = append(report.Milestones, milestone(domain.MilestoneDividendsExceedContributions, rec, 0))
		}
		for nextThreshold < len(thresholds) && rec.EndingValue >= thresholds[nextThreshold] {
			report.Milestones = append(report.Milestones, milestone(domain.MilestoneValueThreshold, rec, thresholds[nextThreshold]))
			nextThreshold++
		}
		if withdrawalStart == nil && rec.Phase == domain.PhaseWithdrawing {
			idx := rec.Index
			withdrawalStart = &idx
			report.Milestones = append(report.Milestones, milestone(domain.MilestoneWithdrawalStarted, rec, 0))
		}

		// Year boundary snapshot
		if rec.Index%ppy == ppy-1 || i == len(trace)-1 {
			report.YearlySnapshots = append(report.YearlySnapshots,
				snapshot(cfg.InitialPrincipal, rec, yearContrib, yearDiv, totalReinvested))
			yearContrib, yearDiv = 0, 0
		}
	}

	report.Summary = domain.Summary{
		Periods:          len(trace),
		Years:            float64(len(trace)) / float64(ppy),
		InitialPrincipal: cfg.InitialPrincipal,
		TotalDividends:   totalDividends,
		TotalTaxWithheld: totalTax,
		TotalReinvested:  totalReinvested,
		TotalDistributed: totalDistributed,
		FinalPhase:       domain.PhaseAccumulating,
		TotalInvested:    cfg.InitialPrincipal,
		FinalPrice:       cfg.InitialPrice,
		FinalShares:      cfg.InitialPrincipal / cfg.InitialPrice,
		FinalValue:       cfg.InitialPrincipal,
	}
	if len(trace) > 0 {
		last := trace[len(trace)-1]
		s := &report.Summary
		s.FinalShares = last.EndingShares
		s.FinalPrice = last.EndingPrice
		s.FinalValue = last.EndingValue
		s.FinalAnnualIncome = last.EndingAnnualIncome
		s.FinalPhase = last.Phase
		s.TotalContributions = last.CumulativeContributions
		s.TotalWithdrawals = last.CumulativeWithdrawals
		s.TotalInvested = cfg.InitialPrincipal + last.CumulativeContributions
	}

	s := &report.Summary
	s.WithdrawalStartPeriod = withdrawalStart
	s.TotalReturn = s.FinalValue + s.TotalDistributed + s.TotalWithdrawals - s.TotalInvested
	if s.TotalInvested > 0 {
		s.TotalReturnPct = s.TotalReturn / s.TotalInvested * 100
	}
	s.AnnualizedReturn = annualizedReturn(s.TotalInvested, s.FinalValue+s.TotalDistributed+s.TotalWithdrawals, s.Years)
	s.FinalYieldOnCost = yieldOnCost(s.FinalAnnualIncome, s.TotalInvested)

	return report
}

func snapshot(principal float64, rec domain.PeriodRecord, yearContrib, yearDiv, cumReinvested float64) domain.YearlySnapshot {
	invested := principal + rec.CumulativeContributions
	return domain.YearlySnapshot{
		Year:                    rec.Year,
		EndPeriod:               rec.Index,
		Shares:                  rec.EndingShares,
		Price:                   rec.EndingPrice,
		Value:                   rec.EndingValue,
		AnnualIncome:            rec.EndingAnnualIncome,
		ContributionsThisYear:   yearContrib,
		DividendsThisYear:       yearDiv,
		CumulativeContributions: rec.CumulativeContributions,
		CumulativeDividends:     rec.CumulativeDividends,
		CumulativeWithdrawals:   rec.CumulativeWithdrawals,
		InvestedCapital:         invested,
		PriceGain:               rec.EndingValue + rec.CumulativeWithdrawals - invested - cumReinvested,
		YieldOnCost:             yieldOnCost(rec.EndingAnnualIncome, invested),
	}
}

func milestone(kind domain.MilestoneKind, rec domain.PeriodRecord, threshold float64) domain.Milestone {
	return domain.Milestone{
		Kind:      kind,
		Period:    rec.Index,
		Year:      rec.Year,
		Threshold: threshold,
		Value:     rec.EndingValue,
	}
}

// yieldOnCost returns income / invested, or nil when nothing was invested.
func yieldOnCost(annualIncome, invested float64) *float64 {
	if invested <= 0 {
		return nil
	}
	v := annualIncome / invested
	return &v
}

// annualizedReturn returns the compound annual growth rate from invested to
// ending over years, or nil when undefined.
func annualizedReturn(invested, ending, years float64) *float64 {
	if invested <= 0 || ending <= 0 || years <= 0 {
		return nil
	}
	v := math.Pow(ending/invested, 1/years) - 1
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
