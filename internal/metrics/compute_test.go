package metrics

import (
	"math"
	"testing"

	"dividend-projection-lab/internal/domain"
)

func makeNormalized(principal float64, thresholds ...float64) *domain.NormalizedConfig {
	return &domain.NormalizedConfig{
		PeriodsPerYear:      12,
		InitialPrincipal:    principal,
		InitialPrice:        100,
		MilestoneThresholds: thresholds,
	}
}

// makeTrace builds n monthly records with contribution 100, net dividend 10*i
// and ending value 100*(i+1).
func makeTrace(n int) []domain.PeriodRecord {
	trace := make([]domain.PeriodRecord, n)
	var cumContrib, cumDiv float64
	for i := range trace {
		div := 10 * float64(i)
		cumContrib += 100
		cumDiv += div
		trace[i] = domain.PeriodRecord{
			Index:                   i,
			Year:                    i/12 + 1,
			Phase:                   domain.PhaseAccumulating,
			DividendCash:            div,
			NetDividend:             div,
			DividendReinvested:      div,
			Contribution:            100,
			EndingShares:            float64(i + 1),
			EndingPrice:             100,
			EndingValue:             100 * float64(i+1),
			EndingAnnualIncome:      12 * div,
			CumulativeContributions: cumContrib,
			CumulativeDividends:     cumDiv,
		}
	}
	return trace
}

func findMilestone(ms []domain.Milestone, kind domain.MilestoneKind, threshold float64) *domain.Milestone {
	for i := range ms {
		if ms[i].Kind == kind && ms[i].Threshold == threshold {
			return &ms[i]
		}
	}
	return nil
}

func TestAggregate_YearlySnapshots(t *testing.T) {
	report := Aggregate(makeNormalized(0), makeTrace(24), Options{})

	if len(report.YearlySnapshots) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(report.YearlySnapshots))
	}

	y1 := report.YearlySnapshots[0]
	if y1.Year != 1 || y1.EndPeriod != 11 {
		t.Errorf("year 1 snapshot at wrong period: year=%d end=%d", y1.Year, y1.EndPeriod)
	}
	if y1.ContributionsThisYear != 1200 {
		t.Errorf("expected 1200 contributed in year 1, got %f", y1.ContributionsThisYear)
	}
	if y1.DividendsThisYear != 660 {
		t.Errorf("expected 660 dividends in year 1, got %f", y1.DividendsThisYear)
	}

	y2 := report.YearlySnapshots[1]
	if y2.CumulativeContributions != 2400 || y2.InvestedCapital != 2400 {
		t.Errorf("year 2 cumulative mismatch: %+v", y2)
	}
	if y2.DividendsThisYear != 10*(276-66) {
		t.Errorf("expected year 2 dividends %d, got %f", 10*(276-66), y2.DividendsThisYear)
	}
	if y2.YieldOnCost == nil {
		t.Fatal("expected yield on cost for year 2")
	}
	if want := y2.AnnualIncome / 2400; math.Abs(*y2.YieldOnCost-want) > 1e-12 {
		t.Errorf("yield on cost: expected %f, got %f", want, *y2.YieldOnCost)
	}
}

func TestAggregate_PartialFinalYear(t *testing.T) {
	report := Aggregate(makeNormalized(0), makeTrace(18), Options{})

	if len(report.YearlySnapshots) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(report.YearlySnapshots))
	}
	last := report.YearlySnapshots[1]
	if last.Year != 2 || last.EndPeriod != 17 {
		t.Errorf("partial year snapshot wrong: year=%d end=%d", last.Year, last.EndPeriod)
	}
	if last.ContributionsThisYear != 600 {
		t.Errorf("expected 600 contributed in partial year, got %f", last.ContributionsThisYear)
	}
}

func TestAggregate_YieldOnCostNilWithoutInvestment(t *testing.T) {
	trace := []domain.PeriodRecord{
		{Index: 0, Year: 1, Phase: domain.PhaseAccumulating},
	}
	report := Aggregate(&domain.NormalizedConfig{PeriodsPerYear: 1, InitialPrice: 100}, trace, Options{})

	if report.YearlySnapshots[0].YieldOnCost != nil {
		t.Errorf("expected nil yield on cost, got %f", *report.YearlySnapshots[0].YieldOnCost)
	}
	if report.Summary.FinalYieldOnCost != nil {
		t.Errorf("expected nil final yield on cost")
	}
	if report.Summary.AnnualizedReturn != nil {
		t.Errorf("expected nil annualized return")
	}
}

func TestAggregate_DividendsExceedContributions(t *testing.T) {
	report := Aggregate(makeNormalized(0), makeTrace(36), Options{})

	m := findMilestone(report.Milestones, domain.MilestoneDividendsExceedContributions, 0)
	if m == nil {
		t.Fatal("expected dividends_exceed_contributions milestone")
	}
	// Trailing 12: 10*(12k-66) >= 1200 first holds at k=16.
	if m.Period != 16 {
		t.Errorf("expected milestone at period 16, got %d", m.Period)
	}

	count := 0
	for _, ms := range report.Milestones {
		if ms.Kind == domain.MilestoneDividendsExceedContributions {
			count++
		}
	}
	if count != 1 {
		t.Errorf("milestone must fire once, fired %d times", count)
	}
}

func TestAggregate_CustomWindow(t *testing.T) {
	report := Aggregate(makeNormalized(0), makeTrace(36), Options{Window: 1})

	m := findMilestone(report.Milestones, domain.MilestoneDividendsExceedContributions, 0)
	if m == nil || m.Period != 10 {
		t.Errorf("expected single-period window milestone at period 10, got %+v", m)
	}
}

func TestAggregate_ValueThresholds(t *testing.T) {
	report := Aggregate(makeNormalized(0, 1000, 2000, 1e9), makeTrace(24), Options{})

	m1 := findMilestone(report.Milestones, domain.MilestoneValueThreshold, 1000)
	if m1 == nil || m1.Period != 9 {
		t.Errorf("expected 1000 threshold at period 9, got %+v", m1)
	}
	m2 := findMilestone(report.Milestones, domain.MilestoneValueThreshold, 2000)
	if m2 == nil || m2.Period != 19 {
		t.Errorf("expected 2000 threshold at period 19, got %+v", m2)
	}
	if findMilestone(report.Milestones, domain.MilestoneValueThreshold, 1e9) != nil {
		t.Errorf("unreached threshold must not produce a milestone")
	}
}

func TestAggregate_WithdrawalStarted(t *testing.T) {
	trace := makeTrace(6)
	for i := 3; i < 6; i++ {
		trace[i].Phase = domain.PhaseWithdrawing
		trace[i].Withdrawal = 50
		trace[i].CumulativeWithdrawals = 50 * float64(i-2)
	}

	report := Aggregate(makeNormalized(0), trace, Options{})

	m := findMilestone(report.Milestones, domain.MilestoneWithdrawalStarted, 0)
	if m == nil || m.Period != 3 {
		t.Fatalf("expected withdrawal milestone at period 3, got %+v", m)
	}
	if report.Summary.WithdrawalStartPeriod == nil || *report.Summary.WithdrawalStartPeriod != 3 {
		t.Errorf("expected summary withdrawal start 3")
	}
	if report.Summary.FinalPhase != domain.PhaseWithdrawing {
		t.Errorf("expected final phase WITHDRAWING, got %s", report.Summary.FinalPhase)
	}
	if report.Summary.TotalWithdrawals != 150 {
		t.Errorf("expected total withdrawals 150, got %f", report.Summary.TotalWithdrawals)
	}
}

func TestAggregate_Summary(t *testing.T) {
	report := Aggregate(makeNormalized(1000), makeTrace(24), Options{})
	s := report.Summary

	if s.Periods != 24 || s.Years != 2 {
		t.Errorf("expected 24 periods / 2 years, got %d / %f", s.Periods, s.Years)
	}
	if s.TotalInvested != 3400 {
		t.Errorf("expected invested 3400, got %f", s.TotalInvested)
	}
	if s.FinalValue != 2400 {
		t.Errorf("expected final value 2400, got %f", s.FinalValue)
	}
	if s.TotalReturn != -1000 {
		t.Errorf("expected total return -1000, got %f", s.TotalReturn)
	}
	if math.Abs(s.TotalReturnPct-(-1000.0/3400*100)) > 1e-9 {
		t.Errorf("unexpected total return pct %f", s.TotalReturnPct)
	}
	if s.TotalDividends != 10*276 {
		t.Errorf("expected total dividends %d, got %f", 10*276, s.TotalDividends)
	}
	if s.AnnualizedReturn == nil {
		t.Fatal("expected annualized return")
	}
	want := math.Pow(2400.0/3400, 0.5) - 1
	if math.Abs(*s.AnnualizedReturn-want) > 1e-12 {
		t.Errorf("annualized return: expected %f, got %f", want, *s.AnnualizedReturn)
	}
}

func TestAggregate_EmptyTrace(t *testing.T) {
	report := Aggregate(makeNormalized(500), nil, Options{})

	if len(report.YearlySnapshots) != 0 {
		t.Errorf("expected no snapshots")
	}
	if report.Summary.FinalValue != 500 || report.Summary.TotalReturn != 0 {
		t.Errorf("empty trace should report the principal unchanged: %+v", report.Summary)
	}
}

func TestAnnualizedReturn(t *testing.T) {
	got := annualizedReturn(100, 200, 1)
	if got == nil || math.Abs(*got-1) > 1e-12 {
		t.Errorf("expected 100%% annualized return")
	}
	if annualizedReturn(0, 200, 1) != nil {
		t.Errorf("expected nil for zero invested")
	}
	if annualizedReturn(100, 0, 1) != nil {
		t.Errorf("expected nil for zero ending value")
	}
}
