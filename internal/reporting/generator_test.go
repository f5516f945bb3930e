package reporting

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"dividend-projection-lab/internal/domain"
	"dividend-projection-lab/internal/engine"
	"dividend-projection-lab/internal/metrics"
	"dividend-projection-lab/internal/storage"
	"dividend-projection-lab/internal/storage/memory"
)

var fixedClock = func() time.Time { return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC) }

func saverConfig() domain.SimulationConfig {
	return domain.SimulationConfig{
		InitialPrincipal:      10_000,
		InitialSharePrice:     50,
		DividendYield:         0.04,
		DividendGrowthRate:    0.06,
		PriceAppreciationRate: 0.05,
		HorizonYears:          5,
		Frequency:             domain.FrequencyMonthly,
		Contribution:          domain.ContributionConfig{Mode: domain.ContributionFlat, Amount: 500},
		ReinvestMode:          domain.ReinvestDRIP,
		TaxDrag:               0.15,
		MilestoneThresholds:   []float64{25_000, 50_000},
	}
}

func simulate(t *testing.T, cfg domain.SimulationConfig) *domain.SimulationReport {
	t.Helper()
	report, err := engine.New(engine.Options{}).Simulate(cfg)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	return report
}

func setupStores(t *testing.T) (*memory.ScenarioStore, *memory.RunStore, *memory.PeriodRecordStore) {
	t.Helper()
	ctx := context.Background()

	scenarios := memory.NewScenarioStore()
	runs := memory.NewRunStore()
	traces := memory.NewPeriodRecordStore()

	cfg := saverConfig()
	sim := simulate(t, cfg)

	if err := scenarios.Insert(ctx, &domain.Scenario{ID: "sc-1", Name: "Saver", Config: cfg, CreatedAt: fixedClock()}); err != nil {
		t.Fatalf("Insert scenario failed: %v", err)
	}
	run := &domain.Run{
		ID:          "run-1",
		ScenarioID:  "sc-1",
		Status:      domain.RunStatusCompleted,
		PeriodCount: len(sim.Trace),
		FinalValue:  sim.Summary.FinalValue,
		Summary:     &sim.Summary,
		CreatedAt:   fixedClock(),
	}
	if err := runs.Insert(ctx, run); err != nil {
		t.Fatalf("Insert run failed: %v", err)
	}
	if err := traces.InsertBulk(ctx, "run-1", sim.Trace); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	return scenarios, runs, traces
}

func TestGenerator_Build(t *testing.T) {
	sim := simulate(t, saverConfig())
	report := NewGenerator(nil, nil, nil).WithClock(fixedClock).Build("Saver", sim)

	if !report.GeneratedAt.Equal(fixedClock()) {
		t.Errorf("GeneratedAt = %v, want injected clock", report.GeneratedAt)
	}
	if len(report.Yearly) != 5 {
		t.Fatalf("expected 5 yearly rows, got %d", len(report.Yearly))
	}
	if report.Summary.Periods != 60 {
		t.Errorf("expected 60 periods, got %d", report.Summary.Periods)
	}

	want := Money(sim.Summary.FinalValue)
	if !report.Summary.FinalValue.Equal(want) {
		t.Errorf("FinalValue = %s, want %s", report.Summary.FinalValue, want)
	}
	if report.Summary.FinalValue.Exponent() < -2 {
		t.Errorf("money should be rounded to cents, got %s", report.Summary.FinalValue.String())
	}
	if len(report.Milestones) != len(sim.Milestones) {
		t.Errorf("expected %d milestones, got %d", len(sim.Milestones), len(report.Milestones))
	}
	if len(report.Trace) != 60 {
		t.Errorf("trace should be carried for export, got %d records", len(report.Trace))
	}
}

func TestGenerator_GenerateFromStores(t *testing.T) {
	scenarios, runs, traces := setupStores(t)
	aggregator := metrics.NewAggregator(scenarios, runs, traces, metrics.Options{})
	gen := NewGenerator(scenarios, runs, aggregator).WithClock(fixedClock)

	report, err := gen.Generate(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if report.RunID != "run-1" || report.ScenarioID != "sc-1" {
		t.Errorf("unexpected identifiers: run=%q scenario=%q", report.RunID, report.ScenarioID)
	}
	if report.Title != "Saver" {
		t.Errorf("Title = %q, want scenario name", report.Title)
	}

	direct := NewGenerator(nil, nil, nil).WithClock(fixedClock).Build("Saver", simulate(t, saverConfig()))
	if !report.Summary.FinalValue.Equal(direct.Summary.FinalValue) {
		t.Errorf("stored report diverges from direct simulation: %s vs %s",
			report.Summary.FinalValue, direct.Summary.FinalValue)
	}
}

func TestGenerator_UnknownRun(t *testing.T) {
	scenarios, runs, traces := setupStores(t)
	gen := NewGenerator(scenarios, runs, metrics.NewAggregator(scenarios, runs, traces, metrics.Options{}))

	_, err := gen.Generate(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGenerator_WithoutStores(t *testing.T) {
	if _, err := NewGenerator(nil, nil, nil).Generate(context.Background(), "run-1"); err == nil {
		t.Error("expected error when stores are not configured")
	}
}

func TestRenderMarkdown(t *testing.T) {
	report := NewGenerator(nil, nil, nil).WithClock(fixedClock).Build("Saver", simulate(t, saverConfig()))
	md := RenderMarkdown(report)

	for _, want := range []string{
		"# Saver",
		"Generated: 2024-01-15T12:00:00Z",
		"## Assumptions",
		"| Dividend yield | 4.00% |",
		"## Summary",
		"| Final Value | $" + report.Summary.FinalValue.StringFixed(2) + " |",
		"## Year by Year",
		"## Milestones",
		"Portfolio reaches $25000",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderMarkdown_Deterministic(t *testing.T) {
	gen := NewGenerator(nil, nil, nil).WithClock(fixedClock)
	first := RenderMarkdown(gen.Build("Saver", simulate(t, saverConfig())))

	for i := 0; i < 5; i++ {
		again := RenderMarkdown(gen.Build("Saver", simulate(t, saverConfig())))
		if again != first {
			t.Fatalf("render %d differs from first", i)
		}
	}
}

func TestRenderMarkdown_Empty(t *testing.T) {
	md := RenderMarkdown(&Report{GeneratedAt: fixedClock()})

	if !strings.Contains(md, "# Dividend Projection") {
		t.Error("expected default title")
	}
	if !strings.Contains(md, "No yearly snapshots available.") {
		t.Error("expected empty yearly fallback")
	}
	if !strings.Contains(md, "No milestones reached.") {
		t.Error("expected empty milestones fallback")
	}
	if !strings.Contains(md, "| Yield on Cost | n/a |") {
		t.Error("nil yield on cost should render as n/a")
	}
}

func TestRenderYearlyCSV(t *testing.T) {
	report := NewGenerator(nil, nil, nil).Build("Saver", simulate(t, saverConfig()))
	csv := RenderYearlyCSV(report.Yearly)

	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected header + 5 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "year,value,annual_income") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "1,") {
		t.Errorf("first row should be year 1: %s", lines[1])
	}
	for i, line := range lines {
		if got := strings.Count(line, ","); got != 9 {
			t.Errorf("line %d has %d separators, want 9", i, got)
		}
	}
}

func TestRenderTraceCSV(t *testing.T) {
	sim := simulate(t, saverConfig())
	csv := RenderTraceCSV(sim.Trace)

	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if len(lines) != len(sim.Trace)+1 {
		t.Fatalf("expected %d lines, got %d", len(sim.Trace)+1, len(lines))
	}
	if !strings.HasPrefix(lines[1], "0,1,ACCUMULATING,") {
		t.Errorf("unexpected first row: %s", lines[1])
	}
}

func TestMoneyAndPercent(t *testing.T) {
	if got := Money(1234.565).StringFixed(2); got != "1234.57" {
		t.Errorf("Money(1234.565) = %s", got)
	}
	if got := Percent(0.0425).StringFixed(2); got != "4.25" {
		t.Errorf("Percent(0.0425) = %s", got)
	}
	if percentPtr(nil) != nil {
		t.Error("percentPtr(nil) should be nil")
	}
}
