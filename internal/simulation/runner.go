// Package simulation persists scenarios and runs them through the engine.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dividend-projection-lab/internal/domain"
	"dividend-projection-lab/internal/engine"
	"dividend-projection-lab/internal/idhash"
	"dividend-projection-lab/internal/observability"
	"dividend-projection-lab/internal/storage"
	"dividend-projection-lab/internal/validation"
)

// Metric sources
const (
	SourceAPI    = "api"
	SourceStream = "stream"
	SourceStored = "stored"
	SourceCLI    = "cli"
)

// Runner errors
var (
	ErrEmptyName = errors.New("scenario name is required")
)

// Runner executes projections and persists scenarios, runs and traces.
type Runner struct {
	engine        *engine.Engine
	scenarioStore storage.ScenarioStore
	runStore      storage.RunStore
	recordStore   storage.PeriodRecordStore
	metrics       *observability.Metrics
	logger        *zap.Logger
	now           func() time.Time
	newID         func() string
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	Engine        *engine.Engine // nil means engine.New(engine.Options{})
	ScenarioStore storage.ScenarioStore
	RunStore      storage.RunStore
	RecordStore   storage.PeriodRecordStore
	Metrics       *observability.Metrics // nil means observability.DefaultMetrics
	Logger        *zap.Logger            // nil means zap.NewNop()
}

// NewRunner creates a simulation runner.
func NewRunner(opts RunnerOptions) *Runner {
	r := &Runner{
		engine:        opts.Engine,
		scenarioStore: opts.ScenarioStore,
		runStore:      opts.RunStore,
		recordStore:   opts.RecordStore,
		metrics:       opts.Metrics,
		logger:        opts.Logger,
		now:           func() time.Time { return time.Now().UTC() },
		newID:         uuid.NewString,
	}
	if r.engine == nil {
		r.engine = engine.New(engine.Options{})
	}
	if r.metrics == nil {
		r.metrics = observability.DefaultMetrics
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	return r
}

// WithClock sets a custom clock function for deterministic timestamps.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

// Engine returns the underlying engine.
func (r *Runner) Engine() *engine.Engine {
	return r.engine
}

// Simulate runs cfg without persisting it and records metrics under source.
// observe may be nil.
func (r *Runner) Simulate(source string, cfg domain.SimulationConfig, observe engine.Observer) (*domain.SimulationReport, error) {
	start := time.Now()
	report, err := r.engine.Run(cfg, observe)
	r.record(source, start, report, err)
	return report, err
}

// SaveScenario validates cfg and stores it under a content-derived ID.
// Saving the same name and config again returns the stored scenario.
func (r *Runner) SaveScenario(ctx context.Context, name string, cfg domain.SimulationConfig) (*domain.Scenario, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if _, err := validation.Normalize(cfg, validation.Options{}); err != nil {
		return nil, err
	}

	id, err := idhash.ComputeScenarioID(name, cfg)
	if err != nil {
		return nil, err
	}

	sc := &domain.Scenario{ID: id, Name: name, Config: cfg, CreatedAt: r.now()}
	err = r.scenarioStore.Insert(ctx, sc)
	if errors.Is(err, storage.ErrDuplicateKey) {
		return r.scenarioStore.GetByID(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("save scenario: %w", err)
	}

	r.logger.Info("scenario saved", zap.String("scenario_id", id), zap.String("name", name))
	return sc, nil
}

// RunScenario simulates a stored scenario and persists the run and its trace.
// A degenerate simulation is persisted with its partial trace and returned
// with status DEGENERATE, a nil report and a nil error.
func (r *Runner) RunScenario(ctx context.Context, scenarioID string) (*domain.Run, *domain.SimulationReport, error) {
	sc, err := r.scenarioStore.GetByID(ctx, scenarioID)
	if err != nil {
		return nil, nil, err
	}

	report, err := r.Simulate(SourceStored, sc.Config, nil)

	run := &domain.Run{
		ID:         r.newID(),
		ScenarioID: sc.ID,
		CreatedAt:  r.now(),
	}

	var trace []domain.PeriodRecord
	var degenerate *engine.DegenerateError
	switch {
	case err == nil:
		trace = report.Trace
		run.Status = domain.RunStatusCompleted
		run.PeriodCount = len(trace)
		run.FinalValue = report.Summary.FinalValue
		run.FinalAnnualIncome = report.Summary.FinalAnnualIncome
		run.TotalInvested = report.Summary.TotalInvested
		summary := report.Summary
		run.Summary = &summary
	case errors.As(err, &degenerate):
		trace = degenerate.Trace
		run.Status = domain.RunStatusDegenerate
		run.PeriodCount = len(trace)
		run.Error = degenerate.Error()
		if n := len(trace); n > 0 {
			run.FinalValue = trace[n-1].EndingValue
			run.FinalAnnualIncome = trace[n-1].EndingAnnualIncome
		}
		report = nil
	default:
		return nil, nil, err
	}

	// Trace first: an orphaned trace is unreachable, a run without its trace is not.
	if err := r.recordStore.InsertBulk(ctx, run.ID, trace); err != nil {
		return nil, nil, fmt.Errorf("persist trace: %w", err)
	}
	if err := r.runStore.Insert(ctx, run); err != nil {
		return nil, nil, fmt.Errorf("persist run: %w", err)
	}

	r.metrics.LastSuccessfulRun.SetToCurrentTime()
	r.logger.Info("run persisted",
		zap.String("run_id", run.ID),
		zap.String("scenario_id", sc.ID),
		zap.String("status", string(run.Status)),
		zap.Int("periods", run.PeriodCount),
	)

	return run, report, nil
}

// GetScenario returns a stored scenario.
func (r *Runner) GetScenario(ctx context.Context, id string) (*domain.Scenario, error) {
	return r.scenarioStore.GetByID(ctx, id)
}

// ListScenarios returns all stored scenarios.
func (r *Runner) ListScenarios(ctx context.Context) ([]*domain.Scenario, error) {
	return r.scenarioStore.List(ctx)
}

// GetRun returns a stored run.
func (r *Runner) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	return r.runStore.GetByID(ctx, id)
}

// ListRuns returns the runs of a scenario. Returns ErrNotFound for unknown scenarios.
func (r *Runner) ListRuns(ctx context.Context, scenarioID string) ([]*domain.Run, error) {
	if _, err := r.scenarioStore.GetByID(ctx, scenarioID); err != nil {
		return nil, err
	}
	return r.runStore.GetByScenarioID(ctx, scenarioID)
}

// GetRecords returns the stored trace of a run.
func (r *Runner) GetRecords(ctx context.Context, runID string) ([]domain.PeriodRecord, error) {
	if _, err := r.runStore.GetByID(ctx, runID); err != nil {
		return nil, err
	}
	return r.recordStore.GetByRunID(ctx, runID)
}

// PurgeOlderThan deletes runs created before cutoff together with their traces.
func (r *Runner) PurgeOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	ids, err := r.runStore.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("delete runs: %w", err)
	}
	if err := r.recordStore.DeleteByRunIDs(ctx, ids); err != nil {
		return ids, fmt.Errorf("delete traces: %w", err)
	}

	r.metrics.RunsPurged.Add(float64(len(ids)))
	return ids, nil
}

// record updates metrics and logs for one engine call.
func (r *Runner) record(source string, start time.Time, report *domain.SimulationReport, err error) {
	elapsed := time.Since(start).Seconds()

	var (
		verr       *validation.Error
		degenerate *engine.DegenerateError
	)
	switch {
	case err == nil:
		r.metrics.RecordSimulation(source, observability.StatusCompleted, len(report.Trace), elapsed)
	case errors.As(err, &verr):
		r.metrics.RecordSimulation(source, observability.StatusInvalid, 0, elapsed)
		r.logger.Debug("configuration rejected", zap.String("source", source), zap.Int("violations", len(verr.Violations)))
	case errors.As(err, &degenerate):
		r.metrics.RecordSimulation(source, observability.StatusDegenerate, len(degenerate.Trace), elapsed)
		r.logger.Warn("simulation degenerate",
			zap.String("source", source),
			zap.Int("period", degenerate.Period),
			zap.Float64("price", degenerate.Price),
		)
	default:
		r.logger.Error("simulation failed", zap.String("source", source), zap.Error(err))
	}
}
