package verification

import (
	"context"
	"errors"
	"fmt"

	"dividend-projection-lab/internal/domain"
	"dividend-projection-lab/internal/engine"
	"dividend-projection-lab/internal/observability"
	"dividend-projection-lab/internal/storage"
)

var (
	// ErrRunNotFound is returned when run ID doesn't exist.
	ErrRunNotFound = errors.New("run not found")

	// ErrScenarioNotFound is returned when a run's scenario doesn't exist.
	ErrScenarioNotFound = errors.New("scenario not found")
)

// ReplayVerifier implements Verifier by re-running the engine.
type ReplayVerifier struct {
	scenarioStore storage.ScenarioStore
	runStore      storage.RunStore
	recordStore   storage.PeriodRecordStore
	engine        *engine.Engine
}

// ReplayVerifierOptions contains configuration for creating a ReplayVerifier.
type ReplayVerifierOptions struct {
	ScenarioStore storage.ScenarioStore
	RunStore      storage.RunStore
	RecordStore   storage.PeriodRecordStore
	Engine        *engine.Engine // nil means engine.New(engine.Options{})
}

// NewReplayVerifier creates a new ReplayVerifier.
func NewReplayVerifier(opts ReplayVerifierOptions) *ReplayVerifier {
	eng := opts.Engine
	if eng == nil {
		eng = engine.New(engine.Options{})
	}
	return &ReplayVerifier{
		scenarioStore: opts.ScenarioStore,
		runStore:      opts.RunStore,
		recordStore:   opts.RecordStore,
		engine:        eng,
	}
}

var _ Verifier = (*ReplayVerifier)(nil)

// VerifyRun verifies a single run by replaying its scenario.
func (v *ReplayVerifier) VerifyRun(ctx context.Context, runID string) (*VerificationResult, error) {
	// 1. Load stored run and trace
	run, err := v.runStore.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}

	stored, err := v.recordStore.GetByRunID(ctx, runID)
	if err != nil {
		return nil, err
	}

	// 2. Replay
	status, replayed, err := v.replay(ctx, run.ScenarioID)
	if err != nil {
		return nil, err
	}

	// 3. Compare
	divergences := ComparePeriodRecords(stored, replayed)
	if status != run.Status {
		divergences = append([]FieldDivergence{{
			Period:   -1,
			Field:    "Status",
			Expected: run.Status,
			Actual:   status,
		}}, divergences...)
	}

	result := &VerificationResult{
		RunID:           runID,
		ScenarioID:      run.ScenarioID,
		Match:           len(divergences) == 0,
		StoredPeriods:   len(stored),
		ReplayedPeriods: len(replayed),
		Divergences:     divergences,
	}
	observability.RecordVerification(result.Match)
	return result, nil
}

// VerifyScenario verifies all runs of a scenario.
func (v *ReplayVerifier) VerifyScenario(ctx context.Context, scenarioID string) (*VerificationReport, error) {
	if _, err := v.scenarioStore.GetByID(ctx, scenarioID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrScenarioNotFound
		}
		return nil, err
	}

	runs, err := v.runStore.GetByScenarioID(ctx, scenarioID)
	if err != nil {
		return nil, err
	}

	report := &VerificationReport{
		TotalRuns: len(runs),
		Results:   make([]VerificationResult, 0, len(runs)),
	}

	for _, run := range runs {
		result, err := v.VerifyRun(ctx, run.ID)
		if err != nil {
			// Record error as divergence
			report.Results = append(report.Results, VerificationResult{
				RunID:      run.ID,
				ScenarioID: scenarioID,
				Match:      false,
				Divergences: []FieldDivergence{
					{Period: -1, Field: "Error", Expected: nil, Actual: err.Error()},
				},
			})
			report.DivergentRuns++
			continue
		}

		report.Results = append(report.Results, *result)
		if result.Match {
			report.MatchedRuns++
		} else {
			report.DivergentRuns++
		}
	}

	return report, nil
}

// replay re-executes the scenario and returns the status and trace the run should have.
func (v *ReplayVerifier) replay(ctx context.Context, scenarioID string) (domain.RunStatus, []domain.PeriodRecord, error) {
	sc, err := v.scenarioStore.GetByID(ctx, scenarioID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", nil, ErrScenarioNotFound
		}
		return "", nil, err
	}

	report, err := v.engine.Simulate(sc.Config)
	if err == nil {
		return domain.RunStatusCompleted, report.Trace, nil
	}

	var degenerate *engine.DegenerateError
	if errors.As(err, &degenerate) {
		return domain.RunStatusDegenerate, degenerate.Trace, nil
	}
	return "", nil, fmt.Errorf("replay scenario %s: %w", scenarioID, err)
}
