package metrics

import (
	"context"
	"errors"
	"fmt"

	"dividend-projection-lab/internal/domain"
	"dividend-projection-lab/internal/storage"
	"dividend-projection-lab/internal/validation"
)

// ErrNoRecords is returned when a stored run has no period records to aggregate.
var ErrNoRecords = errors.New("no period records available for aggregation")

// Aggregator rebuilds reports from persisted runs.
type Aggregator struct {
	scenarioStore storage.ScenarioStore
	runStore      storage.RunStore
	recordStore   storage.PeriodRecordStore
	opts          Options
}

// NewAggregator creates a new metrics aggregator.
func NewAggregator(scenarioStore storage.ScenarioStore, runStore storage.RunStore, recordStore storage.PeriodRecordStore, opts Options) *Aggregator {
	return &Aggregator{
		scenarioStore: scenarioStore,
		runStore:      runStore,
		recordStore:   recordStore,
		opts:          opts,
	}
}

// ComputeReport aggregates the stored trace of a run.
// Degenerate runs yield a report over their partial trace.
// Returns ErrNoRecords if the trace is empty.
func (a *Aggregator) ComputeReport(ctx context.Context, runID string) (*domain.SimulationReport, error) {
	run, err := a.runStore.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}

	scenario, err := a.scenarioStore.GetByID(ctx, run.ScenarioID)
	if err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", run.ScenarioID, err)
	}

	// Stored configs were valid when run; normalizing again recovers
	// the per-period base without re-simulating.
	n, err := validation.Normalize(scenario.Config, validation.Options{})
	if err != nil {
		return nil, err
	}

	records, err := a.recordStore.GetByRunID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	return Aggregate(n, records, a.opts), nil
}
