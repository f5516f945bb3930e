package storage

import (
	"context"
	"time"

	"dividend-projection-lab/internal/domain"
)

// ScenarioStore provides access to scenarios storage.
type ScenarioStore interface {
	// Insert adds a new scenario. Returns ErrDuplicateKey if id exists.
	Insert(ctx context.Context, s *domain.Scenario) error

	// GetByID retrieves a scenario by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Scenario, error)

	// List retrieves all scenarios, ordered by created_at ASC, id ASC.
	List(ctx context.Context) ([]*domain.Scenario, error)
}

// RunStore provides access to simulation_runs storage.
type RunStore interface {
	// Insert adds a new run. Returns ErrDuplicateKey if id exists.
	Insert(ctx context.Context, r *domain.Run) error

	// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Run, error)

	// GetByScenarioID retrieves all runs of a scenario, ordered by created_at ASC.
	GetByScenarioID(ctx context.Context, scenarioID string) ([]*domain.Run, error)

	// DeleteOlderThan removes runs created before cutoff and returns their IDs.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) ([]string, error)
}

// PeriodRecordStore provides access to period_records storage.
type PeriodRecordStore interface {
	// InsertBulk adds the trace of a run atomically.
	// Returns ErrDuplicateKey if any (run_id, period_index) exists.
	InsertBulk(ctx context.Context, runID string, records []domain.PeriodRecord) error

	// GetByRunID retrieves the trace of a run, ordered by period_index ASC.
	GetByRunID(ctx context.Context, runID string) ([]domain.PeriodRecord, error)

	// DeleteByRunIDs removes the traces of the given runs.
	DeleteByRunIDs(ctx context.Context, runIDs []string) error
}
