package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"dividend-projection-lab/internal/domain"
	"dividend-projection-lab/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

const runColumns = `
	id, scenario_id, status, period_count,
	final_value, final_annual_income, total_invested,
	summary, error, created_at
`

// Insert adds a new run. Returns ErrDuplicateKey if id exists and
// ErrInvalidInput if the scenario does not exist.
func (s *RunStore) Insert(ctx context.Context, r *domain.Run) (err error) {
	if r == nil || r.ID == "" || r.ScenarioID == "" {
		return storage.ErrInvalidInput
	}
	defer func(start time.Time) { observe("insert_run", start, err) }(time.Now())

	var summary []byte
	if r.Summary != nil {
		summary, err = json.Marshal(r.Summary)
		if err != nil {
			return fmt.Errorf("marshal run summary: %w", err)
		}
	}

	query := `
		INSERT INTO simulation_runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = s.pool.Exec(ctx, query,
		r.ID, r.ScenarioID, string(r.Status), r.PeriodCount,
		r.FinalValue, r.FinalAnnualIncome, r.TotalInvested,
		summary, r.Error, r.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		if isForeignKeyError(err) {
			return fmt.Errorf("%w: unknown scenario %s", storage.ErrInvalidInput, r.ScenarioID)
		}
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, id string) (r *domain.Run, err error) {
	defer func(start time.Time) { observe("get_run", start, err) }(time.Now())

	query := `SELECT ` + runColumns + ` FROM simulation_runs WHERE id::text = $1`

	r, err = scanRun(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get run by id: %w", err)
	}
	return r, nil
}

// GetByScenarioID retrieves all runs of a scenario, ordered by created_at ASC, id ASC.
func (s *RunStore) GetByScenarioID(ctx context.Context, scenarioID string) (result []*domain.Run, err error) {
	defer func(start time.Time) { observe("get_runs_by_scenario", start, err) }(time.Now())

	query := `
		SELECT ` + runColumns + `
		FROM simulation_runs
		WHERE scenario_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("get runs by scenario: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return result, nil
}

// DeleteOlderThan removes runs created before cutoff and returns their IDs sorted.
func (s *RunStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (ids []string, err error) {
	defer func(start time.Time) { observe("delete_runs", start, err) }(time.Now())

	query := `
		WITH deleted AS (
			DELETE FROM simulation_runs
			WHERE created_at < $1
			RETURNING id::text AS id
		)
		SELECT id FROM deleted ORDER BY id
	`

	rows, err := s.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("delete runs: %w", err)
	}
	ids, err = pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect deleted run ids: %w", err)
	}
	return ids, nil
}

func scanRun(row pgx.Row) (*domain.Run, error) {
	var (
		r       domain.Run
		status  string
		summary []byte
	)
	err := row.Scan(
		&r.ID, &r.ScenarioID, &status, &r.PeriodCount,
		&r.FinalValue, &r.FinalAnnualIncome, &r.TotalInvested,
		&summary, &r.Error, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Status = domain.RunStatus(status)
	r.CreatedAt = r.CreatedAt.UTC()
	if len(summary) > 0 {
		var sum domain.Summary
		if err := json.Unmarshal(summary, &sum); err != nil {
			return nil, fmt.Errorf("unmarshal run summary: %w", err)
		}
		r.Summary = &sum
	}
	return &r, nil
}
