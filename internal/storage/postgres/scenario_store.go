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

// ScenarioStore implements storage.ScenarioStore using PostgreSQL.
type ScenarioStore struct {
	pool *Pool
}

// NewScenarioStore creates a new ScenarioStore.
func NewScenarioStore(pool *Pool) *ScenarioStore {
	return &ScenarioStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ScenarioStore = (*ScenarioStore)(nil)

// Insert adds a new scenario. Returns ErrDuplicateKey if id exists.
func (s *ScenarioStore) Insert(ctx context.Context, sc *domain.Scenario) (err error) {
	if sc == nil || sc.ID == "" {
		return storage.ErrInvalidInput
	}
	defer func(start time.Time) { observe("insert_scenario", start, err) }(time.Now())

	cfg, err := json.Marshal(sc.Config)
	if err != nil {
		return fmt.Errorf("marshal scenario config: %w", err)
	}

	query := `
		INSERT INTO scenarios (id, name, config, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err = s.pool.Exec(ctx, query, sc.ID, sc.Name, cfg, sc.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert scenario: %w", err)
	}
	return nil
}

// GetByID retrieves a scenario by its ID. Returns ErrNotFound if not exists.
func (s *ScenarioStore) GetByID(ctx context.Context, id string) (sc *domain.Scenario, err error) {
	defer func(start time.Time) { observe("get_scenario", start, err) }(time.Now())

	query := `
		SELECT id, name, config, created_at
		FROM scenarios
		WHERE id = $1
	`

	sc, err = scanScenario(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get scenario by id: %w", err)
	}
	return sc, nil
}

// List retrieves all scenarios, ordered by created_at ASC, id ASC.
func (s *ScenarioStore) List(ctx context.Context) (result []*domain.Scenario, err error) {
	defer func(start time.Time) { observe("list_scenarios", start, err) }(time.Now())

	query := `
		SELECT id, name, config, created_at
		FROM scenarios
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		sc, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scenario: %w", err)
		}
		result = append(result, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scenarios: %w", err)
	}

	return result, nil
}

func scanScenario(row pgx.Row) (*domain.Scenario, error) {
	var (
		sc  domain.Scenario
		cfg []byte
	)
	if err := row.Scan(&sc.ID, &sc.Name, &cfg, &sc.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(cfg, &sc.Config); err != nil {
		return nil, fmt.Errorf("unmarshal scenario config: %w", err)
	}
	sc.CreatedAt = sc.CreatedAt.UTC()
	return &sc, nil
}
