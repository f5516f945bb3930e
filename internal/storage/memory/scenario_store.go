package memory

import (
	"context"
	"sort"
	"sync"

	"dividend-projection-lab/internal/domain"
	"dividend-projection-lab/internal/storage"
)

// ScenarioStore is an in-memory implementation of storage.ScenarioStore.
type ScenarioStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Scenario
}

// NewScenarioStore creates a new in-memory scenario store.
func NewScenarioStore() *ScenarioStore {
	return &ScenarioStore{
		data: make(map[string]*domain.Scenario),
	}
}

// Insert adds a new scenario. Returns ErrDuplicateKey if id exists.
func (s *ScenarioStore) Insert(_ context.Context, sc *domain.Scenario) error {
	if sc == nil || sc.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[sc.ID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[sc.ID] = copyScenario(sc)
	return nil
}

// GetByID retrieves a scenario by its ID.
func (s *ScenarioStore) GetByID(_ context.Context, id string) (*domain.Scenario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc, ok := s.data[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyScenario(sc), nil
}

// List retrieves all scenarios, ordered by created_at ASC, id ASC.
func (s *ScenarioStore) List(_ context.Context) ([]*domain.Scenario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Scenario, 0, len(s.data))
	for _, sc := range s.data {
		result = append(result, copyScenario(sc))
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// copyScenario deep-copies the slices of a scenario config.
func copyScenario(sc *domain.Scenario) *domain.Scenario {
	c := *sc
	cfg := &c.Config
	cfg.Contribution.Pauses = append([]domain.PeriodRange(nil), cfg.Contribution.Pauses...)
	cfg.Contribution.LumpSums = append([]domain.LumpSum(nil), cfg.Contribution.LumpSums...)
	cfg.MilestoneThresholds = append([]float64(nil), cfg.MilestoneThresholds...)
	if cfg.Withdrawal != nil {
		w := *cfg.Withdrawal
		cfg.Withdrawal = &w
	}
	return &c
}

var _ storage.ScenarioStore = (*ScenarioStore)(nil)
