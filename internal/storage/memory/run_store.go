package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"dividend-projection-lab/internal/domain"
	"dividend-projection-lab/internal/storage"
)

// RunStore is an in-memory implementation of storage.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Run
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		data: make(map[string]*domain.Run),
	}
}

// Insert adds a new run. Returns ErrDuplicateKey if id exists.
func (s *RunStore) Insert(_ context.Context, r *domain.Run) error {
	if r == nil || r.ID == "" || r.ScenarioID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.ID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[r.ID] = copyRun(r)
	return nil
}

// GetByID retrieves a run by its ID.
func (s *RunStore) GetByID(_ context.Context, id string) (*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.data[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyRun(r), nil
}

// GetByScenarioID retrieves all runs of a scenario, ordered by created_at ASC, id ASC.
func (s *RunStore) GetByScenarioID(_ context.Context, scenarioID string) ([]*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Run
	for _, r := range s.data {
		if r.ScenarioID == scenarioID {
			result = append(result, copyRun(r))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// DeleteOlderThan removes runs created before cutoff and returns their IDs sorted.
func (s *RunStore) DeleteOlderThan(_ context.Context, cutoff time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted []string
	for id, r := range s.data {
		if r.CreatedAt.Before(cutoff) {
			deleted = append(deleted, id)
			delete(s.data, id)
		}
	}

	sort.Strings(deleted)
	return deleted, nil
}

func copyRun(r *domain.Run) *domain.Run {
	c := *r
	if r.Summary != nil {
		sum := *r.Summary
		c.Summary = &sum
	}
	return &c
}

var _ storage.RunStore = (*RunStore)(nil)
