package memory

import (
	"context"
	"sync"

	"dividend-projection-lab/internal/domain"
	"dividend-projection-lab/internal/storage"
)

// PeriodRecordStore is an in-memory implementation of storage.PeriodRecordStore.
type PeriodRecordStore struct {
	mu   sync.RWMutex
	data map[string][]domain.PeriodRecord // keyed by run_id, ordered by index
}

// NewPeriodRecordStore creates a new in-memory period record store.
func NewPeriodRecordStore() *PeriodRecordStore {
	return &PeriodRecordStore{
		data: make(map[string][]domain.PeriodRecord),
	}
}

// InsertBulk adds the trace of a run atomically.
// Records must have strictly increasing indices; a run's trace is written once.
func (s *PeriodRecordStore) InsertBulk(_ context.Context, runID string, records []domain.PeriodRecord) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(records) == 0 {
		return nil
	}

	// Check intra-batch ordering and duplicates
	for i := 1; i < len(records); i++ {
		if records[i].Index == records[i-1].Index {
			return storage.ErrDuplicateKey
		}
		if records[i].Index < records[i-1].Index {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[runID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[runID] = append([]domain.PeriodRecord(nil), records...)
	return nil
}

// GetByRunID retrieves the trace of a run, ordered by index ASC.
// Returns an empty slice for an unknown run.
func (s *PeriodRecordStore) GetByRunID(_ context.Context, runID string) ([]domain.PeriodRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]domain.PeriodRecord{}, s.data[runID]...), nil
}

// DeleteByRunIDs removes the traces of the given runs.
func (s *PeriodRecordStore) DeleteByRunIDs(_ context.Context, runIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range runIDs {
		delete(s.data, id)
	}
	return nil
}

var _ storage.PeriodRecordStore = (*PeriodRecordStore)(nil)
