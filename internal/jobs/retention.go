package jobs

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"dividend-projection-lab/internal/observability"
)

// Purger deletes runs created before a cutoff.
type Purger interface {
	PurgeOlderThan(ctx context.Context, cutoff time.Time) ([]string, error)
}

// RetentionJob removes runs older than MaxAge.
type RetentionJob struct {
	purger  Purger
	maxAge  time.Duration
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// RetentionOptions contains configuration for creating a RetentionJob.
type RetentionOptions struct {
	Purger  Purger
	MaxAge  time.Duration
	Metrics *observability.Metrics // nil means observability.DefaultMetrics
	Logger  *zap.Logger            // nil means zap.NewNop()
}

// ErrInvalidMaxAge is returned when the retention window is not positive.
var ErrInvalidMaxAge = errors.New("retention max age must be positive")

// NewRetentionJob creates a retention job.
func NewRetentionJob(opts RetentionOptions) (*RetentionJob, error) {
	if opts.Purger == nil {
		return nil, errors.New("retention purger is required")
	}
	if opts.MaxAge <= 0 {
		return nil, ErrInvalidMaxAge
	}
	j := &RetentionJob{
		purger:  opts.Purger,
		maxAge:  opts.MaxAge,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
	if j.metrics == nil {
		j.metrics = observability.DefaultMetrics
	}
	if j.logger == nil {
		j.logger = zap.NewNop()
	}
	return j, nil
}

// WithClock sets a custom clock function for deterministic cutoffs.
func (j *RetentionJob) WithClock(now func() time.Time) *RetentionJob {
	j.now = now
	return j
}

// Run performs one sweep and returns the purged run IDs.
func (j *RetentionJob) Run(ctx context.Context) ([]string, error) {
	cutoff := j.now().Add(-j.maxAge)
	ids, err := j.purger.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		j.logger.Error("retention sweep failed", zap.Time("cutoff", cutoff), zap.Error(err))
		return ids, err
	}

	j.metrics.LastSuccessfulRetention.SetToCurrentTime()
	j.logger.Info("retention sweep done", zap.Time("cutoff", cutoff), zap.Int("purged", len(ids)))
	return ids, nil
}

// Schedule registers the job on s under spec.
func (j *RetentionJob) Schedule(s *Scheduler, spec string) error {
	_, err := s.Add(spec, func(ctx context.Context) {
		_, _ = j.Run(ctx)
	})
	return err
}
