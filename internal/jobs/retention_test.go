package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dividend-projection-lab/internal/observability"
)

type fakePurger struct {
	cutoffs []time.Time
	ids     []string
	err     error
}

func (p *fakePurger) PurgeOlderThan(_ context.Context, cutoff time.Time) ([]string, error) {
	p.cutoffs = append(p.cutoffs, cutoff)
	return p.ids, p.err
}

func TestRetentionJob_Run(t *testing.T) {
	purger := &fakePurger{ids: []string{"a", "b"}}
	metrics := observability.NewMetricsWith(prometheus.NewRegistry(), "test")

	job, err := NewRetentionJob(RetentionOptions{Purger: purger, MaxAge: 48 * time.Hour, Metrics: metrics})
	require.NoError(t, err)

	now := time.Date(2024, 6, 10, 3, 0, 0, 0, time.UTC)
	job.WithClock(func() time.Time { return now })

	ids, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
	require.Len(t, purger.cutoffs, 1)
	assert.Equal(t, now.Add(-48*time.Hour), purger.cutoffs[0])
	assert.Greater(t, testutil.ToFloat64(metrics.LastSuccessfulRetention), 0.0)
}

func TestRetentionJob_RunError(t *testing.T) {
	purger := &fakePurger{err: errors.New("db down")}
	metrics := observability.NewMetricsWith(prometheus.NewRegistry(), "test")

	job, err := NewRetentionJob(RetentionOptions{Purger: purger, MaxAge: time.Hour, Metrics: metrics})
	require.NoError(t, err)

	_, err = job.Run(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.LastSuccessfulRetention))
}

func TestNewRetentionJob_Invalid(t *testing.T) {
	_, err := NewRetentionJob(RetentionOptions{MaxAge: time.Hour})
	assert.Error(t, err)

	_, err = NewRetentionJob(RetentionOptions{Purger: &fakePurger{}})
	assert.ErrorIs(t, err, ErrInvalidMaxAge)
}

func TestScheduler_AddRejectsBadSpec(t *testing.T) {
	s := NewScheduler(nil, nil)
	job, err := NewRetentionJob(RetentionOptions{Purger: &fakePurger{}, MaxAge: time.Hour})
	require.NoError(t, err)

	assert.Error(t, job.Schedule(s, "not a cron spec"))
	assert.NoError(t, job.Schedule(s, "0 0 3 * * *"))
	assert.Len(t, s.cron.Entries(), 1)
}

func TestScheduler_FiresJob(t *testing.T) {
	s := NewScheduler(nil, context.Background())
	fired := make(chan struct{}, 1)

	_, err := s.Add("* * * * * *", func(context.Context) {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not fire within 3s")
	}
}
