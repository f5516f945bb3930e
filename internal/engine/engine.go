// Package engine runs the period-by-period dividend reinvestment projection.
// It is pure: no I/O, no shared state, one pass per call.
package engine

import (
	"dividend-projection-lab/internal/contribution"
	"dividend-projection-lab/internal/domain"
	"dividend-projection-lab/internal/metrics"
	"dividend-projection-lab/internal/schedule"
	"dividend-projection-lab/internal/validation"
)

// Options contains engine limits.
type Options struct {
	MaxPeriods      int // 0 means validation.DefaultMaxPeriods
	MilestoneWindow int // trailing periods for dividends-vs-contributions; 0 means metrics.DefaultWindow
}

// Observer receives each period record as soon as it is produced.
type Observer func(rec domain.PeriodRecord)

// Engine simulates projections. Safe for concurrent use.
type Engine struct {
	opts Options
}

// New creates an engine.
func New(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Simulate validates cfg, runs every period and aggregates the trace.
// Errors are *validation.Error (nothing simulated) or *DegenerateError (partial trace).
func (e *Engine) Simulate(cfg domain.SimulationConfig) (*domain.SimulationReport, error) {
	return e.Run(cfg, nil)
}

// Run is Simulate with an observer called once per completed period.
func (e *Engine) Run(cfg domain.SimulationConfig, observe Observer) (*domain.SimulationReport, error) {
	// 1. Validate and normalize
	n, err := validation.Normalize(cfg, validation.Options{MaxPeriods: e.opts.MaxPeriods})
	if err != nil {
		return nil, err
	}

	// 2. Build schedule
	periods, err := schedule.FromNormalized(n)
	if err != nil {
		return nil, err
	}

	// 3. Step through periods
	trace, err := e.trace(n, periods, observe)
	if err != nil {
		return nil, err
	}

	// 4. Aggregate
	return metrics.Aggregate(n, trace, metrics.Options{Window: e.opts.MilestoneWindow}), nil
}

func (e *Engine) trace(n *domain.NormalizedConfig, periods []schedule.Period, observe Observer) ([]domain.PeriodRecord, error) {
	resolver := contribution.NewResolver(n)
	st := newState(n)
	trace := make([]domain.PeriodRecord, 0, len(periods))

	for _, p := range periods {
		rec, err := step(n, st, p, resolver.Resolve(p.Index))
		if err != nil {
			return nil, &DegenerateError{Period: p.Index, Price: st.price, Cause: err, Trace: trace}
		}
		trace = append(trace, rec)
		if observe != nil {
			observe(rec)
		}
	}

	return trace, nil
}
