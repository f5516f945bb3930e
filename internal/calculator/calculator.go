// Package calculator exposes the DRIP, dividend growth, yield-on-cost and
// retirement income calculators as configurations of a single engine.
package calculator

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"dividend-projection-lab/internal/domain"
	"dividend-projection-lab/internal/engine"
)

// Calculator errors
var (
	ErrUnknownPreset = errors.New("unknown preset")
	ErrInvalidInput  = errors.New("invalid calculator input")
)

// Calculator runs façade calculations on one engine.
type Calculator struct {
	engine *engine.Engine
}

// New creates a calculator backed by eng.
func New(eng *engine.Engine) *Calculator {
	return &Calculator{engine: eng}
}

// Engine returns the underlying engine.
func (c *Calculator) Engine() *engine.Engine {
	return c.engine
}

// Presets returns the predefined presets.
func Presets() []domain.Preset {
	return domain.AllPresets()
}

// Preset returns a preset by name. The returned config is a copy.
func Preset(name string) (domain.Preset, error) {
	for _, p := range domain.AllPresets() {
		if p.Name == name {
			return p, nil
		}
	}
	return domain.Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

// Simulate runs a raw config.
func (c *Calculator) Simulate(cfg domain.SimulationConfig) (*domain.SimulationReport, error) {
	return c.engine.Simulate(cfg)
}

// Compare runs every config concurrently and returns reports in input order.
// The first failure cancels the remaining runs.
func (c *Calculator) Compare(ctx context.Context, configs []domain.SimulationConfig) ([]*domain.SimulationReport, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("%w: no configs to compare", ErrInvalidInput)
	}

	reports := make([]*domain.SimulationReport, len(configs))
	g, ctx := errgroup.WithContext(ctx)

	for i := range configs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			report, err := c.engine.Simulate(configs[i])
			if err != nil {
				return fmt.Errorf("config %d: %w", i, err)
			}
			reports[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
