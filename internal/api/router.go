// Package api serves projections, stored scenarios and runs over HTTP.
package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dividend-projection-lab/internal/calculator"
	"dividend-projection-lab/internal/observability"
	"dividend-projection-lab/internal/reporting"
	"dividend-projection-lab/internal/simulation"
	"dividend-projection-lab/internal/verification"
)

// Options contains the dependencies of the HTTP API.
type Options struct {
	Runner     *simulation.Runner
	Calculator *calculator.Calculator // nil means calculator.New(Runner.Engine())
	Verifier   verification.Verifier
	Reports    *reporting.Generator
	Metrics    *observability.Metrics // nil means observability.DefaultMetrics
	Logger     *zap.Logger            // nil means zap.NewNop()

	// Ready reports whether backing stores are reachable. nil means always ready.
	Ready func(ctx context.Context) error
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(opts Options) *gin.Engine {
	if opts.Metrics == nil {
		opts.Metrics = observability.DefaultMetrics
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Calculator == nil {
		opts.Calculator = calculator.New(opts.Runner.Engine())
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(loggerMiddleware(opts.Logger))
	r.Use(metricsMiddleware(opts.Metrics))

	(&HealthHandler{Ready: opts.Ready}).Register(r)
	(&ProjectionHandler{
		Runner:     opts.Runner,
		Calculator: opts.Calculator,
		Metrics:    opts.Metrics,
	}).Register(r)
	(&ScenarioHandler{
		Runner:   opts.Runner,
		Verifier: opts.Verifier,
		Reports:  opts.Reports,
		Metrics:  opts.Metrics,
	}).Register(r)
	(&StreamHandler{
		Runner:  opts.Runner,
		Metrics: opts.Metrics,
		Logger:  opts.Logger,
	}).Register(r)

	return r
}
