package domain

import "errors"

// Simulation error kinds. Both are terminal for the computation that returned them.
var (
	// ErrInvalidConfiguration is returned when a config violates an input invariant.
	// Detected before any period is simulated.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrDegenerateSimulation is returned when the numeric state breaks down mid-run.
	ErrDegenerateSimulation = errors.New("degenerate simulation")
)
