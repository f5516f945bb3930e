package engine

import (
	"errors"
	"fmt"

	"dividend-projection-lab/internal/domain"
)

var (
	errDegeneratePrice = errors.New("share price is not positive")
	errNonFinite       = errors.New("holdings are not finite")
)

// DegenerateError reports a numeric breakdown mid-run.
// Trace holds every record completed before the failing period.
type DegenerateError struct {
	Period int     // failing period index
	Price  float64 // share price when the run stopped
	Cause  error   // errDegeneratePrice or errNonFinite; nil means price
	Trace  []domain.PeriodRecord
}

func (e *DegenerateError) Error() string {
	if e.Cause != nil && !errors.Is(e.Cause, errDegeneratePrice) {
		return fmt.Sprintf("%s: %v at period %d (%d periods completed)",
			domain.ErrDegenerateSimulation, e.Cause, e.Period, len(e.Trace))
	}
	return fmt.Sprintf("%s: share price %g at period %d (%d periods completed)",
		domain.ErrDegenerateSimulation, e.Price, e.Period, len(e.Trace))
}

// Reason is a short machine-readable cause.
func (e *DegenerateError) Reason() string {
	if errors.Is(e.Cause, errNonFinite) {
		return "non_finite_holdings"
	}
	return "non_positive_price"
}

func (e *DegenerateError) Unwrap() error {
	return domain.ErrDegenerateSimulation
}
