package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"dividend-projection-lab/internal/calculator"
	"dividend-projection-lab/internal/domain"
	"dividend-projection-lab/internal/engine"
	"dividend-projection-lab/internal/metrics"
	"dividend-projection-lab/internal/simulation"
	"dividend-projection-lab/internal/storage"
	"dividend-projection-lab/internal/validation"
	"dividend-projection-lab/internal/verification"
)

type apiResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// Ok writes a successful envelope.
func Ok(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, apiResponse{
		Code:    0,
		Message: "ok",
		Data:    data,
		Meta:    meta,
	})
}

// Created writes a successful envelope with 201.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, apiResponse{
		Code:    0,
		Message: "ok",
		Data:    data,
	})
}

// Error writes a failure envelope.
func Error(c *gin.Context, status int, message string, meta map[string]any) {
	c.JSON(status, apiResponse{
		Code:    status,
		Message: message,
		Meta:    meta,
	})
}

// writeError maps domain and storage errors to HTTP statuses.
func writeError(c *gin.Context, err error) {
	status, meta := classify(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		Error(c, status, "internal error", nil)
		return
	}
	var degenerate *engine.DegenerateError
	if errors.As(err, &degenerate) {
		// The records completed before the breakdown travel with the error.
		trace := degenerate.Trace
		if trace == nil {
			trace = []domain.PeriodRecord{}
		}
		c.JSON(status, apiResponse{
			Code:    status,
			Message: err.Error(),
			Data:    gin.H{"trace": trace},
			Meta:    meta,
		})
		return
	}
	Error(c, status, err.Error(), meta)
}

func classify(err error) (int, map[string]any) {
	var (
		verr       *validation.Error
		degenerate *engine.DegenerateError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, map[string]any{"violations": verr.Violations}
	case errors.As(err, &degenerate):
		return http.StatusUnprocessableEntity, map[string]any{
			"period":            degenerate.Period,
			"price":             jsonFloat(degenerate.Price),
			"completed_periods": len(degenerate.Trace),
			"reason":            degenerate.Reason(),
		}
	case errors.Is(err, domain.ErrInvalidConfiguration),
		errors.Is(err, calculator.ErrInvalidInput),
		errors.Is(err, simulation.ErrEmptyName),
		errors.Is(err, storage.ErrInvalidInput):
		return http.StatusBadRequest, nil
	case errors.Is(err, domain.ErrDegenerateSimulation),
		errors.Is(err, metrics.ErrNoRecords):
		return http.StatusUnprocessableEntity, nil
	case errors.Is(err, storage.ErrDuplicateKey):
		return http.StatusConflict, nil
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, calculator.ErrUnknownPreset),
		errors.Is(err, verification.ErrRunNotFound),
		errors.Is(err, verification.ErrScenarioNotFound):
		return http.StatusNotFound, nil
	default:
		return http.StatusInternalServerError, nil
	}
}

// jsonFloat keeps Inf and NaN out of encoded bodies.
func jsonFloat(v float64) any {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return fmt.Sprint(v)
	}
	return v
}
