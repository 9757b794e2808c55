package usecase

import (
	"errors"
	"fmt"

	"ChurnPull/internal/services/features"
	xhttp "ChurnPull/pkg/http"
)

// ErrNoStore is returned by Recent when no prediction log is configured.
var ErrNoStore = errors.New("prediction log is not configured")

// ModelError wraps a failure inside the scoring model.
type ModelError struct {
	Model string
	Err   error
}

func (e *ModelError) Error() string { return fmt.Sprintf("model %s: %v", e.Model, e.Err) }

func (e *ModelError) Unwrap() error { return e.Err }

// InputError carries field validation failures for one input.
type InputError struct {
	Errors []xhttp.ValidationError
}

func (e *InputError) Error() string {
	return "invalid input: " + xhttp.JoinValidationErrors(e.Errors)
}

func errorKind(err error) string {
	var ie *InputError
	switch {
	case errors.As(err, &ie):
		return "validation"
	case errors.Is(err, features.ErrUnknownCategory):
		return "unknown_category"
	case errors.Is(err, features.ErrShapeMismatch):
		return "shape_mismatch"
	default:
		return "model"
	}
}

type nopMetrics struct{}

func (nopMetrics) RecordPrediction(string, bool, float64) {}
func (nopMetrics) RecordError(string)                     {}
func (nopMetrics) RecordLatency(string, float64)          {}
func (nopMetrics) RecordCache(string)                     {}
