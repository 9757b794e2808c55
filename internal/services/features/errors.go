package features

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownCategory matches any *UnknownCategoryError via errors.Is.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrShapeMismatch matches any *ShapeMismatchError via errors.Is.
	ErrShapeMismatch = errors.New("shape mismatch")
)

// UnknownCategoryError reports a categorical value that was not seen when
// the encoder was fitted.
type UnknownCategoryError struct {
	Feature string
	Value   string
	Known   []string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("%s: unknown category %q, expected one of [%s]",
		e.Feature, e.Value, strings.Join(e.Known, ", "))
}

func (e *UnknownCategoryError) Is(target error) bool { return target == ErrUnknownCategory }

// ShapeMismatchError reports a feature vector whose width or column order
// differs from what a fitted artifact expects.
type ShapeMismatchError struct {
	Stage    string // scaler, model, columns
	Expected int
	Got      int
	Detail   string
}

func (e *ShapeMismatchError) Error() string {
	msg := fmt.Sprintf("%s: expected %d columns, got %d", e.Stage, e.Expected, e.Got)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ShapeMismatchError) Is(target error) bool { return target == ErrShapeMismatch }
