package features

import "fmt"

type ScalerKind string

const (
	// ScalerStandard computes (x - mean) / scale.
	ScalerStandard ScalerKind = "standard"
	// ScalerMinMax computes x*scale + min.
	ScalerMinMax ScalerKind = "minmax"
)

// Scaler is a fitted per-column affine transform. It is immutable after
// construction and safe for concurrent use.
type Scaler struct {
	kind   ScalerKind
	names  []string
	offset []float64 // mean for standard, min for minmax
	scale  []float64
}

// NewScaler validates the fitted parameters. names declares the column
// order the scaler was fitted on.
func NewScaler(kind ScalerKind, names []string, offset, scale []float64) (*Scaler, error) {
	switch kind {
	case ScalerStandard, ScalerMinMax:
	default:
		return nil, fmt.Errorf("unsupported scaler kind %q", kind)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("scaler has no feature names")
	}
	if len(offset) != len(names) || len(scale) != len(names) {
		return nil, &ShapeMismatchError{
			Stage:    "scaler",
			Expected: len(names),
			Got:      min(len(offset), len(scale)),
			Detail:   fmt.Sprintf("offset has %d values, scale has %d", len(offset), len(scale)),
		}
	}

	sc := make([]float64, len(scale))
	for i, s := range scale {
		// sklearn stores 1.0 for zero-variance columns; match that here.
		if kind == ScalerStandard && s == 0 {
			s = 1
		}
		sc[i] = s
	}

	return &Scaler{
		kind:   kind,
		names:  append([]string(nil), names...),
		offset: append([]float64(nil), offset...),
		scale:  sc,
	}, nil
}

func (s *Scaler) Kind() ScalerKind { return s.kind }

// Width is the number of columns the scaler was fitted on.
func (s *Scaler) Width() int { return len(s.names) }

// FeatureNames returns a copy of the fitted column order.
func (s *Scaler) FeatureNames() []string { return append([]string(nil), s.names...) }

// Transform scales x into a new slice. x is not modified.
func (s *Scaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.names) {
		return nil, &ShapeMismatchError{Stage: "scaler", Expected: len(s.names), Got: len(x)}
	}
	out := make([]float64, len(x))
	for i, v := range x {
		switch s.kind {
		case ScalerStandard:
			out[i] = (v - s.offset[i]) / s.scale[i]
		case ScalerMinMax:
			out[i] = v*s.scale[i] + s.offset[i]
		}
	}
	return out, nil
}
