package service

import "context"

// ChurnModel scores a prepared, scaled feature vector.
type ChurnModel interface {
	// PredictProba returns the churn probability in [0, 1].
	PredictProba(ctx context.Context, x []float64) (float64, error)
	// InputDim is the expected vector width, or 0 when unknown.
	InputDim() int
	Name() string
}
