package repository

import (
	"context"

	"ChurnPull/internal/domain/models"
)

// PredictionStore persists scored predictions.
type PredictionStore interface {
	Store(ctx context.Context, p *models.Prediction) error
	Recent(ctx context.Context, limit int) ([]*models.Prediction, error)
	Health(ctx context.Context) error
	Close() error
}

// PredictionPublisher emits prediction events to downstream consumers.
type PredictionPublisher interface {
	Publish(ctx context.Context, p *models.Prediction) error
	Close() error
}

type Metrics interface {
	RecordPrediction(model string, churn bool, probability float64)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordCache(result string)
}
