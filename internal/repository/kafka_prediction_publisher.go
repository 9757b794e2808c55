package repository

import (
	"context"

	"ChurnPull/internal/domain/models"
	domrepo "ChurnPull/internal/domain/repository"
	pkgkafka "ChurnPull/pkg/kafka"
)

// KafkaPredictionPublisher emits one JSON event per prediction, keyed by
// prediction id.
type KafkaPredictionPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

var _ domrepo.PredictionPublisher = (*KafkaPredictionPublisher)(nil)

func NewKafkaPredictionPublisher(producer *pkgkafka.Producer, topic string) *KafkaPredictionPublisher {
	return &KafkaPredictionPublisher{producer: producer, topic: topic}
}

func (p *KafkaPredictionPublisher) Publish(ctx context.Context, pred *models.Prediction) error {
	return p.producer.Publish(ctx, p.topic, predictionMessage(pred))
}

func (p *KafkaPredictionPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func predictionMessage(pred *models.Prediction) pkgkafka.Message {
	m := pkgkafka.Message{Key: []byte(pred.ID), Value: pred}
	if pred.RequestID != "" {
		m.Headers = map[string]string{pkgkafka.TraceHeader: pred.RequestID}
	}
	return m
}
