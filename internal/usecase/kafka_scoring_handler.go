package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ChurnPull/internal/domain/models"
	domrepo "ChurnPull/internal/domain/repository"
	"ChurnPull/internal/services/features"
	xhttp "ChurnPull/pkg/http"
	pkgkafka "ChurnPull/pkg/kafka"
)

// KafkaScoringHandler scores ScoringRequest messages from a topic. The
// prediction is published by the predictor's event sink.
type KafkaScoringHandler struct {
	topic     string
	predictor *ChurnPredictor
	metrics   domrepo.Metrics
}

func NewKafkaScoringHandler(topic string, p *ChurnPredictor, metrics domrepo.Metrics) *KafkaScoringHandler {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &KafkaScoringHandler{topic: topic, predictor: p, metrics: metrics}
}

func (h *KafkaScoringHandler) Topic() string { return h.topic }

// Handle returns permanent errors for payloads that can never succeed, so
// the consumer routes them to the DLQ without retrying.
func (h *KafkaScoringHandler) Handle(ctx context.Context, b []byte) error {
	var req models.ScoringRequest
	if err := json.Unmarshal(b, &req); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return pkgkafka.Permanent(fmt.Errorf("decode scoring request: %w", err))
	}
	if req.RequestID == "" {
		req.RequestID = pkgkafka.TraceID(ctx)
	}
	if verrs := xhttp.ValidateStruct(ctx, &req.Customer); verrs != nil {
		h.metrics.RecordError("validation")
		return pkgkafka.Permanent(&InputError{Errors: verrs})
	}

	_, err := h.predictor.Score(ctx, req)
	if err != nil {
		if errors.Is(err, features.ErrUnknownCategory) || errors.Is(err, features.ErrShapeMismatch) {
			return pkgkafka.Permanent(err)
		}
		return err
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaScoringHandler)(nil)
