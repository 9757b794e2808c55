package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ChurnPull/internal/domain/models"
	domrepo "ChurnPull/internal/domain/repository"
	"ChurnPull/internal/domain/service"
	"ChurnPull/internal/services/features"
	"ChurnPull/pkg/cache"
	applogger "ChurnPull/pkg/logger"
)

// PredictorConfig holds the decision settings.
type PredictorConfig struct {
	Threshold     float64
	IncludeVector bool
	CacheTTL      time.Duration
	SinkTimeout   time.Duration
}

// ChurnPredictor turns one customer input into a churn decision and fans
// the result out to the optional cache, log store and event stream.
type ChurnPredictor struct {
	arts    *features.Artifacts
	model   service.ChurnModel
	cfg     PredictorConfig
	cache   cache.Service
	store   domrepo.PredictionStore
	pub     domrepo.PredictionPublisher
	metrics domrepo.Metrics
	log     *applogger.Logger
	now     func() time.Time
}

// NewChurnPredictor wires a predictor. cache, store and pub may be nil.
func NewChurnPredictor(
	arts *features.Artifacts,
	model service.ChurnModel,
	cfg PredictorConfig,
	c cache.Service,
	store domrepo.PredictionStore,
	pub domrepo.PredictionPublisher,
	metrics domrepo.Metrics,
	log *applogger.Logger,
) (*ChurnPredictor, error) {
	if arts == nil || model == nil {
		return nil, fmt.Errorf("artifacts and model are required")
	}
	if dim := model.InputDim(); dim > 0 && dim != arts.Width() {
		return nil, &features.ShapeMismatchError{
			Stage:    "model",
			Expected: arts.Width(),
			Got:      dim,
			Detail:   "model input width differs from prepared vector",
		}
	}
	if cfg.Threshold <= 0 || cfg.Threshold >= 1 {
		return nil, fmt.Errorf("threshold must be in (0, 1), got %v", cfg.Threshold)
	}
	if cfg.SinkTimeout <= 0 {
		cfg.SinkTimeout = 2 * time.Second
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if log == nil {
		log = applogger.NewNop()
	}
	return &ChurnPredictor{
		arts:    arts,
		model:   model,
		cfg:     cfg,
		cache:   c,
		store:   store,
		pub:     pub,
		metrics: metrics,
		log:     log,
		now:     time.Now,
	}, nil
}

// Options lists the categories and ranges the form should offer.
func (p *ChurnPredictor) Options() models.FormOptions {
	return p.arts.Options()
}

// ModelName is the name of the scoring model.
func (p *ChurnPredictor) ModelName() string { return p.model.Name() }

// Threshold is the decision threshold in use.
func (p *ChurnPredictor) Threshold() float64 { return p.cfg.Threshold }

// Predict scores a validated input.
func (p *ChurnPredictor) Predict(ctx context.Context, in models.CustomerInput) (*models.Prediction, error) {
	return p.Score(ctx, models.ScoringRequest{Customer: in})
}

// Score is Predict with a caller supplied request id, which is carried
// into the prediction and its event.
func (p *ChurnPredictor) Score(ctx context.Context, req models.ScoringRequest) (*models.Prediction, error) {
	start := time.Now()
	in := req.Customer

	key := p.cacheKey(in)
	pred, hit := p.lookup(ctx, key)
	if !hit {
		var err error
		pred, err = p.compute(ctx, in)
		if err != nil {
			p.metrics.RecordError(errorKind(err))
			return nil, err
		}
		p.remember(ctx, key, pred)
	}

	pred.ID = uuid.NewString()
	pred.RequestID = req.RequestID
	pred.CreatedAt = p.now().UTC()
	pred.Cached = hit
	inCopy := in
	pred.Input = &inCopy

	p.metrics.RecordPrediction(pred.Model, pred.Churn, pred.Probability)
	p.metrics.RecordLatency("predict", time.Since(start).Seconds())
	p.log.Info("churn prediction",
		applogger.String("id", pred.ID),
		applogger.String("request_id", pred.RequestID),
		applogger.Float64("probability", pred.Probability),
		applogger.Bool("churn", pred.Churn),
		applogger.Bool("cached", hit),
		applogger.Duration("duration_ms", time.Since(start)),
	)

	p.emit(ctx, pred)
	return pred, nil
}

func (p *ChurnPredictor) compute(ctx context.Context, in models.CustomerInput) (*models.Prediction, error) {
	vec, err := p.arts.Prepare(in)
	if err != nil {
		return nil, err
	}

	prob, err := p.model.PredictProba(ctx, vec.Scaled)
	if err != nil {
		return nil, &ModelError{Model: p.model.Name(), Err: err}
	}

	churn := features.Decide(prob, p.cfg.Threshold)
	pred := &models.Prediction{
		Probability: prob,
		Threshold:   p.cfg.Threshold,
		Churn:       churn,
		Label:       features.Label(churn),
		Message:     features.RenderMessage(prob, churn),
		Model:       p.model.Name(),
	}
	if p.cfg.IncludeVector {
		pred.Features = vec.Scaled
	}
	return pred, nil
}

func (p *ChurnPredictor) cacheKey(in models.CustomerInput) string {
	if p.cache == nil {
		return ""
	}
	h, err := cache.HashKey(p.model.Name(), p.cfg.Threshold, in)
	if err != nil {
		return ""
	}
	return cache.GenerateKey("pred", h)
}

func (p *ChurnPredictor) lookup(ctx context.Context, key string) (*models.Prediction, bool) {
	if key == "" {
		return nil, false
	}
	var pred models.Prediction
	err := p.cache.Get(ctx, key, &pred)
	switch {
	case err == nil:
		p.metrics.RecordCache("hit")
		return &pred, true
	case errors.Is(err, cache.ErrCacheMiss):
		p.metrics.RecordCache("miss")
	default:
		p.metrics.RecordCache("error")
		p.log.Warn("prediction cache get", applogger.Error(err))
	}
	return nil, false
}

func (p *ChurnPredictor) remember(ctx context.Context, key string, pred *models.Prediction) {
	if key == "" {
		return
	}
	if err := p.cache.Set(ctx, key, pred, p.cfg.CacheTTL); err != nil {
		p.metrics.RecordError("cache")
		p.log.Warn("prediction cache set", applogger.Error(err))
	}
}

// emit writes to the optional sinks. Failures are logged and counted only.
func (p *ChurnPredictor) emit(ctx context.Context, pred *models.Prediction) {
	if p.store == nil && p.pub == nil {
		return
	}
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.cfg.SinkTimeout)
	defer cancel()

	if p.store != nil {
		if err := p.store.Store(sctx, pred); err != nil {
			p.metrics.RecordError("store")
			p.log.Error("store prediction", applogger.String("id", pred.ID), applogger.Error(err))
		}
	}
	if p.pub != nil {
		if err := p.pub.Publish(sctx, pred); err != nil {
			p.metrics.RecordError("publish")
			p.log.Error("publish prediction", applogger.String("id", pred.ID), applogger.Error(err))
		}
	}
}

// Recent lists logged predictions. ErrNoStore is returned when no
// prediction log is configured.
func (p *ChurnPredictor) Recent(ctx context.Context, limit int) ([]*models.Prediction, error) {
	if p.store == nil {
		return nil, ErrNoStore
	}
	return p.store.Recent(ctx, limit)
}

// Close releases the sinks.
func (p *ChurnPredictor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
	if p.cache != nil {
		_ = p.cache.Close()
	}
}
