package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"ChurnPull/internal/domain/models"
	"ChurnPull/internal/services/features"
	"ChurnPull/pkg/cache"

	"github.com/google/go-cmp/cmp"
)

func newPredictor(t *testing.T, m *fakeModel, opts ...func(*predictorDeps)) (*ChurnPredictor, *predictorDeps) {
	t.Helper()
	d := &predictorDeps{cfg: PredictorConfig{Threshold: 0.5}, metrics: newCountingMetrics()}
	for _, o := range opts {
		o(d)
	}
	var c cache.Service
	if d.cache != nil {
		c = d.cache
	}
	p, err := NewChurnPredictor(testArtifacts(t), m, d.cfg, c, storeOrNil(d.store), pubOrNil(d.pub), d.metrics, nil)
	if err != nil {
		t.Fatalf("new predictor: %v", err)
	}
	return p, d
}

type predictorDeps struct {
	cfg     PredictorConfig
	cache   *cache.MemoryCache
	store   *fakeStore
	pub     *fakePublisher
	metrics *countingMetrics
}

func TestPredictScenario(t *testing.T) {
	m := &fakeModel{prob: 0.8}
	p, _ := newPredictor(t, m, func(d *predictorDeps) { d.cfg.IncludeVector = true })

	pred, err := p.Predict(context.Background(), validInput())
	if err != nil {
		t.Fatalf("predict: %v", err)
	}

	wantVec := []float64{650, 1, 40, 5, 50000, 2, 1, 1, 60000, 1, 0, 0}
	if diff := cmp.Diff(wantVec, m.last); diff != "" {
		t.Fatalf("model input (-want +got):\n%s", diff)
	}
	if !pred.Churn || pred.Label != models.LabelChurn {
		t.Fatalf("expected churn, got %+v", pred)
	}
	if pred.Message != "The customer is likely to churn with a probability of 80.00%" {
		t.Fatalf("unexpected message %q", pred.Message)
	}
	if pred.ID == "" || pred.CreatedAt.IsZero() || pred.Model != "fake" {
		t.Fatalf("missing metadata %+v", pred)
	}
	if pred.Input == nil || pred.Input.Geography != "France" {
		t.Fatalf("input not attached")
	}
	if len(pred.Features) != 12 {
		t.Fatalf("expected scaled features, got %v", pred.Features)
	}
}

func TestPredictBoundaryIsNotChurn(t *testing.T) {
	p, _ := newPredictor(t, &fakeModel{prob: 0.5})
	pred, err := p.Predict(context.Background(), validInput())
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if pred.Churn {
		t.Fatalf("probability equal to threshold must not churn")
	}
	if pred.Message != "The customer is not likely to churn with a probability of 50.00%" {
		t.Fatalf("unexpected message %q", pred.Message)
	}
}

func TestPredictConfigurableThreshold(t *testing.T) {
	p, _ := newPredictor(t, &fakeModel{prob: 0.3}, func(d *predictorDeps) { d.cfg.Threshold = 0.25 })
	pred, err := p.Predict(context.Background(), validInput())
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if !pred.Churn || pred.Threshold != 0.25 {
		t.Fatalf("expected churn at threshold 0.25, got %+v", pred)
	}
}

func TestPredictErrors(t *testing.T) {
	p, d := newPredictor(t, &fakeModel{prob: 0.1})

	in := validInput()
	in.Geography = "Atlantis"
	_, err := p.Predict(context.Background(), in)
	var uce *features.UnknownCategoryError
	if !errors.As(err, &uce) || uce.Value != "Atlantis" {
		t.Fatalf("expected unknown category, got %v", err)
	}
	if d.metrics.errors["unknown_category"] != 1 {
		t.Fatalf("expected unknown_category metric, got %v", d.metrics.errors)
	}

	bad, _ := newPredictor(t, &fakeModel{err: errBoom})
	_, err = bad.Predict(context.Background(), validInput())
	var me *ModelError
	if !errors.As(err, &me) || !errors.Is(err, errBoom) {
		t.Fatalf("expected model error, got %v", err)
	}
}

func TestNewChurnPredictorValidation(t *testing.T) {
	arts := testArtifacts(t)
	if _, err := NewChurnPredictor(arts, &fakeModel{dim: 11}, PredictorConfig{Threshold: 0.5}, nil, nil, nil, nil, nil); !errors.Is(err, features.ErrShapeMismatch) {
		t.Fatalf("expected shape mismatch for model width, got %v", err)
	}
	if _, err := NewChurnPredictor(arts, &fakeModel{}, PredictorConfig{Threshold: 1}, nil, nil, nil, nil, nil); err == nil {
		t.Fatalf("expected threshold error")
	}
	if _, err := NewChurnPredictor(nil, &fakeModel{}, PredictorConfig{Threshold: 0.5}, nil, nil, nil, nil, nil); err == nil {
		t.Fatalf("expected missing artifacts error")
	}
}

func TestPredictUsesCache(t *testing.T) {
	m := &fakeModel{prob: 0.7}
	p, d := newPredictor(t, m, func(d *predictorDeps) {
		d.cache = cache.NewMemoryCache()
		d.cfg.CacheTTL = time.Minute
	})

	first, err := p.Predict(context.Background(), validInput())
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := p.Predict(context.Background(), validInput())
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if m.Calls() != 1 {
		t.Fatalf("expected model to run once, ran %d times", m.Calls())
	}
	if first.Cached || !second.Cached {
		t.Fatalf("cached flags wrong: %v %v", first.Cached, second.Cached)
	}
	if first.ID == second.ID || second.Probability != first.Probability {
		t.Fatalf("cached prediction must keep probability and get a new id")
	}
	if d.metrics.cache["miss"] != 1 || d.metrics.cache["hit"] != 1 {
		t.Fatalf("unexpected cache metrics %v", d.metrics.cache)
	}
}

func TestPredictSinks(t *testing.T) {
	p, d := newPredictor(t, &fakeModel{prob: 0.9}, func(d *predictorDeps) {
		d.store = &fakeStore{}
		d.pub = &fakePublisher{}
	})
	pred, err := p.Score(context.Background(), models.ScoringRequest{RequestID: "req-1", Customer: validInput()})
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if len(d.store.saved) != 1 || d.store.saved[0].ID != pred.ID {
		t.Fatalf("prediction not stored")
	}
	if len(d.pub.published) != 1 || d.pub.published[0].RequestID != "req-1" {
		t.Fatalf("prediction not published with request id")
	}

	recent, err := p.Recent(context.Background(), 10)
	if err != nil || len(recent) != 1 {
		t.Fatalf("recent: %v %v", recent, err)
	}
}

func TestSinkFailuresDoNotFailPrediction(t *testing.T) {
	p, d := newPredictor(t, &fakeModel{prob: 0.2}, func(d *predictorDeps) {
		d.store = &fakeStore{err: errBoom}
		d.pub = &fakePublisher{err: errBoom}
	})
	if _, err := p.Predict(context.Background(), validInput()); err != nil {
		t.Fatalf("sink failure leaked: %v", err)
	}
	if d.metrics.errors["store"] != 1 || d.metrics.errors["publish"] != 1 {
		t.Fatalf("sink errors not counted: %v", d.metrics.errors)
	}
}

func TestRecentWithoutStore(t *testing.T) {
	p, _ := newPredictor(t, &fakeModel{})
	if _, err := p.Recent(context.Background(), 5); !errors.Is(err, ErrNoStore) {
		t.Fatalf("expected ErrNoStore, got %v", err)
	}
}

func TestOptions(t *testing.T) {
	p, _ := newPredictor(t, &fakeModel{})
	opts := p.Options()
	if diff := cmp.Diff([]string{"Female", "Male"}, opts.Genders); diff != "" {
		t.Fatalf("genders (-want +got):\n%s", diff)
	}
}
