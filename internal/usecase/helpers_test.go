package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"ChurnPull/internal/domain/models"
	domrepo "ChurnPull/internal/domain/repository"
	"ChurnPull/internal/services/features"
)

type fakeModel struct {
	prob  float64
	err   error
	dim   int
	mu    sync.Mutex
	calls int
	last  []float64
}

func (m *fakeModel) PredictProba(_ context.Context, x []float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.last = append([]float64(nil), x...)
	return m.prob, m.err
}

func (m *fakeModel) InputDim() int { return m.dim }
func (m *fakeModel) Name() string  { return "fake" }

func (m *fakeModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type fakeStore struct {
	mu    sync.Mutex
	saved []*models.Prediction
	err   error
}

func (s *fakeStore) Store(_ context.Context, p *models.Prediction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	cp := *p
	s.saved = append(s.saved, &cp)
	return nil
}

func (s *fakeStore) Recent(_ context.Context, limit int) ([]*models.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit > len(s.saved) {
		limit = len(s.saved)
	}
	return s.saved[:limit], nil
}

func (s *fakeStore) Health(context.Context) error { return nil }
func (s *fakeStore) Close() error                 { return nil }

type fakePublisher struct {
	mu        sync.Mutex
	published []*models.Prediction
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, pred *models.Prediction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	cp := *pred
	p.published = append(p.published, &cp)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type countingMetrics struct {
	mu     sync.Mutex
	errors map[string]int
	cache  map[string]int
	preds  int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{errors: map[string]int{}, cache: map[string]int{}}
}

func (m *countingMetrics) RecordPrediction(string, bool, float64) {
	m.mu.Lock()
	m.preds++
	m.mu.Unlock()
}

func (m *countingMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors[kind]++
	m.mu.Unlock()
}

func (m *countingMetrics) RecordLatency(string, float64) {}

func (m *countingMetrics) RecordCache(result string) {
	m.mu.Lock()
	m.cache[result]++
	m.mu.Unlock()
}

var errBoom = errors.New("boom")

func testArtifacts(t *testing.T) *features.Artifacts {
	t.Helper()
	gender, err := features.NewLabelEncoder("Gender", []string{"Female", "Male"})
	if err != nil {
		t.Fatalf("gender: %v", err)
	}
	geo, err := features.NewOneHotEncoder("Geography", []string{"France", "Germany", "Spain"})
	if err != nil {
		t.Fatalf("geo: %v", err)
	}
	names := features.Columns(geo)
	scale := make([]float64, len(names))
	for i := range scale {
		scale[i] = 1
	}
	scaler, err := features.NewScaler(features.ScalerStandard, names, make([]float64, len(names)), scale)
	if err != nil {
		t.Fatalf("scaler: %v", err)
	}
	arts, err := features.NewArtifacts(gender, geo, scaler)
	if err != nil {
		t.Fatalf("artifacts: %v", err)
	}
	return arts
}

func validInput() models.CustomerInput {
	return models.CustomerInput{
		CreditScore:     650,
		Geography:       "France",
		Gender:          "Male",
		Age:             40,
		Tenure:          5,
		Balance:         50000,
		NumOfProducts:   2,
		HasCrCard:       models.Yes,
		IsActiveMember:  models.Yes,
		EstimatedSalary: 60000,
	}
}

func storeOrNil(s *fakeStore) domrepo.PredictionStore {
	if s == nil {
		return nil
	}
	return s
}

func pubOrNil(p *fakePublisher) domrepo.PredictionPublisher {
	if p == nil {
		return nil
	}
	return p
}
