package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	predictions *prometheus.CounterVec
	probability *prometheus.HistogramVec
	errorsTotal *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	cache       *prometheus.CounterVec
}

// New registers the churn metrics on the default registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the churn metrics on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		predictions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "churn_predictions_total",
				Help: "Predictions served, by model and outcome",
			},
			[]string{"model", "churn"},
		),
		probability: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "churn_probability",
				Help:    "Distribution of predicted churn probabilities",
				Buckets: prometheus.LinearBuckets(0.1, 0.1, 9),
			},
			[]string{"model"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "churn_errors_total",
				Help: "Errors by kind",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "churn_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		cache: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "churn_cache_requests_total",
				Help: "Prediction cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

func (r *Recorder) RecordPrediction(model string, churn bool, probability float64) {
	r.predictions.WithLabelValues(model, strconv.FormatBool(churn)).Inc()
	r.probability.WithLabelValues(model).Observe(probability)
}

func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordCache counts a cache lookup; result is hit, miss or error.
func (r *Recorder) RecordCache(result string) {
	r.cache.WithLabelValues(result).Inc()
}
