//go:build wireinject
// +build wireinject

package di

import (
	"ChurnPull/pkg/config"
	"ChurnPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Fitted artifacts and model
		ProvideArtifacts,
		ProvideFeatureArtifacts,
		ProvideChurnModel,

		// Optional sinks
		ProvideCache,
		ProvideClickHouseClient,
		ProvidePredictionStore,
		ProvideKafkaProducer,
		ProvidePredictionPublisher,

		// Use cases
		ProvideChurnPredictor,
		ProvideBatchScorer,

		// Transport
		ProvideRateLimiter,
		ProvideHTTPHandler,
		ProvideHTTPServer,
		ProvideKafkaConsumer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
