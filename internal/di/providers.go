package di

import (
	"context"
	"fmt"
	"time"

	"ChurnPull/internal/domain/repository"
	"ChurnPull/internal/domain/service"
	"ChurnPull/internal/handler/api"
	internalrepo "ChurnPull/internal/repository"
	"ChurnPull/internal/service/ratelimit"
	"ChurnPull/internal/services/features"
	"ChurnPull/internal/services/model"
	"ChurnPull/internal/usecase"
	"ChurnPull/pkg/cache"
	pkgch "ChurnPull/pkg/clickhouse"
	"ChurnPull/pkg/config"
	xhttp "ChurnPull/pkg/http"
	"ChurnPull/pkg/http/middleware"
	pkgkafka "ChurnPull/pkg/kafka"
	applogger "ChurnPull/pkg/logger"
	"ChurnPull/pkg/metrics"
	"ChurnPull/pkg/server"
)

const startupTimeout = 10 * time.Second

// LoadedArtifacts is the fitted preprocessing state plus the local model,
// which is nil when scoring is remote.
type LoadedArtifacts struct {
	Features *features.Artifacts
	Local    *model.MLP
}

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideArtifacts loads the fitted encoders, scaler and local model.
func ProvideArtifacts(cfg *config.Config, l *applogger.Logger) (*LoadedArtifacts, error) {
	files := internalrepo.ArtifactFiles{
		GenderEncoder: cfg.Artifacts.GenderEncoder,
		GeoEncoder:    cfg.Artifacts.GeoEncoder,
		Scaler:        cfg.Artifacts.Scaler,
	}
	if cfg.Model.Type == "local" {
		files.Model = cfg.Artifacts.Model
	}
	arts, mlp, err := internalrepo.LoadArtifacts(cfg.Artifacts.Dir, files)
	if err != nil {
		return nil, fmt.Errorf("load artifacts: %w", err)
	}
	l.Info("artifacts loaded",
		applogger.String("dir", cfg.Artifacts.Dir),
		applogger.Strings("columns", arts.Columns()),
	)
	return &LoadedArtifacts{Features: arts, Local: mlp}, nil
}

// ProvideFeatureArtifacts exposes the preprocessing artifacts.
func ProvideFeatureArtifacts(la *LoadedArtifacts) *features.Artifacts {
	return la.Features
}

// ProvideChurnModel selects the local network or the remote model server.
func ProvideChurnModel(cfg *config.Config, la *LoadedArtifacts) (service.ChurnModel, error) {
	if cfg.Model.Type == "local" {
		if la.Local == nil {
			return nil, fmt.Errorf("local model %q not loaded", cfg.Artifacts.Model)
		}
		return la.Local, nil
	}
	dim := cfg.Model.InputDim
	if dim == 0 {
		dim = la.Features.Width()
	}
	remote, err := model.NewRemote(model.RemoteConfig{
		URL:      cfg.Model.URL,
		Name:     cfg.Model.Name,
		InputDim: dim,
		Timeout:  cfg.Model.Timeout,
		Retries:  cfg.Model.Retries,
	})
	if err != nil {
		return nil, fmt.Errorf("remote model: %w", err)
	}
	return remote, nil
}

// ProvideCache returns nil when caching is disabled, an in-process LRU
// otherwise, layered over Redis when configured.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.Service, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	mem := cache.NewMemoryCache(
		cache.WithMemoryMaxSize(cfg.Cache.MemorySize),
		cache.WithMemoryTTL(cfg.Cache.TTL),
	)
	if !cfg.Cache.Redis.Enabled {
		return mem, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	rc, err := cache.NewRedisCache(ctx,
		cache.WithRedisHost(cfg.Cache.Redis.Host),
		cache.WithRedisPort(cfg.Cache.Redis.Port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
		cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	l.Info("redis cache connected", applogger.String("host", cfg.Cache.Redis.Host))
	return cache.NewLayeredCache(mem, rc), nil
}

// ProvideClickHouseClient connects and creates the prediction table. It
// returns nil when the prediction log is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	if err := client.InitSchema(ctx, internalrepo.PredictionSchema(cfg.ClickHouse.Database, cfg.ClickHouse.Table)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvidePredictionStore wraps the ClickHouse client, or returns nil.
func ProvidePredictionStore(ch *pkgch.Client, cfg *config.Config, l *applogger.Logger) repository.PredictionStore {
	if ch == nil {
		return nil
	}
	return internalrepo.NewCHPredictionStore(ch, cfg.ClickHouse.Table, l)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is off.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvidePredictionPublisher wraps the producer, or returns nil.
func ProvidePredictionPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.PredictionPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPredictionPublisher(producer, cfg.Kafka.PredictionsTopic)
}

// ProvideChurnPredictor creates the prediction use case.
func ProvideChurnPredictor(
	cfg *config.Config,
	arts *features.Artifacts,
	m service.ChurnModel,
	c cache.Service,
	store repository.PredictionStore,
	pub repository.PredictionPublisher,
	rec repository.Metrics,
	l *applogger.Logger,
) (*usecase.ChurnPredictor, error) {
	return usecase.NewChurnPredictor(arts, m, usecase.PredictorConfig{
		Threshold:     cfg.Prediction.Threshold,
		IncludeVector: cfg.Prediction.IncludeVector,
		CacheTTL:      cfg.Cache.TTL,
	}, c, store, pub, rec, l)
}

// ProvideBatchScorer creates the CSV batch use case.
func ProvideBatchScorer(p *usecase.ChurnPredictor, cfg *config.Config, rec repository.Metrics) *usecase.BatchScorer {
	return usecase.NewBatchScorer(p, cfg.Prediction.BatchMaxRows, rec)
}

// ProvideRateLimiter creates the per-IP limiter for the prediction API.
// A negative capacity disables limiting.
func ProvideRateLimiter(cfg *config.Config) middleware.Allower {
	if cfg.Server.RateLimit.Capacity < 0 {
		return nil
	}
	return ratelimit.New(cfg.Server.RateLimit.Capacity, cfg.Server.RateLimit.RefillPerSec, 0)
}

// ProvideHTTPHandler creates the churn HTTP handler.
func ProvideHTTPHandler(
	l *applogger.Logger,
	p *usecase.ChurnPredictor,
	b *usecase.BatchScorer,
	lim middleware.Allower,
	cfg *config.Config,
) xhttp.Handler {
	return api.NewChurnEchoHandler(l, p, b, lim, cfg.Prediction.BatchMaxUpload)
}

// ProvideHTTPServer creates the echo server.
func ProvideHTTPServer(h xhttp.Handler, l *applogger.Logger, cfg *config.Config) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(h, l,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithTrustProxy(cfg.Server.TrustProxy),
		xhttp.WithMetricsPath(metricsPath),
	)
}

// ProvideKafkaConsumer creates the scoring consumer with its handler and
// hooks registered, or nil when the consumer is disabled.
func ProvideKafkaConsumer(
	cfg *config.Config,
	p *usecase.ChurnPredictor,
	rec repository.Metrics,
	l *applogger.Logger,
) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.NewHookChain(pkgkafka.TraceHook(), pkgkafka.RejectEmpty()))
	consumer.RegisterHandler(usecase.NewKafkaScoringHandler(cfg.Kafka.ScoringTopic, p, rec))
	return consumer, nil
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	consumer *pkgkafka.Consumer,
	p *usecase.ChurnPredictor,
	ch *pkgch.Client,
) *server.App {
	return server.New(cfg, l, srv, consumer, p, ch)
}
