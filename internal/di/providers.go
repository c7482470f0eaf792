package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"FareFlex/internal/domain/models"
	"FareFlex/internal/domain/repository"
	"FareFlex/internal/domain/service"
	"FareFlex/internal/handler/api"
	"FareFlex/internal/middleware"
	internalrepo "FareFlex/internal/repository"
	"FareFlex/internal/services/model"
	"FareFlex/internal/services/pricing"
	"FareFlex/internal/usecase"
	"FareFlex/pkg/cache"
	pkgch "FareFlex/pkg/clickhouse"
	"FareFlex/pkg/config"
	xhttp "FareFlex/pkg/http"
	pkgkafka "FareFlex/pkg/kafka"
	applogger "FareFlex/pkg/logger"
	"FareFlex/pkg/metrics"
	"FareFlex/pkg/queue"
	"FareFlex/pkg/server"

	"github.com/redis/go-redis/v9"
)

func splitAddr(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 6379
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, 6379
	}
	return host, port
}

func auditClickHouse(cfg *config.Config) bool {
	return cfg.Audit.Backend == "clickhouse" || cfg.Audit.Backend == "both"
}

func auditKafka(cfg *config.Config) bool {
	return cfg.Audit.Backend == "kafka" || cfg.Audit.Backend == "both"
}

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	if cfg.Environment == "development" {
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the quotes
// schema. Returns nil when ClickHouse auditing is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !auditClickHouse(cfg) {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		"CREATE TABLE IF NOT EXISTS " + db + ".quotes (" +
			"quoted_at DateTime, route String, carrier String, flight_date String, " +
			"base_price Float64, final_price Float64, adjustment_pct Float64, " +
			"confidence String, lead_days Int32, seats Int32" +
			") ENGINE=MergeTree ORDER BY (route, quoted_at)",
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer, nil when no Kafka sink is
// configured.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !auditKafka(cfg) {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
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

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideEncoders loads the label-encoder tables. A missing or malformed
// file is fatal: the service cannot encode requests without it.
func ProvideEncoders(cfg *config.Config) (service.Encoders, error) {
	enc, err := model.LoadEncoders(cfg.Model.EncodersPath)
	if err != nil {
		return nil, fmt.Errorf("load encoders: %w", err)
	}
	return enc, nil
}

// ProvideEstimator selects the inference backend from config.
func ProvideEstimator(cfg *config.Config) (service.Estimator, error) {
	switch cfg.Model.Backend {
	case "local":
		est, err := model.LoadEstimator(cfg.Model.Path)
		if err != nil {
			return nil, fmt.Errorf("load model: %w", err)
		}
		return est, nil
	case "http":
		return model.NewHTTPEstimator(cfg), nil
	default:
		return nil, fmt.Errorf("unknown model backend: %s", cfg.Model.Backend)
	}
}

// ProvideEngine builds the pricing engine, honoring configured weights.
func ProvideEngine(cfg *config.Config) *pricing.Engine {
	if !cfg.FactorWeightsSet() {
		return pricing.NewEngine()
	}
	w := cfg.Pricing.Weights
	return pricing.NewEngine(pricing.WithWeights(models.FactorWeights{
		Demand:      w.Demand,
		Competition: w.Competition,
		Inventory:   w.Inventory,
		Time:        w.Time,
		Seasonality: w.Seasonality,
	}))
}

// ProvideQuoteStore creates ClickHouse quote storage, nil when disabled.
func ProvideQuoteStore(chClient *pkgch.Client, cfg *config.Config) repository.QuoteStore {
	if chClient == nil {
		return nil
	}
	table := cfg.Audit.Table
	if table == "" {
		table = cfg.ClickHouse.Database + ".quotes"
	}
	return internalrepo.NewClickHouseQuoteStore(chClient.DB(), table)
}

// ProvideQuotePublisher creates the quote.priced publisher, nil when disabled.
func ProvideQuotePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaQuotePublisher(producer, cfg.Kafka.QuotesTopic)
}

// ProvideMarketCache selects the snapshot cache backend: layered Redis when
// enabled, in-process memory otherwise.
func ProvideMarketCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Market.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}
	host, port := splitAddr(cfg.Market.Redis.Addr)
	redisCache, err := cache.NewRedisCache(
		cache.WithRedisHost(host),
		cache.WithRedisPort(port),
		cache.WithRedisPassword(cfg.Market.Redis.Password),
		cache.WithRedisDB(cfg.Market.Redis.DB),
		cache.WithRedisPrefix("fareflex"),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(redisCache), nil
}

// ProvideMarketSnapshots creates the per-route competitor fare store.
func ProvideMarketSnapshots(c cache.Service, cfg *config.Config) repository.MarketSnapshots {
	return internalrepo.NewCachedMarketSnapshots(c, cfg.Market.SnapshotTTL, cfg.Market.SnapshotMaxAge)
}

// ProvideKafkaConsumer creates the market ticks consumer, nil when disabled.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
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
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideTickPipeline guards the snapshot store with validation, per-route
// throttling and retry buffering.
func ProvideTickPipeline(snapshots repository.MarketSnapshots, m repository.Metrics) *middleware.TickPipeline {
	return middleware.NewTickPipeline(snapshots, m)
}

// ProvideMarketTicksHandler registers the handler for the market fares topic.
func ProvideMarketTicksHandler(pipeline *middleware.TickPipeline, m repository.Metrics, cfg *config.Config) *usecase.MarketTicksHandler {
	return usecase.NewMarketTicksHandler(cfg.Kafka.TicksTopic, pipeline, m)
}

// ProvideAuditSpool creates the Redis retry spool for failed quote audit
// writes. Requires both the quote store and the Redis backend; nil otherwise.
func ProvideAuditSpool(
	cfg *config.Config,
	log *applogger.Logger,
	store repository.QuoteStore,
	m repository.Metrics,
) *queue.RedisQueue {
	if store == nil || !cfg.Market.Redis.Enabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Market.Redis.Addr,
		Password: cfg.Market.Redis.Password,
		DB:       cfg.Market.Redis.DB,
	})
	spool := queue.NewRedisQueue(log, &queue.QueueConfig{
		Workers:    1,
		RetryLimit: 5,
		RetryDelay: 30 * time.Second,
	}, client, queue.ModeProducerConsumer)
	spool.RegisterJob(usecase.NewAuditRetryJob(store, m))
	return spool
}

// ProvideQuoteService creates the quote use case.
func ProvideQuoteService(
	estimator service.Estimator,
	encoders service.Encoders,
	engine *pricing.Engine,
	store repository.QuoteStore,
	pub repository.Publisher,
	snapshots repository.MarketSnapshots,
	m repository.Metrics,
	log *applogger.Logger,
	spool *queue.RedisQueue,
	cfg *config.Config,
) *usecase.QuoteService {
	svc := usecase.NewQuoteService(estimator, encoders, engine, store, pub, snapshots, m, log)
	svc.SetBatchParallelism(cfg.Pricing.BatchParallelism)
	if spool != nil {
		svc.SetAuditSpool(spool)
	}
	return svc
}

// ProvidePricingHandler creates the Echo HTTP handler.
func ProvidePricingHandler(
	log *applogger.Logger,
	quotes *usecase.QuoteService,
	encoders service.Encoders,
	store repository.QuoteStore,
) xhttp.Handler {
	return api.NewPricingEchoHandler(log, quotes, encoders, store)
}

// logSink feeds aggregated error logs into Kafka for the collector.
type logSink struct {
	producer *pkgkafka.Producer
}

func (s logSink) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return s.producer.Publish(ctx, topic, nil, payload)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	quotes *usecase.QuoteService,
	producer *pkgkafka.Producer,
	consumer *pkgkafka.Consumer,
	kh *usecase.MarketTicksHandler,
	pipeline *middleware.TickPipeline,
	spool *queue.RedisQueue,
	chClient *pkgch.Client,
	handler xhttp.Handler,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	if producer != nil && cfg.Kafka.LogsTopic != "" {
		log.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.LogsTopic,
			Publisher:      logSink{producer: producer},
		})
	}
	return server.New(cfg, log, quotes, consumer, kh, pipeline, spool, chClient, handler)
}
