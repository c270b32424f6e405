package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"WaveScope/internal/domain/repository"
	"WaveScope/internal/handler/api"
	internalrepo "WaveScope/internal/repository"
	svccache "WaveScope/internal/service/cache"
	"WaveScope/internal/service/stream"
	"WaveScope/internal/usecase"
	pkgcache "WaveScope/pkg/cache"
	pkgch "WaveScope/pkg/clickhouse"
	"WaveScope/pkg/config"
	pkgkafka "WaveScope/pkg/kafka"
	"WaveScope/pkg/logger"
	"WaveScope/pkg/metrics"
	"WaveScope/pkg/queue"
	"WaveScope/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger. Production gets JSON output,
// everything else a console writer.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	level, format := "info", "console"
	if cfg.Environment == "production" {
		format = "json"
	}
	if cfg.Environment == "development" {
		level = "debug"
	}
	return logger.New(&logger.Config{
		Level:  level,
		Format: format,
		Output: "stdout",
	})
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
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
	return client, nil
}

// ProvideCandleStore creates the ClickHouse candle store and ensures its schema.
func ProvideCandleStore(chClient *pkgch.Client, log *logger.Logger) (repository.CandleStore, error) {
	store := internalrepo.NewCHCandleStore(chClient)
	store.SetLogger(log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("candle store schema: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
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

// ProvidePublisher creates the Kafka publisher for candles and pattern events.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.CandlesTopic, cfg.Kafka.PatternsTopic)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
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

// ProvideKafkaCandlesHandler registers the handler for the candles topic.
func ProvideKafkaCandlesHandler(store repository.CandleStore, m repository.Metrics, cfg *config.Config) *usecase.KafkaCandlesHandler {
	tf := repository.NormalizeTimeframe(cfg.Binance.Interval)
	return usecase.NewKafkaCandlesHandler(cfg.Kafka.CandlesTopic, store, tf, m)
}

// ProvideBinanceStream creates the Binance kline WebSocket stream.
func ProvideBinanceStream(cfg *config.Config, log *logger.Logger) repository.MarketStream {
	return stream.New(
		cfg.Binance.WebSocketURL,
		cfg.Binance.Symbols,
		cfg.Binance.Interval,
		cfg.Binance.ReconnectDelay,
		cfg.Binance.PingInterval,
		log,
	)
}

// ProvideCandleProcessor creates the batching candle processor.
func ProvideCandleProcessor(
	pub repository.Publisher,
	store repository.CandleStore,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.CandleProcessor {
	tf := repository.NormalizeTimeframe(cfg.Binance.Interval)
	return usecase.NewCandleProcessor(
		pub,
		store,
		m,
		cfg.Backend.Type,
		tf,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideBackfiller creates the REST kline history loader.
func ProvideBackfiller(store repository.CandleStore, cfg *config.Config, log *logger.Logger) repository.HistoryLoader {
	return stream.NewBackfiller(
		cfg.Binance.RESTURL,
		cfg.Binance.Symbols,
		cfg.Binance.Interval,
		cfg.Binance.Backfill,
		store,
		log,
	)
}

// ProvideCandleCollector creates the candle collector use case.
func ProvideCandleCollector(
	s repository.MarketStream,
	processor *usecase.CandleProcessor,
	m repository.Metrics,
	backfill repository.HistoryLoader,
) *usecase.CandleCollector {
	return usecase.NewCandleCollector(s, processor, m, backfill)
}

// ProvideRedisCache creates the shared Redis connection.
func ProvideRedisCache(cfg *config.Config) (*pkgcache.RedisCache, error) {
	host, portStr, err := net.SplitHostPort(cfg.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("redis addr %q: %w", cfg.Redis.Addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("redis port %q: %w", portStr, err)
	}
	return pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	)
}

// ProvideRedisClient exposes the underlying go-redis client for the queue
// and byte-level cache access.
func ProvideRedisClient(rc *pkgcache.RedisCache) *redis.Client {
	return rc.Client()
}

// ProvideBytesCache creates the byte-level cache used by the wave use cases.
func ProvideBytesCache(cli *redis.Client) svccache.BytesCache {
	return svccache.NewRedisCache(cli)
}

// ProvideRedisQueue creates the labeling job queue.
func ProvideRedisQueue(log *logger.Logger, cfg *config.Config, cli *redis.Client) *queue.RedisQueue {
	return queue.NewRedisQueue(
		log,
		&queue.QueueConfig{
			Workers:    cfg.Redis.Queue.Workers,
			RetryLimit: cfg.Redis.Queue.RetryLimit,
			RetryDelay: cfg.Redis.Queue.RetryDelay,
		},
		cli,
		queue.ModeProducerConsumer,
		queue.WithKeyPrefix("wavescope:queue"),
	)
}

func analysisConfig(cfg *config.Config) usecase.WaveAnalysisConfig {
	return usecase.WaveAnalysisConfig{
		NImpulse:            cfg.Analysis.NImpulse,
		NCorrection:         cfg.Analysis.NCorrection,
		MinProbability:      cfg.Analysis.MinProbability,
		ScanStep:            cfg.Analysis.ScanStep,
		MaxPatternsPerStart: cfg.Analysis.MaxPatternsPerStart,
		Overlap:             cfg.Analysis.OverlapStrategy,
		CacheTTL:            cfg.Analysis.CacheTTL,
	}
}

// ProvideWaveAnalysisUseCase creates the synchronous wave analysis use case.
func ProvideWaveAnalysisUseCase(
	store repository.CandleStore,
	bc svccache.BytesCache,
	pub repository.Publisher,
	log *logger.Logger,
	cfg *config.Config,
) *usecase.WaveAnalysisUseCase {
	return usecase.NewWaveAnalysisUseCase(store, bc, pub, log, analysisConfig(cfg))
}

// ProvideLabelingUseCase creates the async labeling use case backed by the queue.
func ProvideLabelingUseCase(
	store repository.CandleStore,
	bc svccache.BytesCache,
	rq *queue.RedisQueue,
	log *logger.Logger,
	cfg *config.Config,
) *usecase.LabelingUseCase {
	return usecase.NewLabelingUseCase(store, bc, rq, log, analysisConfig(cfg))
}

// ProvideCandlesUseCase creates the candle read use case.
func ProvideCandlesUseCase(store repository.CandleStore) *usecase.CandlesUseCase {
	return usecase.NewCandlesUseCase(store)
}

// ProvideWavesHandler creates the Echo HTTP handler.
func ProvideWavesHandler(
	log *logger.Logger,
	analysis *usecase.WaveAnalysisUseCase,
	labeling *usecase.LabelingUseCase,
	candles *usecase.CandlesUseCase,
) *api.WavesEchoHandler {
	return api.NewWavesEchoHandler(log, analysis, labeling, candles)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	collector *usecase.CandleCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaCandlesHandler,
	chClient *pkgch.Client,
	rq *queue.RedisQueue,
	labeling *usecase.LabelingUseCase,
	handler *api.WavesEchoHandler,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}

	// The queue worker executes labeling jobs enqueued over HTTP.
	rq.RegisterJob(usecase.NewLabelJob(labeling))

	app := server.New(cfg, log, collector, consumer, kh, chClient, rq)
	app.SetHTTPHandler(handler)
	if collector != nil {
		app.CandleProc = collector.Processor()
	}
	return app
}
