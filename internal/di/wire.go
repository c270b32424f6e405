//go:build wireinject
// +build wireinject

package di

import (
	"WaveScope/pkg/config"
	"WaveScope/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisCache,
		ProvideRedisClient,

		// Repositories
		ProvideCandleStore,
		ProvidePublisher,
		ProvideBinanceStream,
		ProvideBackfiller,
		ProvideBytesCache,
		ProvideRedisQueue,

		// Use cases
		ProvideCandleProcessor,
		ProvideCandleCollector,
		ProvideKafkaCandlesHandler,
		ProvideWaveAnalysisUseCase,
		ProvideLabelingUseCase,
		ProvideCandlesUseCase,

		// HTTP
		ProvideWavesHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
