//go:build wireinject
// +build wireinject

package di

import (
	"FareFlex/pkg/config"
	"FareFlex/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideMarketCache,

		// Model artifacts
		ProvideEncoders,
		ProvideEstimator,
		ProvideEngine,

		// Repositories
		ProvideQuoteStore,
		ProvideQuotePublisher,
		ProvideMarketSnapshots,
		ProvideAuditSpool,

		// Use cases
		ProvideQuoteService,
		ProvideTickPipeline,
		ProvideMarketTicksHandler,

		// HTTP
		ProvidePricingHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
