//go:build wireinject
// +build wireinject

package di

import (
	"TradeCore/pkg/config"
	"TradeCore/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Exchange and data services
		ProvideMarketData,
		ProvideOrderVenue,
		ProvideNewsCalendar,

		// Decision components
		ProvideTrendDetector,
		ProvidePatternDetector,
		ProvidePositionSizer,
		ProvideRiskManager,
		ProvideExecutor,

		// Live price stream
		ProvidePriceWatcher,

		// Persistence
		ProvideTradeSink,
		ProvideSinkPipeline,

		// Use cases
		ProvideFillHandler,
		ProvideStrategy,

		// HTTP surface and application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
