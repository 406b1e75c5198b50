//go:build wireinject
// +build wireinject

package di

import (
	"github.com/Swigstan1810/Heights-sub002/pkg/config"
	"github.com/Swigstan1810/Heights-sub002/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideQuoteCache,

		// Providers and gateway
		ProvideGateway,
		ProvideQuoteStream,

		// Telemetry repositories
		ProvideQueryLog,
		ProvideEventPublisher,

		// Pipeline
		ProvideClassifier,
		ProvidePlanner,
		ProvideSynthesizer,
		ProvideConfidenceScorer,
		ProvideOrchestrator,

		// HTTP surface
		ProvideAssistantHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
