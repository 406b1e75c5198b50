package di

import (
	"context"
	"fmt"
	"time"

	"github.com/Swigstan1810/Heights-sub002/internal/domain/repository"
	"github.com/Swigstan1810/Heights-sub002/internal/handler/api"
	internalrepo "github.com/Swigstan1810/Heights-sub002/internal/repository"
	"github.com/Swigstan1810/Heights-sub002/internal/service/cache"
	"github.com/Swigstan1810/Heights-sub002/internal/service/gateway"
	"github.com/Swigstan1810/Heights-sub002/internal/service/providers"
	"github.com/Swigstan1810/Heights-sub002/internal/usecase"
	pkgch "github.com/Swigstan1810/Heights-sub002/pkg/clickhouse"
	"github.com/Swigstan1810/Heights-sub002/pkg/config"
	pkgkafka "github.com/Swigstan1810/Heights-sub002/pkg/kafka"
	applogger "github.com/Swigstan1810/Heights-sub002/pkg/logger"
	"github.com/Swigstan1810/Heights-sub002/pkg/metrics"
	"github.com/Swigstan1810/Heights-sub002/pkg/server"
)

// ProvideLogger creates the application logger. Console output in dev, JSON
// everywhere else.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	if cfg.Environment == "dev" || cfg.Environment == "development" {
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideQuoteCache selects the shared Redis cache when configured, otherwise
// a process-local one.
func ProvideQuoteCache(cfg *config.Config) repository.QuoteCache {
	if cfg.Redis.Enabled {
		return cache.NewRedisQuoteCache(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return cache.NewMemoryQuoteCache(1000)
}

// ProvideGateway builds the provider gateway and registers every provider
// that has credentials configured.
func ProvideGateway(cfg *config.Config, quotes repository.QuoteCache, m repository.Metrics, l *applogger.Logger) *gateway.Gateway {
	newsCache := cache.NewMemoryQuoteCache(200)
	gw := gateway.New(m, l,
		gateway.WithQuoteCache(quotes, cfg.Assistant.QuoteCacheTTL),
		gateway.WithNewsCache(newsCache, cfg.Assistant.NewsCacheTTL),
		gateway.WithMaxRPS(cfg.Providers.MaxRPS),
	)

	if k := cfg.Providers.OpenAI; k.APIKey != "" {
		gw.RegisterReasoner(providers.NewOpenAI(k.APIKey, k.Model, k.MaxTokens))
	}
	if k := cfg.Providers.Perplexity; k.APIKey != "" {
		gw.RegisterReasoner(providers.NewPerplexity(k.APIKey, k.BaseURL, k.Model, k.MaxTokens, k.Timeout))
	}
	if k := cfg.Providers.Finnhub; k.APIKey != "" {
		gw.RegisterMarketData(providers.NewFinnhub(k.APIKey, k.BaseURL, k.Timeout))
	}
	gw.RegisterMarketData(providers.NewCoinGecko(cfg.Providers.CoinGecko.BaseURL, cfg.Providers.CoinGecko.Timeout))
	if k := cfg.Providers.NewsAPI; k.APIKey != "" {
		gw.RegisterNews(providers.NewNewsAPI(k.APIKey, k.BaseURL, k.Timeout))
	}
	return gw
}

// ProvideQuoteStream creates the Finnhub WebSocket cache warmer, or nil when
// streaming is not configured.
func ProvideQuoteStream(cfg *config.Config, quotes repository.QuoteCache, l *applogger.Logger) *providers.QuoteStream {
	fh := cfg.Providers.Finnhub
	if fh.APIKey == "" || fh.WebSocketURL == "" || len(fh.StreamSymbols) == 0 {
		return nil
	}
	return providers.NewQuoteStream(fh.APIKey, fh.WebSocketURL, fh.StreamSymbols, cfg.Assistant.QuoteCacheTTL, quotes, l)
}

func ProvideClassifier() *usecase.Classifier {
	return usecase.NewClassifier()
}

func ProvidePlanner(cfg *config.Config) *usecase.Planner {
	return usecase.NewPlanner(cfg.Assistant.QueryTimeout, cfg.Assistant.MaxRetries)
}

func ProvideSynthesizer(cfg *config.Config, l *applogger.Logger) *usecase.Synthesizer {
	return usecase.NewSynthesizer(cfg.Assistant.Synthesis.MaxContinuations, cfg.Assistant.Synthesis.CompleteLineCount, l)
}

func ProvideConfidenceScorer(cfg *config.Config) *usecase.ConfidenceScorer {
	w := cfg.Assistant.Confidence
	return usecase.NewConfidenceScorer(w.TechnicalWeight, w.FundamentalWeight, w.MarketWeight, w.NewsWeight)
}

// ProvideClickHouseClient creates the query-log database client, or nil when
// logging to ClickHouse is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithAddr(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithAsyncInsert(true, false),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideQueryLog creates the query log on top of ClickHouse, ensuring its
// schema exists. Nil when ClickHouse is disabled.
func ProvideQueryLog(client *pkgch.Client) (repository.QueryLog, error) {
	if client == nil {
		return nil, nil
	}
	ql := internalrepo.NewClickHouseQueryLog(client.DB())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ql.InitSchema(ctx); err != nil {
		return nil, err
	}
	return ql, nil
}

// ProvideKafkaProducer creates the telemetry producer, or nil when Kafka is
// disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithAsync(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideEventPublisher wraps the producer, or nil when Kafka is disabled.
func ProvideEventPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.EventPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.Topic)
}

// ProvideOrchestrator assembles the query pipeline with optional telemetry.
func ProvideOrchestrator(
	classifier *usecase.Classifier,
	planner *usecase.Planner,
	gw *gateway.Gateway,
	synth *usecase.Synthesizer,
	scorer *usecase.ConfidenceScorer,
	m repository.Metrics,
	l *applogger.Logger,
	queryLog repository.QueryLog,
	events repository.EventPublisher,
) *usecase.Orchestrator {
	orch := usecase.NewOrchestrator(classifier, planner, gw, synth, scorer, m, l)
	if queryLog != nil {
		orch.SetQueryLog(queryLog)
	}
	if events != nil {
		orch.SetEventPublisher(events)
	}
	return orch
}

func ProvideAssistantHandler(l *applogger.Logger, orch *usecase.Orchestrator) *api.AssistantHandler {
	return api.NewAssistantHandler(l, orch)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler *api.AssistantHandler,
	stream *providers.QuoteStream,
	chClient *pkgch.Client,
	queryLog repository.QueryLog,
	events repository.EventPublisher,
) *server.App {
	return server.New(cfg, l, handler, stream, chClient, queryLog, events)
}
