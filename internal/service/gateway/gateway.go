package gateway

import (
	"context"
	"time"

	"github.com/Swigstan1810/Heights-sub002/internal/domain/models"
	"github.com/Swigstan1810/Heights-sub002/internal/domain/repository"
	domsvc "github.com/Swigstan1810/Heights-sub002/internal/domain/service"
	"github.com/Swigstan1810/Heights-sub002/internal/service/ratelimit"
	applogger "github.com/Swigstan1810/Heights-sub002/pkg/logger"
)

// NewsCache caches per-symbol news lists. The in-memory quote cache implements
// it; a nil NewsCache disables news caching.
type NewsCache interface {
	GetNews(symbol string) ([]models.NewsItem, bool)
	SetNews(symbol string, items []models.NewsItem, ttl time.Duration)
}

// Gateway is the single entry point for outbound provider calls. It hides
// per-vendor shape, applies per-provider rate limits and call timeouts, and
// serves quotes read-through from the cache. Every failure it returns is a
// *models.ProviderError.
type Gateway struct {
	reasoners map[models.ProviderID]domsvc.ReasoningProvider
	market    map[models.ProviderID]domsvc.MarketDataProvider
	news      map[models.ProviderID]domsvc.NewsProvider

	quotes    repository.QuoteCache
	newsCache NewsCache
	limiter   *ratelimit.Limiter
	metrics   repository.Metrics
	logger    *applogger.Logger

	maxRPS   float64
	quoteTTL time.Duration
	newsTTL  time.Duration
}

type Option func(*Gateway)

// WithQuoteCache enables read-through quote caching with the given TTL.
func WithQuoteCache(c repository.QuoteCache, ttl time.Duration) Option {
	return func(g *Gateway) {
		g.quotes = c
		g.quoteTTL = ttl
	}
}

// WithNewsCache enables news caching with the given TTL.
func WithNewsCache(c NewsCache, ttl time.Duration) Option {
	return func(g *Gateway) {
		g.newsCache = c
		g.newsTTL = ttl
	}
}

// WithMaxRPS caps outbound calls per provider per second.
func WithMaxRPS(rps float64) Option {
	return func(g *Gateway) {
		if rps > 0 {
			g.maxRPS = rps
		}
	}
}

func New(metrics repository.Metrics, l *applogger.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		reasoners: make(map[models.ProviderID]domsvc.ReasoningProvider),
		market:    make(map[models.ProviderID]domsvc.MarketDataProvider),
		news:      make(map[models.ProviderID]domsvc.NewsProvider),
		limiter:   ratelimit.New(),
		metrics:   metrics,
		logger:    l,
		maxRPS:    5,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gateway) RegisterReasoner(p domsvc.ReasoningProvider) {
	g.reasoners[p.ID()] = p
}

func (g *Gateway) RegisterMarketData(p domsvc.MarketDataProvider) {
	g.market[p.ID()] = p
}

func (g *Gateway) RegisterNews(p domsvc.NewsProvider) {
	g.news[p.ID()] = p
}

// HasReasoner reports whether id is a registered reasoning provider.
func (g *Gateway) HasReasoner(id models.ProviderID) bool {
	_, ok := g.reasoners[id]
	return ok
}

// MarketDataProviders lists registered data provider ids.
func (g *Gateway) MarketDataProviders() []models.ProviderID {
	ids := make([]models.ProviderID, 0, len(g.market))
	for id := range g.market {
		ids = append(ids, id)
	}
	return ids
}

// NewsProviders lists registered news provider ids.
func (g *Gateway) NewsProviders() []models.ProviderID {
	ids := make([]models.ProviderID, 0, len(g.news))
	for id := range g.news {
		ids = append(ids, id)
	}
	return ids
}

func (g *Gateway) allow(id models.ProviderID) error {
	if !g.limiter.Allow(string(id), g.maxRPS, g.maxRPS) {
		err := models.NewProviderError(id, models.ErrKindRateLimited, nil)
		g.metrics.RecordProviderError(string(id), string(models.ErrKindRateLimited))
		return err
	}
	return nil
}

func (g *Gateway) recordFailure(id models.ProviderID, err error) {
	if pe, ok := err.(*models.ProviderError); ok {
		g.metrics.RecordProviderError(string(id), string(pe.Kind))
	} else {
		g.metrics.RecordProviderError(string(id), string(models.ErrKindTransport))
	}
}

// Converse invokes a reasoning provider with a per-call timeout.
func (g *Gateway) Converse(ctx context.Context, id models.ProviderID, systemPrompt string, messages []models.ChatMessage, timeout time.Duration) (string, error) {
	p, ok := g.reasoners[id]
	if !ok {
		return "", models.NewProviderError(id, models.ErrKindEmptyResult, nil)
	}
	if err := g.allow(id); err != nil {
		return "", err
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	start := time.Now()
	out, err := p.Converse(ctx, systemPrompt, messages)
	g.metrics.RecordLatency("converse_"+string(id), time.Since(start).Seconds())
	if err != nil {
		g.recordFailure(id, err)
		g.logger.Warn("reasoning provider failed",
			applogger.String("provider", string(id)),
			applogger.Error(err),
		)
		return "", err
	}
	return out, nil
}

// FetchMarketData serves a quote, read-through from the cache when enabled.
func (g *Gateway) FetchMarketData(ctx context.Context, id models.ProviderID, symbol string, timeout time.Duration) (models.MarketDataPoint, error) {
	if g.quotes != nil {
		if q, ok := g.quotes.GetQuote(symbol); ok {
			return q, nil
		}
	}
	p, ok := g.market[id]
	if !ok {
		return models.MarketDataPoint{}, models.NewProviderError(id, models.ErrKindEmptyResult, nil)
	}
	if err := g.allow(id); err != nil {
		return models.MarketDataPoint{}, err
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	start := time.Now()
	q, err := p.FetchMarketData(ctx, symbol)
	g.metrics.RecordLatency("market_data_"+string(id), time.Since(start).Seconds())
	if err != nil {
		g.recordFailure(id, err)
		return models.MarketDataPoint{}, err
	}
	if g.quotes != nil {
		g.quotes.SetQuote(symbol, q, g.quoteTTL)
	}
	return q, nil
}

// FetchNews serves recent news for a symbol, cached when a NewsCache is set.
func (g *Gateway) FetchNews(ctx context.Context, id models.ProviderID, symbol string, timeout time.Duration) ([]models.NewsItem, error) {
	if g.newsCache != nil {
		if items, ok := g.newsCache.GetNews(symbol); ok {
			return items, nil
		}
	}
	p, ok := g.news[id]
	if !ok {
		return nil, models.NewProviderError(id, models.ErrKindEmptyResult, nil)
	}
	if err := g.allow(id); err != nil {
		return nil, err
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	start := time.Now()
	items, err := p.FetchNews(ctx, symbol)
	g.metrics.RecordLatency("news_"+string(id), time.Since(start).Seconds())
	if err != nil {
		g.recordFailure(id, err)
		return nil, err
	}
	if g.newsCache != nil {
		g.newsCache.SetNews(symbol, items, g.newsTTL)
	}
	return items, nil
}
