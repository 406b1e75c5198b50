package usecase

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Swigstan1810/Heights-sub002/internal/domain/models"
	"github.com/Swigstan1810/Heights-sub002/internal/service/cache"
	"github.com/Swigstan1810/Heights-sub002/internal/service/gateway"
)

type nopMetrics struct{}

func (nopMetrics) RecordQuery(string)                 {}
func (nopMetrics) RecordProviderError(string, string) {}
func (nopMetrics) RecordCascadeDepth(int)             {}
func (nopMetrics) RecordLatency(string, float64)      {}

type fakeReasoner struct {
	id    models.ProviderID
	reply string
	err   error
}

func (f *fakeReasoner) ID() models.ProviderID { return f.id }

func (f *fakeReasoner) Converse(ctx context.Context, systemPrompt string, messages []models.ChatMessage) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeMarket struct {
	id     models.ProviderID
	quotes map[string]models.MarketDataPoint
	err    error
}

func (f *fakeMarket) ID() models.ProviderID { return f.id }

func (f *fakeMarket) FetchMarketData(ctx context.Context, symbol string) (models.MarketDataPoint, error) {
	if f.err != nil {
		return models.MarketDataPoint{}, f.err
	}
	q, ok := f.quotes[symbol]
	if !ok {
		return models.MarketDataPoint{}, models.NewProviderError(f.id, models.ErrKindEmptyResult, nil)
	}
	return q, nil
}

func newTestOrchestrator(t *testing.T, gw *gateway.Gateway) *Orchestrator {
	t.Helper()
	l := newTestLogger(t)
	return NewOrchestrator(
		NewClassifier(),
		NewPlanner(5*time.Second, 2),
		gw,
		NewSynthesizer(2, 8, l),
		NewConfidenceScorer(0.3, 0.3, 0.2, 0.2),
		nopMetrics{},
		l,
	)
}

func TestCascadeFallsToNextReasoner(t *testing.T) {
	gw := gateway.New(nopMetrics{}, newTestLogger(t), gateway.WithMaxRPS(100))
	gw.RegisterReasoner(&fakeReasoner{
		id:  models.ProviderOpenAI,
		err: models.NewProviderError(models.ProviderOpenAI, models.ErrKindTimeout, nil),
	})
	gw.RegisterReasoner(&fakeReasoner{
		id:    models.ProviderPerplexity,
		reply: "Ethereum fundamentals look steady. In summary, the network keeps growing.",
	})

	o := newTestOrchestrator(t, gw)
	resp := o.ProcessQuery(context.Background(), "Should I buy ethereum?", nil, nil)

	if resp.Content == "" {
		t.Fatalf("expected content from fallback reasoner")
	}
	found := false
	for _, s := range resp.Metadata.Sources {
		if s == models.ProviderPerplexity {
			found = true
		}
		if s == models.ProviderOpenAI {
			t.Fatalf("failed provider must not appear in sources: %v", resp.Metadata.Sources)
		}
	}
	if !found {
		t.Fatalf("expected perplexity in sources, got %v", resp.Metadata.Sources)
	}
}

func TestAllProvidersFailYieldsTerminalFallback(t *testing.T) {
	gw := gateway.New(nopMetrics{}, newTestLogger(t), gateway.WithMaxRPS(100))
	gw.RegisterReasoner(&fakeReasoner{
		id:  models.ProviderOpenAI,
		err: models.NewProviderError(models.ProviderOpenAI, models.ErrKindTransport, nil),
	})
	gw.RegisterReasoner(&fakeReasoner{
		id:  models.ProviderPerplexity,
		err: models.NewProviderError(models.ProviderPerplexity, models.ErrKindTransport, nil),
	})

	o := newTestOrchestrator(t, gw)
	resp := o.ProcessQuery(context.Background(), "Analyze the market for bitcoin", nil, nil)

	found := false
	for _, s := range resp.Metadata.Sources {
		if s == models.ProviderFallback {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected fallback provider in sources, got %v", resp.Metadata.Sources)
	}
	if !strings.Contains(strings.ToLower(resp.Content), "real-time market data was unavailable") {
		t.Fatalf("fallback must state that real-time data was unavailable: %q", resp.Content)
	}
}

func TestPriceQueryFormatsFetchedQuote(t *testing.T) {
	gw := gateway.New(nopMetrics{}, newTestLogger(t), gateway.WithMaxRPS(100))
	gw.RegisterMarketData(&fakeMarket{
		id: models.ProviderCoinGecko,
		quotes: map[string]models.MarketDataPoint{
			"BTC": {
				Symbol:        "BTC",
				Price:         62000,
				ChangePercent: 2.5,
				High24h:       63000,
				Low24h:        60500,
				Source:        models.ProviderCoinGecko,
				Timestamp:     time.Now(),
			},
		},
	})
	gw.RegisterReasoner(&fakeReasoner{id: models.ProviderOpenAI, reply: "unused"})

	o := newTestOrchestrator(t, gw)
	resp := o.ProcessQuery(context.Background(), "What's the price of bitcoin?", nil, nil)

	if !strings.Contains(resp.Content, "$62000.00") {
		t.Fatalf("expected formatted price in content: %q", resp.Content)
	}
	if len(resp.MarketData) != 1 || resp.MarketData[0].Symbol != "BTC" {
		t.Fatalf("expected BTC market data, got %v", resp.MarketData)
	}
	found := false
	for _, s := range resp.Metadata.Sources {
		if s == models.ProviderCoinGecko {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected coingecko in sources, got %v", resp.Metadata.Sources)
	}
	if resp.Metadata.DataFreshness != "realtime" {
		t.Fatalf("expected realtime freshness, got %q", resp.Metadata.DataFreshness)
	}
}

func TestWarmCacheDoesNotDuplicateMarketData(t *testing.T) {
	quotes := cache.NewMemoryQuoteCache(16)
	quotes.SetQuote("BTC", models.MarketDataPoint{
		Symbol:    "BTC",
		Price:     62000,
		Source:    models.ProviderCoinGecko,
		Timestamp: time.Now(),
	}, time.Minute)

	gw := gateway.New(nopMetrics{}, newTestLogger(t),
		gateway.WithMaxRPS(100),
		gateway.WithQuoteCache(quotes, time.Minute),
	)
	// Two providers registered; both hit the warm cache and get the same point.
	gw.RegisterMarketData(&fakeMarket{id: models.ProviderCoinGecko, quotes: map[string]models.MarketDataPoint{}})
	gw.RegisterMarketData(&fakeMarket{id: models.ProviderFinnhub, quotes: map[string]models.MarketDataPoint{}})
	gw.RegisterReasoner(&fakeReasoner{id: models.ProviderOpenAI, reply: "unused"})

	o := newTestOrchestrator(t, gw)
	resp := o.ProcessQuery(context.Background(), "What's the price of bitcoin?", nil, nil)

	if len(resp.MarketData) != 1 {
		t.Fatalf("expected one deduplicated market data point, got %v", resp.MarketData)
	}
	if resp.MarketData[0].Source != models.ProviderCoinGecko {
		t.Fatalf("unexpected source %q", resp.MarketData[0].Source)
	}
}

func TestEmptyQueryIsErrorShaped(t *testing.T) {
	gw := gateway.New(nopMetrics{}, newTestLogger(t))
	o := newTestOrchestrator(t, gw)

	resp := o.ProcessQuery(context.Background(), "   ", nil, nil)

	if resp.Type != "error" {
		t.Fatalf("expected error type, got %q", resp.Type)
	}
	if resp.Metadata.Confidence != 0 {
		t.Fatalf("expected zero confidence, got %v", resp.Metadata.Confidence)
	}
	if len(resp.Metadata.Sources) != 0 {
		t.Fatalf("expected no sources, got %v", resp.Metadata.Sources)
	}
}

func TestAnalysisWithQuoteCarriesTradeSetup(t *testing.T) {
	gw := gateway.New(nopMetrics{}, newTestLogger(t), gateway.WithMaxRPS(100))
	gw.RegisterMarketData(&fakeMarket{
		id: models.ProviderCoinGecko,
		quotes: map[string]models.MarketDataPoint{
			"BTC": {
				Symbol:    "BTC",
				Price:     62000,
				High24h:   63000,
				Low24h:    60500,
				Source:    models.ProviderCoinGecko,
				Timestamp: time.Now(),
			},
		},
	})
	gw.RegisterReasoner(&fakeReasoner{
		id:    models.ProviderOpenAI,
		reply: "Bitcoin momentum is strong. Recommendation: buy. In summary, the trend holds.",
	})

	o := newTestOrchestrator(t, gw)
	resp := o.ProcessQuery(context.Background(), "Analyze the market for bitcoin", nil, nil)

	if resp.Analysis == nil {
		t.Fatalf("expected structured analysis for analysis intent")
	}
	setup := resp.Analysis.TradeSetup
	if setup == nil {
		t.Fatalf("expected trade setup when a quote is available")
	}
	if setup.Entry != 62000 {
		t.Fatalf("expected entry at current price, got %v", setup.Entry)
	}
	if setup.StopLoss >= setup.Entry || setup.Target <= setup.Entry {
		t.Fatalf("expected stop below and target above entry, got stop=%v target=%v", setup.StopLoss, setup.Target)
	}
	if setup.RiskReward != 2.0 {
		t.Fatalf("expected 2:1 risk reward, got %v", setup.RiskReward)
	}
}

func TestConcurrentQueriesAreIsolated(t *testing.T) {
	gw := gateway.New(nopMetrics{}, newTestLogger(t), gateway.WithMaxRPS(1000))
	gw.RegisterMarketData(&fakeMarket{
		id: models.ProviderCoinGecko,
		quotes: map[string]models.MarketDataPoint{
			"BTC": {Symbol: "BTC", Price: 62000, Source: models.ProviderCoinGecko, Timestamp: time.Now()},
			"ETH": {Symbol: "ETH", Price: 2400, Source: models.ProviderCoinGecko, Timestamp: time.Now()},
		},
	})
	o := newTestOrchestrator(t, gw)

	queries := map[string]string{
		"What's the price of bitcoin?":  "BTC",
		"What's the price of ethereum?": "ETH",
	}

	var wg sync.WaitGroup
	for q, want := range queries {
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func(q, want string) {
				defer wg.Done()
				resp := o.ProcessQuery(context.Background(), q, nil, nil)
				if len(resp.MarketData) != 1 || resp.MarketData[0].Symbol != want {
					t.Errorf("query %q got market data %v", q, resp.MarketData)
				}
			}(q, want)
		}
	}
	wg.Wait()
}

func TestStreamEmitsFiniteSequence(t *testing.T) {
	gw := gateway.New(nopMetrics{}, newTestLogger(t), gateway.WithMaxRPS(100))
	gw.RegisterReasoner(&fakeReasoner{
		id:    models.ProviderOpenAI,
		reply: "Stop-loss orders cap downside by selling at a preset price. In summary, they bound risk.",
	})
	o := newTestOrchestrator(t, gw)

	var got []models.AIResponse
	for partial := range o.StreamProcessQuery(context.Background(), "Explain a stop-loss order", nil) {
		got = append(got, partial)
	}

	if len(got) < 2 {
		t.Fatalf("expected head and final emission, got %d", len(got))
	}
	final := got[len(got)-1]
	if final.Content == "" {
		t.Fatalf("final emission must carry content")
	}
	for _, r := range got {
		if r.ID != got[0].ID {
			t.Fatalf("stream emissions must share one response id")
		}
	}
}
