package cache

import (
	"testing"
	"time"

	"github.com/Swigstan1810/Heights-sub002/internal/domain/models"
)

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache(10)
	c.Set("k", "v", 20*time.Millisecond)

	if _, ok := c.Get("k"); !ok {
		t.Fatalf("expected hit before expiry")
	}
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected miss after expiry")
	}
}

func TestTTLCacheBounded(t *testing.T) {
	c := NewTTLCache(3)
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Set("c", 3, time.Minute)
	c.Set("d", 4, time.Minute)

	if c.Len() > 3 {
		t.Fatalf("cache exceeded max size: %d", c.Len())
	}
}

func TestMemoryQuoteCacheRoundTrip(t *testing.T) {
	m := NewMemoryQuoteCache(10)
	q := models.MarketDataPoint{Symbol: "BTC", Price: 62000}
	m.SetQuote("BTC", q, time.Minute)

	got, ok := m.GetQuote("BTC")
	if !ok || got.Price != 62000 {
		t.Fatalf("expected cached quote, got %v ok=%v", got, ok)
	}
	if _, ok := m.GetQuote("ETH"); ok {
		t.Fatalf("expected miss for unknown symbol")
	}
}

func TestMemoryQuoteCacheNewsKeysSeparate(t *testing.T) {
	m := NewMemoryQuoteCache(10)
	m.SetQuote("BTC", models.MarketDataPoint{Symbol: "BTC"}, time.Minute)
	m.SetNews("BTC", []models.NewsItem{{Title: "headline"}}, time.Minute)

	items, ok := m.GetNews("BTC")
	if !ok || len(items) != 1 {
		t.Fatalf("expected cached news, got %v ok=%v", items, ok)
	}
	if q, ok := m.GetQuote("BTC"); !ok || q.Symbol != "BTC" {
		t.Fatalf("quote entry clobbered by news entry")
	}
}
