package cache

import (
	"time"

	"github.com/Swigstan1810/Heights-sub002/internal/domain/models"
	"github.com/Swigstan1810/Heights-sub002/internal/domain/repository"
)

// MemoryQuoteCache implements repository.QuoteCache on a bounded TTL map.
type MemoryQuoteCache struct {
	c *TTLCache
}

func NewMemoryQuoteCache(maxSize int) *MemoryQuoteCache {
	return &MemoryQuoteCache{c: NewTTLCache(maxSize)}
}

func (m *MemoryQuoteCache) GetQuote(symbol string) (models.MarketDataPoint, bool) {
	if v, ok := m.c.Get("quote:" + symbol); ok {
		if q, ok2 := v.(models.MarketDataPoint); ok2 {
			return q, true
		}
	}
	return models.MarketDataPoint{}, false
}

func (m *MemoryQuoteCache) SetQuote(symbol string, q models.MarketDataPoint, ttl time.Duration) {
	m.c.Set("quote:"+symbol, q, ttl)
}

// GetNews and SetNews let the gateway reuse the same store for news lists.
func (m *MemoryQuoteCache) GetNews(symbol string) ([]models.NewsItem, bool) {
	if v, ok := m.c.Get("news:" + symbol); ok {
		if items, ok2 := v.([]models.NewsItem); ok2 {
			return items, true
		}
	}
	return nil, false
}

func (m *MemoryQuoteCache) SetNews(symbol string, items []models.NewsItem, ttl time.Duration) {
	m.c.Set("news:"+symbol, items, ttl)
}

var _ repository.QuoteCache = (*MemoryQuoteCache)(nil)
