package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Swigstan1810/Heights-sub002/internal/domain/models"
	"github.com/Swigstan1810/Heights-sub002/internal/domain/repository"
)

// RedisQuoteCache implements repository.QuoteCache on Redis so multiple
// assistant instances share one quote pool.
type RedisQuoteCache struct {
	cli *redis.Client
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisQuoteCache(cfg RedisConfig) *RedisQuoteCache {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	return &RedisQuoteCache{cli: rdb}
}

func (r *RedisQuoteCache) GetQuote(symbol string) (models.MarketDataPoint, bool) {
	b, err := r.cli.Get(context.Background(), "quote:"+symbol).Bytes()
	if err != nil {
		return models.MarketDataPoint{}, false
	}
	var q models.MarketDataPoint
	if err := json.Unmarshal(b, &q); err != nil {
		return models.MarketDataPoint{}, false
	}
	return q, true
}

func (r *RedisQuoteCache) SetQuote(symbol string, q models.MarketDataPoint, ttl time.Duration) {
	b, err := json.Marshal(q)
	if err != nil {
		return
	}
	_ = r.cli.Set(context.Background(), "quote:"+symbol, b, ttl).Err()
}

func (r *RedisQuoteCache) Close() error { return r.cli.Close() }

var _ repository.QuoteCache = (*RedisQuoteCache)(nil)
