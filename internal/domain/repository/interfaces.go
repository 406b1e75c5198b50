package repository

import (
	"context"
	"time"

	"github.com/Swigstan1810/Heights-sub002/internal/domain/models"
)

// QuoteCache is a read-through cache of recent market quotes with a fixed TTL.
// Implementations must be safe for concurrent use.
type QuoteCache interface {
	GetQuote(symbol string) (models.MarketDataPoint, bool)
	SetQuote(symbol string, q models.MarketDataPoint, ttl time.Duration)
}

// QueryLog records processed queries for offline evaluation. Logging is
// best-effort; failures must not affect the caller-visible response.
type QueryLog interface {
	Record(ctx context.Context, query string, resp *models.AIResponse) error
	Close() error
}

// EventPublisher emits one telemetry event per processed query.
type EventPublisher interface {
	PublishQueryEvent(ctx context.Context, resp *models.AIResponse) error
	Close() error
}

type Metrics interface {
	RecordQuery(intent string)
	RecordProviderError(provider, kind string)
	RecordCascadeDepth(depth int)
	RecordLatency(op string, seconds float64)
}
