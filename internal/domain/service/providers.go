package service

import (
	"context"

	"github.com/Swigstan1810/Heights-sub002/internal/domain/models"
)

// ReasoningProvider is a conversational model service. Implementations must
// return a models.ProviderError for every failure, never a raw transport error.
type ReasoningProvider interface {
	ID() models.ProviderID
	Converse(ctx context.Context, systemPrompt string, messages []models.ChatMessage) (string, error)
}

// MarketDataProvider returns a quote snapshot for a symbol.
type MarketDataProvider interface {
	ID() models.ProviderID
	FetchMarketData(ctx context.Context, symbol string) (models.MarketDataPoint, error)
}

// NewsProvider returns recent news for a symbol.
type NewsProvider interface {
	ID() models.ProviderID
	FetchNews(ctx context.Context, symbol string) ([]models.NewsItem, error)
}
