package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Swigstan1810/Heights-sub002/internal/domain/models"
	"github.com/Swigstan1810/Heights-sub002/internal/domain/repository"
	applogger "github.com/Swigstan1810/Heights-sub002/pkg/logger"
)

// QuoteStream keeps the quote cache warm from the Finnhub trade WebSocket so
// repeat price queries skip the REST round trip.
type QuoteStream struct {
	apiKey       string
	websocketURL string
	symbols      []string
	cacheTTL     time.Duration
	cache        repository.QuoteCache
	logger       *applogger.Logger

	conn      *websocket.Conn
	connected bool
}

func NewQuoteStream(apiKey, websocketURL string, symbols []string, cacheTTL time.Duration, cache repository.QuoteCache, l *applogger.Logger) *QuoteStream {
	return &QuoteStream{
		apiKey:       apiKey,
		websocketURL: websocketURL,
		symbols:      symbols,
		cacheTTL:     cacheTTL,
		cache:        cache,
		logger:       l,
	}
}

// Connect establishes the WebSocket connection and subscribes to symbols.
func (s *QuoteStream) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", s.websocketURL, s.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("quote stream connect: %w", err)
	}
	s.conn = conn
	s.connected = true
	for _, sym := range s.symbols {
		msg := map[string]string{"type": "subscribe", "symbol": sym}
		if err := s.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", sym, err)
		}
	}
	return nil
}

type wsTrade struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	V float64 `json:"v"`
	T int64   `json:"t"` // ms
}

type wsMessage struct {
	Type string    `json:"type"`
	Data []wsTrade `json:"data"`
}

// Run reads trades and writes quotes into the cache until ctx is done.
// Transient read errors trigger a reconnect with a fixed delay.
func (s *QuoteStream) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			_ = s.Close()
			return
		default:
		}

		if !s.connected {
			if err := s.Connect(ctx); err != nil {
				s.logger.Warn("quote stream reconnect failed", applogger.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(5 * time.Second):
				}
				continue
			}
		}

		_, b, err := s.conn.ReadMessage()
		if err != nil {
			s.logger.Warn("quote stream read error", applogger.Error(err))
			_ = s.Close()
			continue
		}
		var m wsMessage
		if err := json.Unmarshal(b, &m); err != nil || m.Type != "trade" {
			// ignore non-trade frames
			continue
		}
		for _, t := range m.Data {
			prev, _ := s.cache.GetQuote(t.S)
			q := models.MarketDataPoint{
				Symbol:    t.S,
				Price:     t.P,
				Volume:    t.V,
				High24h:   maxFloat(prev.High24h, t.P),
				Low24h:    minNonZero(prev.Low24h, t.P),
				Source:    models.ProviderFinnhub,
				Timestamp: time.Unix(0, t.T*int64(time.Millisecond)),
			}
			if prev.Price > 0 {
				q.Change = t.P - prev.Price
				q.ChangePercent = q.Change / prev.Price * 100
			}
			s.cache.SetQuote(t.S, q, s.cacheTTL)
		}
	}
}

// Close closes the WS connection.
func (s *QuoteStream) Close() error {
	s.connected = false
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minNonZero(a, b float64) float64 {
	if a > 0 && a < b {
		return a
	}
	return b
}
