package usecase

import (
	"math"
	"testing"

	"github.com/Swigstan1810/Heights-sub002/internal/domain/models"
)

func defaultScorer() *ConfidenceScorer {
	return NewConfidenceScorer(0.3, 0.3, 0.2, 0.2)
}

func TestScoreUniformSignals(t *testing.T) {
	s := defaultScorer()
	v := 0.8
	got := s.Score(&v, &v, &v, &v)
	if math.Abs(got-0.8) > 1e-9 {
		t.Fatalf("expected 0.8, got %v", got)
	}
}

func TestScoreAllNilIsNeutral(t *testing.T) {
	s := defaultScorer()
	if got := s.Score(nil, nil, nil, nil); got != 0.5 {
		t.Fatalf("expected 0.5, got %v", got)
	}
}

func TestScoreClampsOutOfRange(t *testing.T) {
	s := defaultScorer()
	hi, lo := 3.0, -2.0
	got := s.Score(&hi, &lo, nil, nil)
	if got < 0 || got > 1 {
		t.Fatalf("score out of bounds: %v", got)
	}
	// 0.3*1 + 0.3*0 + 0.2*0.5 + 0.2*0.5
	if math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("expected 0.5, got %v", got)
	}
}

func TestNewsSentimentSignal(t *testing.T) {
	if NewsSentimentSignal(nil) != nil {
		t.Fatalf("expected nil for empty news")
	}
	items := []models.NewsItem{
		{Sentiment: models.SentimentPositive},
		{Sentiment: models.SentimentNegative},
		{Sentiment: models.SentimentNeutral},
	}
	got := NewsSentimentSignal(items)
	if got == nil {
		t.Fatalf("expected signal")
	}
	if math.Abs(*got-0.5) > 1e-9 {
		t.Fatalf("expected 0.5, got %v", *got)
	}
}

func TestDeriveTradeSetup(t *testing.T) {
	s := defaultScorer()
	setup := s.DeriveTradeSetup(100, 0.02, 0.8, 10000)

	if setup.Entry != 100 {
		t.Fatalf("expected entry 100, got %v", setup.Entry)
	}
	if math.Abs(setup.StopLoss-97) > 1e-9 {
		t.Fatalf("expected stop 97, got %v", setup.StopLoss)
	}
	if math.Abs(setup.Target-106) > 1e-9 {
		t.Fatalf("expected target 106, got %v", setup.Target)
	}
	if setup.RiskReward != 2.0 {
		t.Fatalf("expected 2.0 risk/reward, got %v", setup.RiskReward)
	}
	if setup.PositionSizePct <= 0 || setup.PositionSizePct > 20 {
		t.Fatalf("position size out of bounds: %v", setup.PositionSizePct)
	}
}

func TestDeriveTradeSetupZeroPrice(t *testing.T) {
	s := defaultScorer()
	if setup := s.DeriveTradeSetup(0, 0.02, 0.8, 10000); setup.Entry != 0 {
		t.Fatalf("expected empty setup for zero price")
	}
}
