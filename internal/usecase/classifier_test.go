package usecase

import (
	"testing"

	"github.com/Swigstan1810/Heights-sub002/internal/domain/models"
)

func TestClassifyBitcoinAlias(t *testing.T) {
	c := NewClassifier()
	q := c.Classify("What's the price of bitcoin?", nil)

	if q.AssetSymbol != "BTC" {
		t.Fatalf("expected BTC, got %q", q.AssetSymbol)
	}
	if q.AssetType != models.AssetCrypto {
		t.Fatalf("expected crypto, got %q", q.AssetType)
	}
	if q.Intent != models.IntentPrice {
		t.Fatalf("expected price intent, got %q", q.Intent)
	}
	if q.Confidence != 0.75 {
		t.Fatalf("expected alias confidence 0.75, got %v", q.Confidence)
	}
}

func TestClassifyExactTicker(t *testing.T) {
	c := NewClassifier()
	q := c.Classify("BTC price", nil)

	if q.AssetSymbol != "BTC" {
		t.Fatalf("expected BTC, got %q", q.AssetSymbol)
	}
	if q.Confidence != 0.9 {
		t.Fatalf("expected ticker confidence 0.9, got %v", q.Confidence)
	}
}

func TestClassifyDoingTodayIsAnalysis(t *testing.T) {
	c := NewClassifier()
	q := c.Classify("What's Bitcoin doing today?", nil)

	if q.Intent != models.IntentAnalysis {
		t.Fatalf("expected analysis intent, got %q", q.Intent)
	}
	if q.AssetSymbol != "BTC" {
		t.Fatalf("expected BTC, got %q", q.AssetSymbol)
	}
	if q.Timeframe != "1d" {
		t.Fatalf("expected timeframe 1d, got %q", q.Timeframe)
	}
}

func TestClassifyNoSubstringFalsePositive(t *testing.T) {
	c := NewClassifier()
	q := c.Classify("Are solar energy companies profitable?", nil)

	if q.AssetSymbol != "" {
		t.Fatalf("expected no symbol, got %q", q.AssetSymbol)
	}
}

func TestClassifySymbolFromContext(t *testing.T) {
	c := NewClassifier()
	cctx := &models.ChatContext{MessageHistory: []models.ChatMessage{
		{Role: "user", Content: "Tell me about ethereum"},
		{Role: "assistant", Content: "Ethereum is a smart contract platform."},
	}}
	q := c.Classify("What's the current price?", cctx)

	if q.AssetSymbol != "ETH" {
		t.Fatalf("expected ETH from history, got %q", q.AssetSymbol)
	}
	if q.Parameters["symbol_from_context"] != "true" {
		t.Fatalf("expected symbol_from_context parameter")
	}
	if q.Intent != models.IntentPrice {
		t.Fatalf("expected price intent, got %q", q.Intent)
	}
}

func TestClassifyComparisonBeatsPrice(t *testing.T) {
	c := NewClassifier()
	q := c.Classify("Compare bitcoin price versus ethereum", nil)

	if q.Intent != models.IntentComparison {
		t.Fatalf("expected comparison intent, got %q", q.Intent)
	}
}

func TestClassifyDefaultsToExplanation(t *testing.T) {
	c := NewClassifier()
	q := c.Classify("stop-loss orders", nil)

	if q.Intent != models.IntentExplanation {
		t.Fatalf("expected explanation intent, got %q", q.Intent)
	}
	if q.Confidence != 0.3 {
		t.Fatalf("expected baseline confidence, got %v", q.Confidence)
	}
}
