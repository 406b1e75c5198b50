package usecase

import (
	"testing"
	"time"

	"github.com/Swigstan1810/Heights-sub002/internal/domain/models"
)

func TestPlanCryptoPriceIsDataFirst(t *testing.T) {
	p := NewPlanner(30*time.Second, 2)
	s := p.Plan(models.ClassifiedQuery{
		Intent:      models.IntentPrice,
		AssetType:   models.AssetCrypto,
		AssetSymbol: "BTC",
	})

	if s.PrimaryProvider != models.ProviderCoinGecko {
		t.Fatalf("expected coingecko primary, got %q", s.PrimaryProvider)
	}
	if !s.RequiresData {
		t.Fatalf("expected RequiresData for symbol query")
	}
	if len(s.FallbackProviders) != 2 || s.FallbackProviders[1] != models.ProviderOpenAI {
		t.Fatalf("unexpected fallbacks %v", s.FallbackProviders)
	}
}

func TestPlanStockPriceUsesFinnhub(t *testing.T) {
	p := NewPlanner(30*time.Second, 2)
	s := p.Plan(models.ClassifiedQuery{
		Intent:      models.IntentPrice,
		AssetType:   models.AssetStock,
		AssetSymbol: "AAPL",
	})

	if s.PrimaryProvider != models.ProviderFinnhub {
		t.Fatalf("expected finnhub primary, got %q", s.PrimaryProvider)
	}
}

func TestPlanExplanationNeedsNoData(t *testing.T) {
	p := NewPlanner(30*time.Second, 2)
	s := p.Plan(models.ClassifiedQuery{Intent: models.IntentExplanation})

	if s.RequiresData {
		t.Fatalf("explanation without symbol must not require data")
	}
	if s.PrimaryProvider != models.ProviderOpenAI {
		t.Fatalf("expected openai primary, got %q", s.PrimaryProvider)
	}
}

func TestPlanCarriesTimeoutAndRetries(t *testing.T) {
	p := NewPlanner(12*time.Second, 3)
	s := p.Plan(models.ClassifiedQuery{Intent: models.IntentNews, AssetSymbol: "ETH"})

	if s.Timeout != 12*time.Second {
		t.Fatalf("expected 12s timeout, got %v", s.Timeout)
	}
	if s.MaxRetries != 3 {
		t.Fatalf("expected 3 retries, got %d", s.MaxRetries)
	}
}

func TestDedupeSuccessive(t *testing.T) {
	out := dedupeSuccessive(models.ProviderOpenAI, []models.ProviderID{
		models.ProviderOpenAI,
		models.ProviderPerplexity,
		models.ProviderPerplexity,
		models.ProviderOpenAI,
	})
	want := []models.ProviderID{models.ProviderPerplexity, models.ProviderOpenAI}
	if len(out) != len(want) {
		t.Fatalf("expected %v, got %v", want, out)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, out)
		}
	}
}
