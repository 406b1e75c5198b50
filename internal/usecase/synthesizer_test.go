package usecase

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/Swigstan1810/Heights-sub002/internal/domain/models"
	applogger "github.com/Swigstan1810/Heights-sub002/pkg/logger"
)

func newTestLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func TestIsLikelyTruncated(t *testing.T) {
	s := NewSynthesizer(2, 8, newTestLogger(t))

	cases := []struct {
		text string
		want bool
	}{
		{"The market looks stable.", false},
		{"Key levels to watch are...", true},
		{"Top risks include:", true},
		{"Watch for the following:  \n", true},
		{"", false},
	}
	for _, c := range cases {
		if got := s.IsLikelyTruncated(c.text); got != c.want {
			t.Fatalf("IsLikelyTruncated(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestRepairTruncationSplicesOverlap(t *testing.T) {
	s := NewSynthesizer(2, 8, newTestLogger(t))
	original := "Bitcoin momentum remains strong and the key levels to watch are..."
	continuation := "key levels to watch are $62,000 resistance and $58,000 support. In summary, the trend is up."

	calls := 0
	got := s.RepairTruncation(context.Background(), original, func(ctx context.Context, seed string) (string, error) {
		calls++
		if seed == "" {
			t.Fatalf("expected non-empty seed")
		}
		return continuation, nil
	})

	if calls != 1 {
		t.Fatalf("expected exactly one continuation call, got %d", calls)
	}
	if !strings.Contains(got, "$62,000 resistance") {
		t.Fatalf("continuation content missing: %q", got)
	}
	if n := strings.Count(got, "key levels to watch are"); n != 1 {
		t.Fatalf("overlap phrase duplicated %d times: %q", n, got)
	}
}

func TestRepairTruncationBoundedByMax(t *testing.T) {
	s := NewSynthesizer(2, 8, newTestLogger(t))

	calls := 0
	got := s.RepairTruncation(context.Background(), "It keeps going...", func(ctx context.Context, seed string) (string, error) {
		calls++
		return "and going...", nil // still truncated every time
	})

	if calls != 2 {
		t.Fatalf("expected continuations capped at 2, got %d", calls)
	}
	if got == "" {
		t.Fatalf("expected content to survive")
	}
}

func TestRepairTruncationKeepsPartialOnError(t *testing.T) {
	s := NewSynthesizer(2, 8, newTestLogger(t))

	got := s.RepairTruncation(context.Background(), "Top risks include:", func(ctx context.Context, seed string) (string, error) {
		return "", errors.New("provider down")
	})

	if !strings.HasSuffix(got, "[response truncated]") {
		t.Fatalf("expected visible truncation marker, got %q", got)
	}
	if !strings.Contains(got, "Top risks include") {
		t.Fatalf("partial content lost: %q", got)
	}
}

func TestCombineCompletePrimaryGainsSupplement(t *testing.T) {
	s := NewSynthesizer(2, 8, newTestLogger(t))
	primary := "Bitcoin is consolidating.\n\nIn summary, the medium-term trend remains constructive."
	secondary := "Spot volumes rose 12% today."

	got := s.Combine(primary, secondary)
	if !strings.Contains(got, "**Current market context:**") {
		t.Fatalf("expected labeled supplement, got %q", got)
	}
	if !strings.HasPrefix(got, primary) {
		t.Fatalf("primary structure not preserved")
	}
}

func TestCombineEmptySides(t *testing.T) {
	s := NewSynthesizer(2, 8, newTestLogger(t))
	if got := s.Combine("only primary", ""); got != "only primary" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := s.Combine("", "only secondary"); got != "only secondary" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestExtractAnalysis(t *testing.T) {
	s := NewSynthesizer(2, 8, newTestLogger(t))
	content := "Strong buy. RSI: 65 signals momentum.\n" +
		"Support at $58,000 holds while resistance near $64,000 caps upside.\n" +
		"Confidence: 70%\n" +
		"- Main risk is regulatory pressure\n" +
		"- Opportunity in institutional inflows"
	quote := &models.MarketDataPoint{Symbol: "BTC", Price: 62000}

	res := s.ExtractAnalysis(content, "BTC", quote)

	if res.Recommendation != models.StrongBuy {
		t.Fatalf("expected strong_buy, got %q", res.Recommendation)
	}
	if math.Abs(res.Confidence-0.7) > 1e-9 {
		t.Fatalf("expected confidence 0.7, got %v", res.Confidence)
	}
	if res.TechnicalIndicators["rsi"] != 65 {
		t.Fatalf("expected rsi 65, got %v", res.TechnicalIndicators["rsi"])
	}
	if res.TechnicalIndicators["support"] != 58000 {
		t.Fatalf("expected support 58000, got %v", res.TechnicalIndicators["support"])
	}
	if res.TechnicalIndicators["resistance"] != 64000 {
		t.Fatalf("expected resistance 64000, got %v", res.TechnicalIndicators["resistance"])
	}
	if len(res.Risks) != 1 || len(res.Opportunities) != 1 {
		t.Fatalf("expected one risk and one opportunity, got %v / %v", res.Risks, res.Opportunities)
	}
	if res.PriceTargets == nil {
		t.Fatalf("expected price targets")
	}
	if math.Abs(res.PriceTargets.Short-62000*1.05) > 1e-6 {
		t.Fatalf("unexpected short target %v", res.PriceTargets.Short)
	}
}

func TestExtractAnalysisDefaultsWithoutFacts(t *testing.T) {
	s := NewSynthesizer(2, 8, newTestLogger(t))
	res := s.ExtractAnalysis("The asset might move either way.", "ETH",
		&models.MarketDataPoint{Symbol: "ETH", Price: 2000})

	if res.Recommendation != models.Hold {
		t.Fatalf("expected hold default, got %q", res.Recommendation)
	}
	if res.Confidence != 0.5 {
		t.Fatalf("expected neutral confidence, got %v", res.Confidence)
	}
	if res.TechnicalIndicators["support"] != 2000*0.95 {
		t.Fatalf("expected defaulted support, got %v", res.TechnicalIndicators["support"])
	}
	if res.TechnicalIndicators["resistance"] != 2000*1.05 {
		t.Fatalf("expected defaulted resistance, got %v", res.TechnicalIndicators["resistance"])
	}
}
