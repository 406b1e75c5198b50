package usecase

import (
	"math"

	"github.com/Swigstan1810/Heights-sub002/internal/domain/models"
)

// neutralSignal substitutes for any missing sub-score so the weighted sum is
// always well-defined.
const neutralSignal = 0.5

// ConfidenceScorer combines normalized technical/fundamental/market/news
// signals into one bounded confidence value. Deterministic, no I/O.
type ConfidenceScorer struct {
	technicalW   float64
	fundamentalW float64
	marketW      float64
	newsW        float64
}

// NewConfidenceScorer builds a scorer with the given weights. Weights are
// assumed to sum to 1; config validation enforces that.
func NewConfidenceScorer(technical, fundamental, market, news float64) *ConfidenceScorer {
	return &ConfidenceScorer{
		technicalW:   technical,
		fundamentalW: fundamental,
		marketW:      market,
		newsW:        news,
	}
}

// Score returns the weighted confidence in [0,1]. Nil inputs count as
// neutral (0.5) rather than being dropped from the formula.
func (s *ConfidenceScorer) Score(technical, fundamental, market, news *float64) float64 {
	v := s.technicalW*clamp01(orNeutral(technical)) +
		s.fundamentalW*clamp01(orNeutral(fundamental)) +
		s.marketW*clamp01(orNeutral(market)) +
		s.newsW*clamp01(orNeutral(news))
	return clamp01(v)
}

// NewsSentimentSignal folds a news list into a [0,1] sentiment sub-score,
// or nil when there is no news to judge.
func NewsSentimentSignal(items []models.NewsItem) *float64 {
	if len(items) == 0 {
		return nil
	}
	var sum float64
	for _, it := range items {
		switch it.Sentiment {
		case models.SentimentPositive:
			sum += 1
		case models.SentimentNegative:
			sum += 0
		default:
			sum += 0.5
		}
	}
	v := sum / float64(len(items))
	return &v
}

// DeriveTradeSetup produces an entry/stop/target plan from price, volatility
// (fractional, e.g. 0.02 for 2%), the combined confidence, and portfolio size.
func (s *ConfidenceScorer) DeriveTradeSetup(price, volatility, confidence, portfolioSize float64) models.TradeSetup {
	if price <= 0 {
		return models.TradeSetup{}
	}
	if volatility < 0.005 {
		volatility = 0.005
	}

	stopDistance := price * volatility * 1.5
	setup := models.TradeSetup{
		Entry:      price,
		StopLoss:   price - stopDistance,
		Target:     price + stopDistance*2,
		RiskReward: 2.0,
	}

	if portfolioSize > 0 {
		// risk 1% of the portfolio per trade, scaled by confidence
		riskAmount := portfolioSize * 0.01 * clamp01(confidence) * 2
		units := riskAmount / stopDistance
		pct := units * price / portfolioSize * 100
		setup.PositionSizePct = math.Min(pct, 20)
	}
	return setup
}

func orNeutral(v *float64) float64 {
	if v == nil {
		return neutralSignal
	}
	return *v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
