package usecase

import (
	"time"

	"github.com/Swigstan1810/Heights-sub002/internal/domain/models"
)

// Planner maps a ClassifiedQuery to a ProcessingStrategy using a static
// routing table keyed by (intent, assetType, hasSymbol). Stateless; the
// strategy is recomputed per query.
type Planner struct {
	queryTimeout time.Duration
	maxRetries   int
}

func NewPlanner(queryTimeout time.Duration, maxRetries int) *Planner {
	if queryTimeout <= 0 {
		queryTimeout = 30 * time.Second
	}
	if maxRetries <= 0 {
		maxRetries = 2
	}
	return &Planner{queryTimeout: queryTimeout, maxRetries: maxRetries}
}

func (p *Planner) Plan(q models.ClassifiedQuery) models.ProcessingStrategy {
	s := models.ProcessingStrategy{
		RequiresData: q.AssetSymbol != "",
		MaxRetries:   p.maxRetries,
		Timeout:      p.queryTimeout,
	}

	switch q.Intent {
	case models.IntentPrice:
		// data-first: the quote answers the question; a reasoner only phrases it
		if q.AssetType == models.AssetCrypto {
			s.PrimaryProvider = models.ProviderCoinGecko
			s.FallbackProviders = []models.ProviderID{models.ProviderFinnhub, models.ProviderOpenAI}
		} else {
			s.PrimaryProvider = models.ProviderFinnhub
			s.FallbackProviders = []models.ProviderID{models.ProviderCoinGecko, models.ProviderOpenAI}
		}
	case models.IntentNews:
		s.PrimaryProvider = models.ProviderNewsAPI
		s.FallbackProviders = []models.ProviderID{models.ProviderPerplexity, models.ProviderOpenAI}
	case models.IntentPrediction, models.IntentAnalysis, models.IntentComparison:
		s.PrimaryProvider = models.ProviderOpenAI
		s.FallbackProviders = []models.ProviderID{models.ProviderPerplexity}
	default: // explanation
		s.PrimaryProvider = models.ProviderOpenAI
		s.FallbackProviders = []models.ProviderID{models.ProviderPerplexity}
	}

	s.FallbackProviders = dedupeSuccessive(s.PrimaryProvider, s.FallbackProviders)
	return s
}

// dedupeSuccessive drops fallbacks that would repeat the provider tried
// immediately before them.
func dedupeSuccessive(primary models.ProviderID, fallbacks []models.ProviderID) []models.ProviderID {
	out := make([]models.ProviderID, 0, len(fallbacks))
	prev := primary
	for _, f := range fallbacks {
		if f == prev {
			continue
		}
		out = append(out, f)
		prev = f
	}
	return out
}
