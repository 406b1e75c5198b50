package providers

import (
	"context"
	"strings"
	"time"

	"github.com/Swigstan1810/Heights-sub002/internal/domain/models"
	domsvc "github.com/Swigstan1810/Heights-sub002/internal/domain/service"
	xhttp "github.com/Swigstan1810/Heights-sub002/pkg/http"
	"github.com/Swigstan1810/Heights-sub002/pkg/util"
)

// NewsAPIProvider fetches recent headlines for a symbol.
type NewsAPIProvider struct {
	client  *xhttp.Client
	baseURL string
	apiKey  string
}

func NewNewsAPI(apiKey, baseURL string, timeout time.Duration) *NewsAPIProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NewsAPIProvider{
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

func (p *NewsAPIProvider) ID() models.ProviderID { return models.ProviderNewsAPI }

type naArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}

type naResponse struct {
	Status   string      `json:"status"`
	Articles []naArticle `json:"articles"`
}

func (p *NewsAPIProvider) FetchNews(ctx context.Context, symbol string) ([]models.NewsItem, error) {
	var out naResponse
	err := p.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    p.baseURL + "/everything",
		QueryParams: map[string][]string{
			"q":        {symbol},
			"sortBy":   {"publishedAt"},
			"pageSize": {"10"},
			"language": {"en"},
			"apiKey":   {p.apiKey},
		},
	}, &out)
	if err != nil {
		return nil, classify(p.ID(), err)
	}
	if len(out.Articles) == 0 {
		return nil, emptyResult(p.ID())
	}

	items := make([]models.NewsItem, 0, len(out.Articles))
	for _, a := range out.Articles {
		published := util.ParseTimeDefault(a.PublishedAt, time.Time{})
		text := a.Title + " " + a.Description
		items = append(items, models.NewsItem{
			Title:          a.Title,
			Summary:        a.Description,
			Source:         a.Source.Name,
			URL:            a.URL,
			PublishedAt:    published,
			Sentiment:      tagSentiment(text),
			Impact:         tagImpact(text),
			RelevanceScore: relevance(a.Title, symbol),
		})
	}
	return items, nil
}

var positiveWords = []string{"surge", "rally", "gain", "soar", "record", "beat", "bullish", "upgrade", "growth"}
var negativeWords = []string{"crash", "plunge", "drop", "fall", "loss", "miss", "bearish", "downgrade", "lawsuit"}
var highImpactWords = []string{"fed", "sec", "regulation", "earnings", "halving", "etf", "bankruptcy", "hack"}

func tagSentiment(text string) models.Sentiment {
	t := strings.ToLower(text)
	pos, neg := 0, 0
	for _, w := range positiveWords {
		if strings.Contains(t, w) {
			pos++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(t, w) {
			neg++
		}
	}
	switch {
	case pos > neg:
		return models.SentimentPositive
	case neg > pos:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

func tagImpact(text string) models.Impact {
	t := strings.ToLower(text)
	for _, w := range highImpactWords {
		if strings.Contains(t, w) {
			return models.ImpactHigh
		}
	}
	if tagSentiment(text) != models.SentimentNeutral {
		return models.ImpactMedium
	}
	return models.ImpactLow
}

func relevance(title, symbol string) float64 {
	if strings.Contains(strings.ToUpper(title), strings.ToUpper(symbol)) {
		return 0.9
	}
	return 0.5
}

var _ domsvc.NewsProvider = (*NewsAPIProvider)(nil)
