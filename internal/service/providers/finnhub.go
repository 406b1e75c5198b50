package providers

import (
	"context"
	"time"

	"github.com/Swigstan1810/Heights-sub002/internal/domain/models"
	domsvc "github.com/Swigstan1810/Heights-sub002/internal/domain/service"
	xhttp "github.com/Swigstan1810/Heights-sub002/pkg/http"
)

// FinnhubProvider serves stock/forex quotes over the Finnhub REST API.
type FinnhubProvider struct {
	client  *xhttp.Client
	baseURL string
	apiKey  string
}

func NewFinnhub(apiKey, baseURL string, timeout time.Duration) *FinnhubProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &FinnhubProvider{
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

func (p *FinnhubProvider) ID() models.ProviderID { return models.ProviderFinnhub }

type fhQuote struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	PrevClose     float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

func (p *FinnhubProvider) FetchMarketData(ctx context.Context, symbol string) (models.MarketDataPoint, error) {
	var q fhQuote
	err := p.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    p.baseURL + "/quote",
		QueryParams: map[string][]string{
			"symbol": {symbol},
			"token":  {p.apiKey},
		},
	}, &q)
	if err != nil {
		return models.MarketDataPoint{}, classify(p.ID(), err)
	}
	// Finnhub returns all zeros for unknown symbols rather than an error.
	if q.Current == 0 && q.Timestamp == 0 {
		return models.MarketDataPoint{}, emptyResult(p.ID())
	}
	return models.MarketDataPoint{
		Symbol:        symbol,
		Price:         q.Current,
		Change:        q.Change,
		ChangePercent: q.ChangePercent,
		High24h:       q.High,
		Low24h:        q.Low,
		Source:        p.ID(),
		Timestamp:     time.Unix(q.Timestamp, 0),
	}, nil
}

var _ domsvc.MarketDataProvider = (*FinnhubProvider)(nil)
