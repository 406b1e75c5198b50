package providers

import (
	"context"
	"strings"
	"time"

	"github.com/Swigstan1810/Heights-sub002/internal/domain/models"
	domsvc "github.com/Swigstan1810/Heights-sub002/internal/domain/service"
	xhttp "github.com/Swigstan1810/Heights-sub002/pkg/http"
)

// coinIDs maps ticker symbols to CoinGecko coin ids.
var coinIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"XRP":   "ripple",
	"ADA":   "cardano",
	"DOGE":  "dogecoin",
	"DOT":   "polkadot",
	"AVAX":  "avalanche-2",
	"LINK":  "chainlink",
	"MATIC": "matic-network",
}

// CoinGeckoProvider serves crypto quotes over the CoinGecko REST API.
type CoinGeckoProvider struct {
	client  *xhttp.Client
	baseURL string
}

func NewCoinGecko(baseURL string, timeout time.Duration) *CoinGeckoProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CoinGeckoProvider{
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		baseURL: baseURL,
	}
}

func (p *CoinGeckoProvider) ID() models.ProviderID { return models.ProviderCoinGecko }

type cgPrice struct {
	USD          float64 `json:"usd"`
	USDMarketCap float64 `json:"usd_market_cap"`
	USD24hVol    float64 `json:"usd_24h_vol"`
	USD24hChange float64 `json:"usd_24h_change"`
}

func (p *CoinGeckoProvider) FetchMarketData(ctx context.Context, symbol string) (models.MarketDataPoint, error) {
	id, ok := coinIDs[strings.ToUpper(symbol)]
	if !ok {
		return models.MarketDataPoint{}, emptyResult(p.ID())
	}

	var out map[string]cgPrice
	err := p.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    p.baseURL + "/simple/price",
		QueryParams: map[string][]string{
			"ids":                 {id},
			"vs_currencies":       {"usd"},
			"include_market_cap":  {"true"},
			"include_24hr_vol":    {"true"},
			"include_24hr_change": {"true"},
		},
	}, &out)
	if err != nil {
		return models.MarketDataPoint{}, classify(p.ID(), err)
	}
	pr, ok := out[id]
	if !ok || pr.USD == 0 {
		return models.MarketDataPoint{}, emptyResult(p.ID())
	}

	// simple/price carries no OHLC; approximate the 24h band from the change.
	change := pr.USD * pr.USD24hChange / 100
	return models.MarketDataPoint{
		Symbol:        strings.ToUpper(symbol),
		Price:         pr.USD,
		Change:        change,
		ChangePercent: pr.USD24hChange,
		Volume:        pr.USD24hVol,
		High24h:       pr.USD + change/2,
		Low24h:        pr.USD - change/2,
		MarketCap:     pr.USDMarketCap,
		Source:        p.ID(),
		Timestamp:     time.Now(),
	}, nil
}

var _ domsvc.MarketDataProvider = (*CoinGeckoProvider)(nil)
