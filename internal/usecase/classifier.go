package usecase

import (
	"regexp"
	"strings"

	"github.com/Swigstan1810/Heights-sub002/internal/domain/models"
)

// assetEntry describes one known asset in the lexicon.
type assetEntry struct {
	Symbol  string
	Type    models.AssetType
	Aliases []string
}

// assetLexicon is the static symbol/alias table the classifier matches against.
var assetLexicon = []assetEntry{
	{Symbol: "BTC", Type: models.AssetCrypto, Aliases: []string{"bitcoin", "btc"}},
	{Symbol: "ETH", Type: models.AssetCrypto, Aliases: []string{"ethereum", "ether", "eth"}},
	{Symbol: "SOL", Type: models.AssetCrypto, Aliases: []string{"solana", "sol"}},
	{Symbol: "XRP", Type: models.AssetCrypto, Aliases: []string{"ripple", "xrp"}},
	{Symbol: "ADA", Type: models.AssetCrypto, Aliases: []string{"cardano", "ada"}},
	{Symbol: "DOGE", Type: models.AssetCrypto, Aliases: []string{"dogecoin", "doge"}},
	{Symbol: "AAPL", Type: models.AssetStock, Aliases: []string{"apple", "aapl"}},
	{Symbol: "MSFT", Type: models.AssetStock, Aliases: []string{"microsoft", "msft"}},
	{Symbol: "GOOGL", Type: models.AssetStock, Aliases: []string{"google", "alphabet", "googl"}},
	{Symbol: "AMZN", Type: models.AssetStock, Aliases: []string{"amazon", "amzn"}},
	{Symbol: "TSLA", Type: models.AssetStock, Aliases: []string{"tesla", "tsla"}},
	{Symbol: "NVDA", Type: models.AssetStock, Aliases: []string{"nvidia", "nvda"}},
	{Symbol: "META", Type: models.AssetStock, Aliases: []string{"meta", "facebook"}},
	{Symbol: "EURUSD", Type: models.AssetForex, Aliases: []string{"euro dollar", "eur/usd", "eurusd"}},
	{Symbol: "GBPUSD", Type: models.AssetForex, Aliases: []string{"pound dollar", "gbp/usd", "gbpusd", "cable"}},
	{Symbol: "USDJPY", Type: models.AssetForex, Aliases: []string{"dollar yen", "usd/jpy", "usdjpy"}},
	{Symbol: "XAU", Type: models.AssetCommodity, Aliases: []string{"gold", "xau"}},
	{Symbol: "XAG", Type: models.AssetCommodity, Aliases: []string{"silver", "xag"}},
	{Symbol: "WTI", Type: models.AssetCommodity, Aliases: []string{"oil", "crude", "wti"}},
}

// intent keyword sets, checked in priority order.
var intentKeywords = []struct {
	Intent models.QueryIntent
	Words  []string
}{
	{models.IntentComparison, []string{"compare", " vs ", "versus", "difference between", "better than"}},
	{models.IntentPrediction, []string{"predict", "forecast", "will it", "outlook", "price target", "next week", "next month", "going to"}},
	{models.IntentNews, []string{"news", "headline", "announcement", "what happened", "latest on"}},
	{models.IntentAnalysis, []string{"analy", "should i buy", "should i sell", "technical", "rsi", "support", "resistance", "recommend", "doing"}},
	{models.IntentPrice, []string{"price", "worth", "cost", "trading at", "quote", "how much"}},
	{models.IntentExplanation, []string{"what is", "explain", "how does", "mean", "definition"}},
}

var timeframePatterns = []struct {
	Pattern   *regexp.Regexp
	Timeframe string
}{
	{regexp.MustCompile(`\btoday\b|\b24 ?h(ours?)?\b|\bintraday\b`), "1d"},
	{regexp.MustCompile(`\bthis week\b|\bweekly\b|\bnext week\b`), "1w"},
	{regexp.MustCompile(`\bthis month\b|\bmonthly\b|\bnext month\b`), "1mo"},
	{regexp.MustCompile(`\bshort[- ]term\b`), "short"},
	{regexp.MustCompile(`\blong[- ]term\b|\bthis year\b|\bnext year\b`), "long"},
}

const (
	confidenceExactSymbol = 0.9
	confidenceAliasMatch  = 0.75
	confidenceBaseline    = 0.3
)

// Classifier turns a raw query plus optional history into a ClassifiedQuery.
// Pure lexicon matching: no side effects, deterministic for identical input.
type Classifier struct{}

func NewClassifier() *Classifier { return &Classifier{} }

func (c *Classifier) Classify(query string, cctx *models.ChatContext) models.ClassifiedQuery {
	lower := strings.ToLower(query)

	out := models.ClassifiedQuery{
		Intent:     c.intent(lower),
		Confidence: confidenceBaseline,
		Parameters: map[string]string{},
	}

	symbol, assetType, conf := c.matchAsset(query, lower)
	if symbol == "" && cctx != nil {
		// fall back to the most recent symbol mentioned in history
		for i := len(cctx.MessageHistory) - 1; i >= 0 && symbol == ""; i-- {
			m := cctx.MessageHistory[i]
			symbol, assetType, _ = c.matchAsset(m.Content, strings.ToLower(m.Content))
		}
		if symbol != "" {
			conf = confidenceAliasMatch
			out.Parameters["symbol_from_context"] = "true"
		}
	}
	if symbol != "" {
		out.AssetSymbol = symbol
		out.AssetType = assetType
		out.Confidence = conf
	}

	for _, tp := range timeframePatterns {
		if tp.Pattern.MatchString(lower) {
			out.Timeframe = tp.Timeframe
			break
		}
	}

	return out
}

func (c *Classifier) intent(lower string) models.QueryIntent {
	for _, set := range intentKeywords {
		for _, w := range set.Words {
			if strings.Contains(lower, w) {
				return set.Intent
			}
		}
	}
	return models.IntentExplanation
}

// matchAsset scans the lexicon. An exact ticker token scores higher than a
// name alias.
func (c *Classifier) matchAsset(raw, lower string) (string, models.AssetType, float64) {
	tokens := tokenize(raw)
	for _, e := range assetLexicon {
		for _, t := range tokens {
			if t == e.Symbol {
				return e.Symbol, e.Type, confidenceExactSymbol
			}
		}
	}
	for _, e := range assetLexicon {
		for _, alias := range e.Aliases {
			if containsWord(lower, alias) {
				return e.Symbol, e.Type, confidenceAliasMatch
			}
		}
	}
	return "", "", 0
}

var wordSplit = regexp.MustCompile(`[^A-Za-z0-9/]+`)

func tokenize(s string) []string {
	return wordSplit.Split(s, -1)
}

func containsWord(haystack, needle string) bool {
	idx := strings.Index(haystack, needle)
	if idx < 0 {
		return false
	}
	// reject substring hits inside longer words ("solar" must not match "sol")
	if idx > 0 && isWordChar(haystack[idx-1]) {
		return false
	}
	end := idx + len(needle)
	if end < len(haystack) && isWordChar(haystack[end]) {
		return false
	}
	return true
}

func isWordChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
