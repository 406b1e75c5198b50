package models

import "time"

// ProviderID identifies a configured upstream provider.
type ProviderID string

const (
	ProviderOpenAI     ProviderID = "openai"
	ProviderPerplexity ProviderID = "perplexity"
	ProviderFinnhub    ProviderID = "finnhub"
	ProviderCoinGecko  ProviderID = "coingecko"
	ProviderNewsAPI    ProviderID = "newsapi"
	// ProviderFallback tags the terminal context-free answer so callers can
	// tell a degraded response from a grounded one.
	ProviderFallback ProviderID = "assistant-fallback"
)

// QueryIntent is the classified purpose of a user query.
type QueryIntent string

const (
	IntentPrice       QueryIntent = "price"
	IntentAnalysis    QueryIntent = "analysis"
	IntentNews        QueryIntent = "news"
	IntentComparison  QueryIntent = "comparison"
	IntentPrediction  QueryIntent = "prediction"
	IntentExplanation QueryIntent = "explanation"
)

// AssetType is the classified asset class of a query.
type AssetType string

const (
	AssetCrypto    AssetType = "crypto"
	AssetStock     AssetType = "stock"
	AssetForex     AssetType = "forex"
	AssetCommodity AssetType = "commodity"
)

// ClassifiedQuery is the classifier's output. Immutable once produced.
type ClassifiedQuery struct {
	Intent      QueryIntent       `json:"intent"`
	AssetType   AssetType         `json:"assetType,omitempty"`
	AssetSymbol string            `json:"assetSymbol,omitempty"`
	Confidence  float64           `json:"confidence"`
	Timeframe   string            `json:"timeframe,omitempty"`
	Parameters  map[string]string `json:"parameters,omitempty"`
}

// ProcessingStrategy tells the orchestrator which providers to try and how.
// Pure function of a ClassifiedQuery; recomputed per query.
type ProcessingStrategy struct {
	PrimaryProvider   ProviderID
	FallbackProviders []ProviderID
	RequiresData      bool
	MaxRetries        int
	Timeout           time.Duration
}

// MarketDataPoint is a single quote snapshot from a data provider.
type MarketDataPoint struct {
	Symbol        string     `json:"symbol"`
	Price         float64    `json:"price"`
	Change        float64    `json:"change"`
	ChangePercent float64    `json:"changePercent"`
	Volume        float64    `json:"volume"`
	High24h       float64    `json:"high24h"`
	Low24h        float64    `json:"low24h"`
	MarketCap     float64    `json:"marketCap,omitempty"`
	Source        ProviderID `json:"source"`
	Timestamp     time.Time  `json:"timestamp"`
}

// Sentiment labels a news item's tone.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Impact labels the expected market impact of a news item.
type Impact string

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

type NewsItem struct {
	Title          string    `json:"title"`
	Summary        string    `json:"summary"`
	Source         string    `json:"source"`
	URL            string    `json:"url"`
	PublishedAt    time.Time `json:"publishedAt"`
	Sentiment      Sentiment `json:"sentiment"`
	Impact         Impact    `json:"impact"`
	RelevanceScore float64   `json:"relevanceScore"`
}

// Recommendation is a trade recommendation bucket.
type Recommendation string

const (
	StrongBuy  Recommendation = "strong_buy"
	Buy        Recommendation = "buy"
	Hold       Recommendation = "hold"
	Sell       Recommendation = "sell"
	StrongSell Recommendation = "strong_sell"
)

// PriceTargets holds horizon-bucketed targets extracted from analysis.
type PriceTargets struct {
	Short  float64 `json:"short"`
	Medium float64 `json:"medium"`
	Long   float64 `json:"long"`
}

// AnalysisResult is the structured view of an asset analysis.
type AnalysisResult struct {
	Symbol              string             `json:"symbol"`
	Recommendation      Recommendation     `json:"recommendation"`
	Confidence          float64            `json:"confidence"`
	Reasoning           string             `json:"reasoning"`
	TechnicalIndicators map[string]float64 `json:"technicalIndicators,omitempty"`
	PriceTargets        *PriceTargets      `json:"priceTargets,omitempty"`
	Risks               []string           `json:"risks,omitempty"`
	Opportunities       []string           `json:"opportunities,omitempty"`
	Timeframe           string             `json:"timeframe,omitempty"`
	TradeSetup          *TradeSetup        `json:"tradeSetup,omitempty"`
}

// TradeSetup is a derived entry/exit plan sized against a portfolio.
type TradeSetup struct {
	Entry           float64 `json:"entry"`
	StopLoss        float64 `json:"stopLoss"`
	Target          float64 `json:"target"`
	RiskReward      float64 `json:"riskReward"`
	PositionSizePct float64 `json:"positionSizePct"`
}

// ResponseMetadata carries provenance and quality info for an AIResponse.
type ResponseMetadata struct {
	Sources        []ProviderID     `json:"sources"`
	Confidence     float64          `json:"confidence"`
	DataFreshness  string           `json:"dataFreshness"`
	ProcessingTime time.Duration    `json:"processingTimeMs"`
	Classification *ClassifiedQuery `json:"classification,omitempty"`
}

// AIResponse is the orchestrator's terminal output. Created once per query and
// never mutated after being handed to the caller; streaming emits successive
// partial copies.
type AIResponse struct {
	ID          string            `json:"id"`
	Content     string            `json:"content"`
	Type        string            `json:"type"`
	Metadata    ResponseMetadata  `json:"metadata"`
	MarketData  []MarketDataPoint `json:"marketData,omitempty"`
	News        []NewsItem        `json:"news,omitempty"`
	Analysis    *AnalysisResult   `json:"analysis,omitempty"`
	Suggestions []string          `json:"suggestions,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

// ChatMessage is one turn of caller-supplied history.
type ChatMessage struct {
	Role     string            `json:"role"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ChatContext is read-only conversation history supplied by the caller.
type ChatContext struct {
	MessageHistory []ChatMessage `json:"messageHistory"`
}

// QueryOptions tweak a single ProcessQuery invocation.
type QueryOptions struct {
	UseSecondaryReasoner bool `json:"useSecondaryReasoner"`
	Structured           bool `json:"structured"`
}
