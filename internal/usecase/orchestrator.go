package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Swigstan1810/Heights-sub002/internal/domain/models"
	"github.com/Swigstan1810/Heights-sub002/internal/domain/repository"
	"github.com/Swigstan1810/Heights-sub002/internal/service/gateway"
	applogger "github.com/Swigstan1810/Heights-sub002/pkg/logger"
)

const (
	maxMarketDataSources = 3
	maxNewsItems         = 10

	analysisSystemPrompt = "You are the Heights investment assistant. Ground every claim in the " +
		"market data provided. Be direct about uncertainty. Never present estimates as guarantees."
	continuationSystemPrompt = "Continue the following response exactly where it stops. " +
		"Do not repeat text that is already there."
	fallbackSystemPrompt = "You are the Heights investment assistant. No real-time market data " +
		"is available right now. Answer from general knowledge and say so explicitly."
)

// Orchestrator executes a ProcessingStrategy end to end: concurrent data
// prefetch, cascading reasoning calls, synthesis, and scoring. Two concurrent
// invocations share no mutable state.
type Orchestrator struct {
	classifier *Classifier
	planner    *Planner
	gw         *gateway.Gateway
	synth      *Synthesizer
	scorer     *ConfidenceScorer
	metrics    repository.Metrics
	logger     *applogger.Logger

	// optional telemetry sinks, nil-safe
	queryLog repository.QueryLog
	events   repository.EventPublisher
}

func NewOrchestrator(
	classifier *Classifier,
	planner *Planner,
	gw *gateway.Gateway,
	synth *Synthesizer,
	scorer *ConfidenceScorer,
	metrics repository.Metrics,
	logger *applogger.Logger,
) *Orchestrator {
	return &Orchestrator{
		classifier: classifier,
		planner:    planner,
		gw:         gw,
		synth:      synth,
		scorer:     scorer,
		metrics:    metrics,
		logger:     logger,
	}
}

// SetQueryLog injects the optional query telemetry sink.
func (o *Orchestrator) SetQueryLog(ql repository.QueryLog) { o.queryLog = ql }

// SetEventPublisher injects the optional event stream sink.
func (o *Orchestrator) SetEventPublisher(ep repository.EventPublisher) { o.events = ep }

// ProcessQuery runs the full pipeline and always returns a well-formed
// AIResponse; no error ever escapes to the caller.
func (o *Orchestrator) ProcessQuery(ctx context.Context, query string, cctx *models.ChatContext, opts *models.QueryOptions) (resp *models.AIResponse) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("process query panic", applogger.Any("panic", r))
			resp = o.errorResponse(fmt.Sprintf("unexpected failure: %v", r), start)
		}
	}()

	if strings.TrimSpace(query) == "" {
		return o.errorResponse("I didn't receive a question. Try asking about a price, an asset, or recent market news.", start)
	}
	if opts == nil {
		opts = &models.QueryOptions{}
	}

	classified := o.classifier.Classify(query, cctx)
	strategy := o.planner.Plan(classified)
	o.metrics.RecordQuery(string(classified.Intent))

	marketData, news, dataSources := o.prefetch(ctx, classified, strategy)

	resp = o.execute(ctx, query, cctx, opts, classified, strategy, marketData, news, dataSources)
	resp.Metadata.ProcessingTime = time.Since(start)
	resp.Metadata.Classification = &classified
	o.metrics.RecordLatency("process_query", time.Since(start).Seconds())

	o.publishTelemetry(query, resp)
	return resp
}

// StreamProcessQuery re-executes the pipeline, emitting successive partial
// copies of the response. The sequence is finite and not restartable; an
// abandoned consumer simply stops pulling while in-flight provider calls
// honor their own timeouts.
func (o *Orchestrator) StreamProcessQuery(ctx context.Context, query string, cctx *models.ChatContext) <-chan models.AIResponse {
	out := make(chan models.AIResponse, 4)
	go func() {
		defer close(out)
		start := time.Now()

		classified := o.classifier.Classify(query, cctx)
		strategy := o.planner.Plan(classified)

		head := models.AIResponse{
			ID:        uuid.New().String(),
			Content:   "",
			Type:      string(classified.Intent),
			Timestamp: time.Now(),
			Metadata: models.ResponseMetadata{
				Sources:        []models.ProviderID{},
				Confidence:     classified.Confidence,
				DataFreshness:  "none",
				Classification: &classified,
			},
		}
		if !emit(ctx, out, head) {
			return
		}

		marketData, news, dataSources := o.prefetch(ctx, classified, strategy)
		if len(marketData) > 0 || len(news) > 0 {
			withData := head
			withData.MarketData = marketData
			withData.News = news
			withData.Metadata.Sources = dataSources
			withData.Metadata.DataFreshness = freshness(marketData)
			if !emit(ctx, out, withData) {
				return
			}
		}

		final := o.execute(ctx, query, cctx, &models.QueryOptions{}, classified, strategy, marketData, news, dataSources)
		final.ID = head.ID
		final.Metadata.ProcessingTime = time.Since(start)
		final.Metadata.Classification = &classified
		emit(ctx, out, *final)
		o.publishTelemetry(query, final)
	}()
	return out
}

func emit(ctx context.Context, out chan<- models.AIResponse, r models.AIResponse) bool {
	select {
	case out <- r:
		return true
	case <-ctx.Done():
		return false
	}
}

// prefetch fans out to every data provider concurrently and keeps only the
// successes. Individual failures are swallowed here; partial data is fine.
func (o *Orchestrator) prefetch(ctx context.Context, q models.ClassifiedQuery, s models.ProcessingStrategy) ([]models.MarketDataPoint, []models.NewsItem, []models.ProviderID) {
	if !s.RequiresData || q.AssetSymbol == "" {
		return nil, nil, nil
	}

	var (
		mu         sync.Mutex
		marketData []models.MarketDataPoint
		news       []models.NewsItem
		sources    []models.ProviderID
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range o.gw.MarketDataProviders() {
		id := id
		g.Go(func() error {
			point, err := o.gw.FetchMarketData(gctx, id, q.AssetSymbol, s.Timeout)
			if err != nil {
				return nil // partial failure is not fatal
			}
			mu.Lock()
			defer mu.Unlock()
			// A warm quote cache can hand several providers the same point.
			if len(marketData) < maxMarketDataSources && !hasSource(marketData, point.Source) {
				marketData = append(marketData, point)
				sources = appendUnique(sources, point.Source)
			}
			return nil
		})
	}
	for _, id := range o.gw.NewsProviders() {
		id := id
		g.Go(func() error {
			items, err := o.gw.FetchNews(gctx, id, q.AssetSymbol, s.Timeout)
			if err != nil {
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			for _, it := range items {
				if len(news) >= maxNewsItems {
					break
				}
				news = append(news, it)
			}
			if len(items) > 0 {
				sources = appendUnique(sources, id)
			}
			return nil
		})
	}
	_ = g.Wait()

	// deterministic ordering for downstream formatting
	sort.Slice(marketData, func(i, j int) bool { return marketData[i].Source < marketData[j].Source })
	return marketData, news, sources
}

// execute runs the reasoning cascade over the already-fetched data and
// assembles the response. Fetched data is never re-requested on cascade.
func (o *Orchestrator) execute(
	ctx context.Context,
	query string,
	cctx *models.ChatContext,
	opts *models.QueryOptions,
	classified models.ClassifiedQuery,
	strategy models.ProcessingStrategy,
	marketData []models.MarketDataPoint,
	news []models.NewsItem,
	dataSources []models.ProviderID,
) *models.AIResponse {
	resp := &models.AIResponse{
		ID:         uuid.New().String(),
		Type:       string(classified.Intent),
		MarketData: marketData,
		News:       news,
		Timestamp:  time.Now(),
		Metadata: models.ResponseMetadata{
			Sources:       append([]models.ProviderID{}, dataSources...),
			DataFreshness: freshness(marketData),
		},
	}

	// A price question with a quote in hand needs no reasoning call.
	if classified.Intent == models.IntentPrice && len(marketData) > 0 {
		resp.Content = formatPriceAnswer(classified.AssetSymbol, marketData[0], news)
		resp.Metadata.Confidence = classified.Confidence
		resp.Suggestions = suggestions(classified)
		o.metrics.RecordCascadeDepth(0)
		return resp
	}

	content, answeredBy, depth := o.cascade(ctx, query, cctx, classified, strategy, marketData, news)
	o.metrics.RecordCascadeDepth(depth)

	if answeredBy == "" {
		o.logger.Warn("entering terminal fallback",
			applogger.String("intent", string(classified.Intent)),
			applogger.Error(models.ErrAllProvidersExhausted),
		)
		// Terminal context-free fallback. This path cannot fail: if even the
		// bare reasoning call errors, a static explanation is used.
		content = o.terminalFallback(ctx, query, strategy)
		resp.Content = content
		resp.Metadata.Sources = append(resp.Metadata.Sources, models.ProviderFallback)
		resp.Metadata.Confidence = 0.2
		resp.Suggestions = suggestions(classified)
		return resp
	}

	// Repair truncation with a continuation bound to the provider that answered.
	content = o.synth.RepairTruncation(ctx, content, func(cctx2 context.Context, seed string) (string, error) {
		msgs := []models.ChatMessage{{Role: "user", Content: seed}}
		return o.gw.Converse(cctx2, answeredBy, continuationSystemPrompt, msgs, strategy.Timeout)
	})

	// Optional second opinion from the real-time-search reasoner.
	if opts.UseSecondaryReasoner && answeredBy != models.ProviderPerplexity && o.gw.HasReasoner(models.ProviderPerplexity) {
		if supplement, err := o.gw.Converse(ctx, models.ProviderPerplexity,
			analysisSystemPrompt, buildMessages(query, cctx), strategy.Timeout); err == nil {
			content = o.synth.Combine(content, supplement)
			resp.Metadata.Sources = appendUnique(resp.Metadata.Sources, models.ProviderPerplexity)
		}
	}

	resp.Content = content
	resp.Metadata.Sources = appendUnique(resp.Metadata.Sources, answeredBy)
	resp.Suggestions = suggestions(classified)

	// Score asset-specific analysis; otherwise carry classifier confidence.
	if classified.AssetSymbol != "" &&
		(classified.Intent == models.IntentAnalysis || classified.Intent == models.IntentPrediction || opts.Structured) {
		var quote *models.MarketDataPoint
		if len(marketData) > 0 {
			quote = &marketData[0]
		}
		analysis := o.synth.ExtractAnalysis(content, classified.AssetSymbol, quote)
		resp.Analysis = analysis

		technical := analysis.Confidence
		var market *float64
		if quote != nil {
			m := marketSignal(quote.ChangePercent)
			market = &m
		}
		resp.Metadata.Confidence = o.scorer.Score(&technical, nil, market, NewsSentimentSignal(news))
		analysis.Confidence = resp.Metadata.Confidence

		if quote != nil {
			setup := o.scorer.DeriveTradeSetup(quote.Price, bandVolatility(quote), resp.Metadata.Confidence, 0)
			analysis.TradeSetup = &setup
		}
	} else {
		resp.Metadata.Confidence = classified.Confidence
	}

	return resp
}

// cascade tries the strategy's providers in order until one answers.
// Reasoning providers get a grounded conversation; data providers in the
// chain are satisfied by the prefetched data and skipped here.
func (o *Orchestrator) cascade(
	ctx context.Context,
	query string,
	cctx *models.ChatContext,
	classified models.ClassifiedQuery,
	strategy models.ProcessingStrategy,
	marketData []models.MarketDataPoint,
	news []models.NewsItem,
) (string, models.ProviderID, int) {
	chain := append([]models.ProviderID{strategy.PrimaryProvider}, strategy.FallbackProviders...)
	prompt := groundedPrompt(classified, marketData, news)
	msgs := buildMessages(query, cctx)

	depth := 0
	for _, id := range chain {
		if !o.gw.HasReasoner(id) {
			continue
		}
		depth++
		content, err := o.gw.Converse(ctx, id, prompt, msgs, strategy.Timeout)
		if err == nil && strings.TrimSpace(content) != "" {
			return content, id, depth
		}
		o.logger.Warn("cascading to next provider",
			applogger.String("failed", string(id)),
			applogger.Int("depth", depth),
		)
	}
	return "", "", depth
}

// terminalFallback produces the context-free answer of last resort.
func (o *Orchestrator) terminalFallback(ctx context.Context, query string, strategy models.ProcessingStrategy) string {
	for _, id := range []models.ProviderID{models.ProviderOpenAI, models.ProviderPerplexity} {
		if !o.gw.HasReasoner(id) {
			continue
		}
		msgs := []models.ChatMessage{{Role: "user", Content: query}}
		if content, err := o.gw.Converse(ctx, id, fallbackSystemPrompt, msgs, strategy.Timeout); err == nil && content != "" {
			return "Real-time market data was unavailable for this answer.\n\n" + content
		}
	}
	return "I couldn't reach any data or analysis service just now, and real-time market data was unavailable. " +
		"Please try again in a moment, or rephrase your question."
}

func (o *Orchestrator) errorResponse(msg string, start time.Time) *models.AIResponse {
	return &models.AIResponse{
		ID:        uuid.New().String(),
		Content:   msg + " You can retry, or ask a simpler question such as \"price of BTC\".",
		Type:      "error",
		Timestamp: time.Now(),
		Metadata: models.ResponseMetadata{
			Sources:        []models.ProviderID{},
			Confidence:     0,
			DataFreshness:  "none",
			ProcessingTime: time.Since(start),
		},
	}
}

func (o *Orchestrator) publishTelemetry(query string, resp *models.AIResponse) {
	if o.queryLog == nil && o.events == nil {
		return
	}
	// best-effort, off the request path
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if o.queryLog != nil {
			if err := o.queryLog.Record(ctx, query, resp); err != nil {
				o.logger.Warn("query log record failed", applogger.Error(err))
			}
		}
		if o.events != nil {
			if err := o.events.PublishQueryEvent(ctx, resp); err != nil {
				o.logger.Warn("query event publish failed", applogger.Error(err))
			}
		}
	}()
}

// --- helpers ---

func buildMessages(query string, cctx *models.ChatContext) []models.ChatMessage {
	var msgs []models.ChatMessage
	if cctx != nil {
		// keep the last few turns to bound prompt size
		history := cctx.MessageHistory
		if len(history) > 6 {
			history = history[len(history)-6:]
		}
		msgs = append(msgs, history...)
	}
	return append(msgs, models.ChatMessage{Role: "user", Content: query})
}

func groundedPrompt(q models.ClassifiedQuery, marketData []models.MarketDataPoint, news []models.NewsItem) string {
	var b strings.Builder
	b.WriteString(analysisSystemPrompt)
	if len(marketData) > 0 {
		b.WriteString("\n\nCurrent market data:\n")
		for _, d := range marketData {
			fmt.Fprintf(&b, "- %s: $%.2f (%+.2f%%), 24h range $%.2f-$%.2f [%s]\n",
				d.Symbol, d.Price, d.ChangePercent, d.Low24h, d.High24h, d.Source)
		}
	}
	if len(news) > 0 {
		b.WriteString("\nRecent headlines:\n")
		for i, n := range news {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "- %s (%s, %s)\n", n.Title, n.Source, n.Sentiment)
		}
	}
	if q.Timeframe != "" {
		fmt.Fprintf(&b, "\nThe user's timeframe of interest: %s\n", q.Timeframe)
	}
	return b.String()
}

func formatPriceAnswer(symbol string, d models.MarketDataPoint, news []models.NewsItem) string {
	direction := "up"
	if d.ChangePercent < 0 {
		direction = "down"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s is trading at $%.2f, %s %.2f%% over the last 24 hours.", symbol, d.Price, direction, abs(d.ChangePercent))
	if d.High24h > 0 || d.Low24h > 0 {
		fmt.Fprintf(&b, " The 24h range is $%.2f - $%.2f.", d.Low24h, d.High24h)
	}
	if d.Volume > 0 {
		fmt.Fprintf(&b, " 24h volume: %.0f.", d.Volume)
	}
	if len(news) > 0 {
		fmt.Fprintf(&b, "\n\nLatest headline: %s (%s)", news[0].Title, news[0].Source)
	}
	fmt.Fprintf(&b, "\n\nData from %s as of %s.", d.Source, d.Timestamp.UTC().Format(time.RFC3339))
	return b.String()
}

func suggestions(q models.ClassifiedQuery) []string {
	if q.AssetSymbol == "" {
		return []string{
			"What's the price of Bitcoin?",
			"Show me the latest market news",
			"Explain what a stop-loss order is",
		}
	}
	switch q.Intent {
	case models.IntentPrice:
		return []string{
			fmt.Sprintf("Analyze %s for me", q.AssetSymbol),
			fmt.Sprintf("Any recent news on %s?", q.AssetSymbol),
		}
	case models.IntentNews:
		return []string{
			fmt.Sprintf("What's the price of %s?", q.AssetSymbol),
			fmt.Sprintf("What's the outlook for %s?", q.AssetSymbol),
		}
	default:
		return []string{
			fmt.Sprintf("What's the price of %s?", q.AssetSymbol),
			fmt.Sprintf("Any recent news on %s?", q.AssetSymbol),
			fmt.Sprintf("Predict where %s is heading", q.AssetSymbol),
		}
	}
}

func freshness(marketData []models.MarketDataPoint) string {
	if len(marketData) == 0 {
		return "none"
	}
	for _, d := range marketData {
		if time.Since(d.Timestamp) <= 10*time.Second {
			return "realtime"
		}
	}
	return "delayed"
}

// marketSignal maps a 24h change percent into a [0,1] sub-score centered on 0.5.
func marketSignal(changePercent float64) float64 {
	v := 0.5 + changePercent/20
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func appendUnique(ids []models.ProviderID, id models.ProviderID) []models.ProviderID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

// bandVolatility estimates fractional daily volatility as half the 24h
// high/low band relative to price.
func bandVolatility(q *models.MarketDataPoint) float64 {
	if q.Price <= 0 || q.High24h <= q.Low24h {
		return 0.02
	}
	return (q.High24h - q.Low24h) / q.Price / 2
}

func hasSource(points []models.MarketDataPoint, id models.ProviderID) bool {
	for _, p := range points {
		if p.Source == id {
			return true
		}
	}
	return false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
