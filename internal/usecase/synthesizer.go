package usecase

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/Swigstan1810/Heights-sub002/internal/domain/models"
	applogger "github.com/Swigstan1810/Heights-sub002/pkg/logger"
)

// defaultTruncationMarkers are suffixes that suggest a model stopped before
// finishing its thought.
var defaultTruncationMarkers = []string{
	"...",
	"…",
	":",
	"such as:",
	"including:",
	"for example:",
	"e.g.",
	"following:",
}

// concluding section headers used by the completeness heuristic.
var concludingMarkers = []string{
	"conclusion",
	"summary",
	"in summary",
	"bottom line",
	"overall",
}

const continuationSeedLen = 100

// ContinuationFunc requests more text from a reasoning provider, seeded with
// the tail of the partial content.
type ContinuationFunc func(ctx context.Context, seed string) (string, error)

// Synthesizer repairs truncated model output, combines multi-provider
// responses, and extracts structured facts from prose.
type Synthesizer struct {
	markers           []string
	maxContinuations  int
	completeLineCount int
	logger            *applogger.Logger
}

func NewSynthesizer(maxContinuations, completeLineCount int, l *applogger.Logger) *Synthesizer {
	if maxContinuations <= 0 {
		maxContinuations = 2
	}
	if completeLineCount <= 0 {
		completeLineCount = 8
	}
	return &Synthesizer{
		markers:           defaultTruncationMarkers,
		maxContinuations:  maxContinuations,
		completeLineCount: completeLineCount,
		logger:            l,
	}
}

// IsLikelyTruncated reports whether text ends on a dangling marker.
// Pure predicate; the continuation side effects live in RepairTruncation.
func (s *Synthesizer) IsLikelyTruncated(text string) bool {
	trimmed := strings.TrimRight(text, " \t\n")
	if trimmed == "" {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, m := range s.markers {
		if strings.HasSuffix(lower, m) {
			return true
		}
	}
	return false
}

// IsComplete judges whether a response can stand alone: no truncation marker
// and either a concluding section or enough substance by line count.
func (s *Synthesizer) IsComplete(text string) bool {
	if s.IsLikelyTruncated(text) {
		return false
	}
	lower := strings.ToLower(text)
	for _, m := range concludingMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	lines := 0
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			lines++
		}
	}
	return lines >= s.completeLineCount
}

// RepairTruncation requests and splices continuations until the content no
// longer looks truncated, bounded by maxContinuations. A failed continuation
// is recovered locally: the partial content is kept with a visible marker.
func (s *Synthesizer) RepairTruncation(ctx context.Context, content string, cont ContinuationFunc) string {
	for i := 0; i < s.maxContinuations; i++ {
		if !s.IsLikelyTruncated(content) {
			return content
		}
		seed := content
		if len(seed) > continuationSeedLen {
			seed = seed[len(seed)-continuationSeedLen:]
		}
		more, err := cont(ctx, seed)
		if err != nil {
			s.logger.Warn("continuation failed", applogger.Error(err))
			return strings.TrimRight(content, " .…") + " [response truncated]"
		}
		content = mergeContinuation(content, more)
	}
	return content
}

// mergeContinuation splices continuation onto original by looking for a
// 5-word phrase from the original's tail that the continuation repeats.
// Plain concatenation is the fallback when no overlap is found.
func mergeContinuation(original, continuation string) string {
	base := strings.TrimRight(original, " \n")
	base = strings.TrimSuffix(base, "...")
	base = strings.TrimSuffix(base, "…")
	continuation = strings.TrimLeft(continuation, " \n")

	words := strings.Fields(base)
	const overlap = 5
	tailStart := len(words) - 10
	if tailStart < 0 {
		tailStart = 0
	}
	for i := tailStart; i+overlap <= len(words); i++ {
		phrase := strings.Join(words[i:i+overlap], " ")
		if idx := strings.Index(continuation, phrase); idx >= 0 {
			rest := continuation[idx+len(phrase):]
			// keep the original through the phrase, drop the repeat
			prefix := strings.Join(words[:i+overlap], " ")
			return prefix + rest
		}
	}
	if base == "" {
		return continuation
	}
	return base + " " + continuation
}

// Combine merges output from the general reasoner and the real-time-search
// reasoner. A complete primary keeps its structure and gains the secondary as
// a labeled supplement; an incomplete primary is completed by the secondary.
func (s *Synthesizer) Combine(primary, secondary string) string {
	if secondary == "" {
		return primary
	}
	if primary == "" {
		return secondary
	}
	if s.IsComplete(primary) {
		return primary + "\n\n**Current market context:**\n" + secondary
	}
	return mergeContinuation(primary, secondary)
}

// --- fact extraction ---

var (
	priceRe      = regexp.MustCompile(`\$([0-9][0-9,]*(?:\.[0-9]+)?)`)
	percentRe    = regexp.MustCompile(`([0-9]{1,3}(?:\.[0-9]+)?)\s*%`)
	confidenceRe = regexp.MustCompile(`(?i)confidence[^0-9]{0,20}([0-9]{1,3})\s*%`)
	rsiRe        = regexp.MustCompile(`(?i)\bRSI\b[:\s]+([0-9]+(?:\.[0-9]+)?)`)
	supportRe    = regexp.MustCompile(`(?i)support[^$]{0,20}\$([0-9][0-9,]*(?:\.[0-9]+)?)`)
	resistanceRe = regexp.MustCompile(`(?i)resistance[^$]{0,20}\$([0-9][0-9,]*(?:\.[0-9]+)?)`)
	targetRe     = regexp.MustCompile(`(?i)target[^$]{0,20}\$([0-9][0-9,]*(?:\.[0-9]+)?)`)
)

// defaultBand is the fraction used to fabricate high/low style defaults when
// a pattern fails to match. Lossy but total: consumers never see a zero where
// a number is expected.
const defaultBand = 0.05

// ExtractAnalysis pulls structured facts out of free-form analysis prose.
// Misses are not errors; every field is populated with a stated default.
func (s *Synthesizer) ExtractAnalysis(content, symbol string, quote *models.MarketDataPoint) *models.AnalysisResult {
	refPrice := 0.0
	if quote != nil {
		refPrice = quote.Price
	}
	if m := priceRe.FindStringSubmatch(content); refPrice == 0 && m != nil {
		refPrice = parseAmount(m[1])
	}

	res := &models.AnalysisResult{
		Symbol:         symbol,
		Recommendation: extractRecommendation(content),
		Confidence:     extractConfidence(content),
		Reasoning:      content,
		Risks:          extractBullets(content, "risk"),
		Opportunities:  extractBullets(content, "opportunit"),
	}

	indicators := map[string]float64{}
	if m := rsiRe.FindStringSubmatch(content); m != nil {
		indicators["rsi"] = parseAmount(m[1])
	}
	if m := supportRe.FindStringSubmatch(content); m != nil {
		indicators["support"] = parseAmount(m[1])
	} else if refPrice > 0 {
		indicators["support"] = refPrice * (1 - defaultBand)
	}
	if m := resistanceRe.FindStringSubmatch(content); m != nil {
		indicators["resistance"] = parseAmount(m[1])
	} else if refPrice > 0 {
		indicators["resistance"] = refPrice * (1 + defaultBand)
	}
	if len(indicators) > 0 {
		res.TechnicalIndicators = indicators
	}

	if refPrice > 0 {
		t := &models.PriceTargets{
			Short:  refPrice * (1 + defaultBand),
			Medium: refPrice * (1 + 2*defaultBand),
			Long:   refPrice * (1 + 4*defaultBand),
		}
		if m := targetRe.FindStringSubmatch(content); m != nil {
			t.Medium = parseAmount(m[1])
		}
		res.PriceTargets = t
	}

	return res
}

func extractRecommendation(content string) models.Recommendation {
	lower := strings.ToLower(content)
	switch {
	case strings.Contains(lower, "strong buy"):
		return models.StrongBuy
	case strings.Contains(lower, "strong sell"):
		return models.StrongSell
	case strings.Contains(lower, "sell"):
		return models.Sell
	case strings.Contains(lower, "buy"):
		return models.Buy
	default:
		return models.Hold
	}
}

func extractConfidence(content string) float64 {
	if m := confidenceRe.FindStringSubmatch(content); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v >= 0 && v <= 100 {
			return v / 100
		}
	}
	return neutralSignal
}

func extractBullets(content, keyword string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.Contains(strings.ToLower(trimmed), keyword) &&
			(strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "*") || strings.HasPrefix(trimmed, "•")) {
			out = append(out, strings.TrimLeft(trimmed, "-*• "))
		}
	}
	return out
}

func parseAmount(s string) float64 {
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
