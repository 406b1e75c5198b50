package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Swigstan1810/Heights-sub002/internal/domain/models"
)

func TestFetchNewsParsesArticles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "BTC" {
			t.Errorf("expected symbol query param, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"articles": [
				{
					"title": "BTC rallies to new record",
					"description": "Strong gains across the board",
					"url": "https://example.com/a",
					"publishedAt": "2026-08-30T12:00:00Z",
					"source": {"name": "Example Wire"}
				},
				{
					"title": "Exchange faces lawsuit",
					"description": "Regulators step in",
					"url": "https://example.com/b",
					"publishedAt": "not-a-timestamp",
					"source": {"name": "Example Wire"}
				}
			]
		}`))
	}))
	defer srv.Close()

	p := NewNewsAPI("key", srv.URL, time.Second)
	items, err := p.FetchNews(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	first := items[0]
	want := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	if !first.PublishedAt.Equal(want) {
		t.Fatalf("expected parsed publish time %v, got %v", want, first.PublishedAt)
	}
	if first.Sentiment != models.SentimentPositive {
		t.Fatalf("expected positive sentiment, got %q", first.Sentiment)
	}
	if first.RelevanceScore != 0.9 {
		t.Fatalf("expected title-match relevance, got %v", first.RelevanceScore)
	}

	second := items[1]
	if !second.PublishedAt.IsZero() {
		t.Fatalf("unparseable timestamp must yield zero time, got %v", second.PublishedAt)
	}
	if second.Sentiment != models.SentimentNegative {
		t.Fatalf("expected negative sentiment, got %q", second.Sentiment)
	}
}

func TestFetchNewsEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "ok", "articles": []}`))
	}))
	defer srv.Close()

	p := NewNewsAPI("key", srv.URL, time.Second)
	if _, err := p.FetchNews(context.Background(), "BTC"); err == nil {
		t.Fatalf("expected empty-result error")
	}
}
