package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Swigstan1810/Heights-sub002/internal/domain/models"
	"github.com/Swigstan1810/Heights-sub002/internal/service/gateway"
	"github.com/Swigstan1810/Heights-sub002/internal/usecase"
	xhttp "github.com/Swigstan1810/Heights-sub002/pkg/http"
	applogger "github.com/Swigstan1810/Heights-sub002/pkg/logger"
)

type nopMetrics struct{}

func (nopMetrics) RecordQuery(string)                 {}
func (nopMetrics) RecordProviderError(string, string) {}
func (nopMetrics) RecordCascadeDepth(int)             {}
func (nopMetrics) RecordLatency(string, float64)      {}

type fakeReasoner struct {
	id    models.ProviderID
	reply string
}

func (f *fakeReasoner) ID() models.ProviderID { return f.id }

func (f *fakeReasoner) Converse(ctx context.Context, systemPrompt string, messages []models.ChatMessage) (string, error) {
	return f.reply, nil
}

func newTestServer(t *testing.T) *xhttp.Server {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	gw := gateway.New(nopMetrics{}, l, gateway.WithMaxRPS(100))
	gw.RegisterReasoner(&fakeReasoner{
		id:    models.ProviderOpenAI,
		reply: "Diversification spreads risk across assets. In summary, it smooths returns.",
	})

	orch := usecase.NewOrchestrator(
		usecase.NewClassifier(),
		usecase.NewPlanner(5*time.Second, 2),
		gw,
		usecase.NewSynthesizer(2, 8, l),
		usecase.NewConfidenceScorer(0.3, 0.3, 0.2, 0.2),
		nopMetrics{},
		l,
	)
	return xhttp.NewServer(NewAssistantHandler(l, orch))
}

// The stream endpoint must keep working through the full middleware chain;
// response-writer wrappers installed by middleware have to preserve
// http.Flusher for server-sent events.
func TestStreamThroughMiddlewareChain(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/assistant/stream?q=What+is+diversification", nil)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("expected event-stream content type, got %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "event: response") {
		t.Fatalf("expected at least one response event, got %q", body)
	}
	if !strings.Contains(body, "event: done") {
		t.Fatalf("expected terminating done event, got %q", body)
	}
	if !rec.Flushed {
		t.Fatalf("expected handler to flush partial events")
	}
}

func TestStreamRejectsMissingQuery(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/assistant/stream", nil)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestQueryEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/assistant/query",
		strings.NewReader(`{"query":"What is diversification?"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Diversification spreads risk") {
		t.Fatalf("expected reasoner content in response, got %q", rec.Body.String())
	}
}
