package providers

import (
	"context"
	"strings"
	"time"

	"github.com/Swigstan1810/Heights-sub002/internal/domain/models"
	domsvc "github.com/Swigstan1810/Heights-sub002/internal/domain/service"
	xhttp "github.com/Swigstan1810/Heights-sub002/pkg/http"
)

// PerplexityProvider is the real-time-search reasoning provider. The API is
// OpenAI-compatible, so the request shape mirrors chat completions.
type PerplexityProvider struct {
	client    *xhttp.Client
	baseURL   string
	apiKey    string
	model     string
	maxTokens int
}

func NewPerplexity(apiKey, baseURL, model string, maxTokens int, timeout time.Duration) *PerplexityProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PerplexityProvider{
		client:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
		baseURL:   baseURL,
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
	}
}

func (p *PerplexityProvider) ID() models.ProviderID { return models.ProviderPerplexity }

type pplxMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type pplxRequest struct {
	Model     string        `json:"model"`
	Messages  []pplxMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type pplxResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *PerplexityProvider) Converse(ctx context.Context, systemPrompt string, messages []models.ChatMessage) (string, error) {
	msgs := make([]pplxMessage, 0, len(messages)+1)
	if systemPrompt != "" {
		msgs = append(msgs, pplxMessage{Role: "system", Content: systemPrompt})
	}
	for _, m := range messages {
		role := m.Role
		if role != "assistant" && role != "system" {
			role = "user"
		}
		msgs = append(msgs, pplxMessage{Role: role, Content: m.Content})
	}

	var out pplxResponse
	err := p.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    p.baseURL + "/chat/completions",
		Headers: map[string]string{
			"Authorization": "Bearer " + p.apiKey,
			"Content-Type":  "application/json",
		},
		Body: pplxRequest{Model: p.model, Messages: msgs, MaxTokens: p.maxTokens},
	}, &out)
	if err != nil {
		return "", classify(p.ID(), err)
	}
	if len(out.Choices) == 0 {
		return "", emptyResult(p.ID())
	}
	content := strings.TrimSpace(out.Choices[0].Message.Content)
	if content == "" {
		return "", emptyResult(p.ID())
	}
	return content, nil
}

var _ domsvc.ReasoningProvider = (*PerplexityProvider)(nil)
