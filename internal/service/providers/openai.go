package providers

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Swigstan1810/Heights-sub002/internal/domain/models"
	domsvc "github.com/Swigstan1810/Heights-sub002/internal/domain/service"
)

// OpenAIProvider is the general-purpose reasoning provider.
type OpenAIProvider struct {
	cli       *openai.Client
	model     string
	maxTokens int
}

func NewOpenAI(apiKey, model string, maxTokens int) *OpenAIProvider {
	return &OpenAIProvider{
		cli:       openai.NewClient(apiKey),
		model:     model,
		maxTokens: maxTokens,
	}
}

func (p *OpenAIProvider) ID() models.ProviderID { return models.ProviderOpenAI }

func (p *OpenAIProvider) Converse(ctx context.Context, systemPrompt string, messages []models.ChatMessage) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if systemPrompt != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	for _, m := range messages {
		role := m.Role
		if role != openai.ChatMessageRoleAssistant && role != openai.ChatMessageRoleSystem {
			role = openai.ChatMessageRoleUser
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	resp, err := p.cli.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.model,
		Messages:  msgs,
		MaxTokens: p.maxTokens,
	})
	if err != nil {
		return "", classify(p.ID(), err)
	}
	if len(resp.Choices) == 0 {
		return "", emptyResult(p.ID())
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", emptyResult(p.ID())
	}
	return content, nil
}

var _ domsvc.ReasoningProvider = (*OpenAIProvider)(nil)
