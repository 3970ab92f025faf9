package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/avvvet/companion/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
)

// LangChainProvider adapts any langchaingo model to Provider.
type LangChainProvider struct {
	model llms.Model
	name  string
}

func NewLangChainProvider(name string, model llms.Model) *LangChainProvider {
	return &LangChainProvider{model: model, name: name}
}

// NewLangChainOpenAI builds a provider on langchaingo's OpenAI client.
func NewLangChainOpenAI(apiKey, baseURL, model string) (*LangChainProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("completion API key is required")
	}
	opts := []lcopenai.Option{lcopenai.WithToken(apiKey), lcopenai.WithModel(model)}
	if baseURL != "" {
		opts = append(opts, lcopenai.WithBaseURL(baseURL))
	}
	llm, err := lcopenai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create langchain openai client: %w", err)
	}
	return NewLangChainProvider("langchain-openai", llm), nil
}

// NewLangChainAnthropic builds a provider on langchaingo's Anthropic client.
func NewLangChainAnthropic(apiKey, model string) (*LangChainProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	llm, err := anthropic.New(anthropic.WithToken(apiKey), anthropic.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("failed to create langchain anthropic client: %w", err)
	}
	return NewLangChainProvider("langchain-anthropic", llm), nil
}

func (p *LangChainProvider) Complete(ctx context.Context, request *CompletionRequest) (*CompletionResponse, error) {
	messages := make([]llms.MessageContent, 0, len(request.Messages))
	for _, turn := range request.Messages {
		messages = append(messages, llms.TextParts(chatMessageType(turn.Role), turn.Content))
	}

	resp, err := p.model.GenerateContent(ctx, messages,
		llms.WithMaxTokens(request.MaxTokens),
		llms.WithTemperature(request.Temperature),
	)
	if err != nil {
		return nil, classifyLangChainError(err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return nil, fmt.Errorf("%w: %s returned no choices", ErrMalformedResponse, p.name)
	}

	text, err := completionText(resp.Choices[0].Content)
	if err != nil {
		return nil, err
	}
	return &CompletionResponse{Content: text}, nil
}

func chatMessageType(role models.Role) llms.ChatMessageType {
	switch role {
	case models.RoleSystem:
		return llms.ChatMessageTypeSystem
	case models.RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}

// langchaingo surfaces HTTP failures as plain errors, so the status is sniffed.
func classifyLangChainError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit"):
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	case decodeError(err):
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	default:
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
}

var _ Provider = (*LangChainProvider)(nil)
