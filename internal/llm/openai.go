package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

// OpenAIConfig configures an OpenAI-compatible endpoint such as NeuroAPI.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// OpenAIProvider talks to any OpenAI-compatible chat completions endpoint.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider builds a client for cfg.BaseURL. Reasoning models are
// sent max_completion_tokens and no temperature, which is logged once here.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("completion API key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("completion model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		clientConfig.HTTPClient = cfg.HTTPClient
	}

	if isReasoningModel(cfg.Model) {
		log.WithField("model", cfg.Model).Warn("reasoning model: configured temperature is not sent, endpoint default applies")
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}, nil
}

func (p *OpenAIProvider) Complete(ctx context.Context, request *CompletionRequest) (*CompletionResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(request.Messages))
	for _, turn := range request.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}

	chatRequest := openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: messages,
	}
	// Reasoning models reject max_tokens and a non-default temperature.
	if isReasoningModel(p.model) {
		chatRequest.MaxCompletionTokens = request.MaxTokens
	} else {
		chatRequest.MaxTokens = request.MaxTokens
		chatRequest.Temperature = float32(request.Temperature)
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatRequest)
	if err != nil {
		return nil, classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no completion choices returned", ErrMalformedResponse)
	}

	text, err := completionText(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	return &CompletionResponse{
		Content: text,
		Usage: &Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusError(apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return statusError(reqErr.HTTPStatusCode, err)
	}
	if decodeError(err) {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return fmt.Errorf("%w: %w", ErrTransport, err)
}

func isReasoningModel(model string) bool {
	for _, prefix := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

// ensure interface compliance
var _ Provider = (*OpenAIProvider)(nil)
