package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/avvvet/companion/internal/models"
)

// Provider issues a single chat completion. Implementations never retry.
type Provider interface {
	Complete(ctx context.Context, request *CompletionRequest) (*CompletionResponse, error)
}

// CompletionRequest is the ordered message list plus sampling limits.
type CompletionRequest struct {
	Messages    []models.Turn
	MaxTokens   int
	Temperature float64
}

// CompletionResponse carries the trimmed completion text.
type CompletionResponse struct {
	Content string
	Usage   *Usage
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}

var (
	ErrTransport         = errors.New("completion transport failure")
	ErrRateLimited       = errors.New("completion rate limited")
	ErrMalformedResponse = errors.New("malformed completion response")
)

// FailureReason names why a completion did not produce a reply.
type FailureReason string

const (
	ReasonTransport   FailureReason = "transport"
	ReasonTimeout     FailureReason = "timeout"
	ReasonRateLimited FailureReason = "rate_limited"
	ReasonMalformed   FailureReason = "malformed_response"
)

// ReasonOf maps a provider error to a FailureReason.
func ReasonOf(err error) FailureReason {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, ErrRateLimited):
		return ReasonRateLimited
	case errors.Is(err, ErrMalformedResponse):
		return ReasonMalformed
	default:
		return ReasonTransport
	}
}

// statusError wraps err with the sentinel matching an HTTP status code.
func statusError(code int, err error) error {
	if code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	}
	return fmt.Errorf("%w: status %d: %w", ErrTransport, code, err)
}

// decodeError reports whether err came from decoding a response body.
func decodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

// completionText validates and trims the first choice.
func completionText(content string) (string, error) {
	text := strings.TrimSpace(content)
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", ErrMalformedResponse)
	}
	return text, nil
}
