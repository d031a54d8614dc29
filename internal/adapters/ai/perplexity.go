package ai

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"stockscore/pkg/errors"
)

// DefaultPerplexityBaseURL is the OpenAI-compatible Perplexity endpoint
const DefaultPerplexityBaseURL = "https://api.perplexity.ai"

// Ensure PerplexityProvider implements ChatProvider
var _ ChatProvider = (*PerplexityProvider)(nil)

// PerplexityProvider talks to Perplexity through the OpenAI SDK
type PerplexityProvider struct {
	client  openai.Client // NewClient returns Client (not *Client)
	timeout time.Duration
}

// NewPerplexityProvider creates a provider. An empty baseURL uses DefaultPerplexityBaseURL.
func NewPerplexityProvider(apiKey, baseURL string, timeout time.Duration) (*PerplexityProvider, error) {
	if apiKey == "" {
		return nil, errors.Wrap(errors.ErrUnavailable, "perplexity API key not configured")
	}
	if baseURL == "" {
		baseURL = DefaultPerplexityBaseURL
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"),
		option.WithRequestTimeout(timeout),
		// Retries are left to the caller
		option.WithMaxRetries(0),
	)

	return &PerplexityProvider{client: client, timeout: timeout}, nil
}

// Name returns provider name.
func (p *PerplexityProvider) Name() ProviderName { return ProviderNamePerplexity }

// Chat sends a chat completion request to Perplexity.
func (p *PerplexityProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if req.Model == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "model is required")
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       openai.ChatModel(req.Model),
		Temperature: openai.Float(req.Temperature),
		MaxTokens:   openai.Int(int64(maxTokens)),
	})
	if err != nil {
		return nil, upstreamError("perplexity", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.Wrap(errors.ErrUpstream, "perplexity returned no choices")
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return nil, errors.Wrap(errors.ErrUpstream, "perplexity returned empty content")
	}

	return &ChatResponse{
		Model:   resp.Model,
		Content: content,
		Usage: Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

// upstreamError classifies an SDK failure as ErrUpstream, keeping the HTTP status when known
func upstreamError(provider string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return errors.Wrapf(errors.ErrUpstream, "%s status %d %s", provider, apiErr.StatusCode, http.StatusText(apiErr.StatusCode))
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Wrapf(errors.ErrUpstream, "%s request timed out", provider)
	}
	if errors.Is(err, context.Canceled) {
		return errors.Wrapf(err, "%s request cancelled", provider)
	}
	return errors.Wrapf(errors.ErrUpstream, "%s request failed: %v", provider, err)
}
