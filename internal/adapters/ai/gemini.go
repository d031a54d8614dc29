package ai

import (
	"context"
	"strings"
	"time"

	"google.golang.org/genai"

	"stockscore/pkg/errors"
)

// Ensure GeminiProvider implements ChatProvider
var _ ChatProvider = (*GeminiProvider)(nil)

// GeminiProvider calls Google Gemini through the genai SDK
type GeminiProvider struct {
	client  *genai.Client
	timeout time.Duration
}

// NewGeminiProvider creates a new Gemini provider. baseURL is only set in tests.
func NewGeminiProvider(ctx context.Context, apiKey, baseURL string, timeout time.Duration) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.Wrap(errors.ErrUnavailable, "gemini API key not configured")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "create gemini client")
	}

	return &GeminiProvider{client: client, timeout: timeout}, nil
}

// Name returns provider name.
func (p *GeminiProvider) Name() ProviderName { return ProviderNameGemini }

// Chat folds system messages into the system instruction and sends the rest as user turns.
func (p *GeminiProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if req.Model == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "model is required")
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens: int32(maxTokens),
	}

	var (
		system   []string
		contents []*genai.Content
	)
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			system = append(system, msg.Content)
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	if len(system) > 0 {
		genCfg.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}

	resp, err := p.client.Models.GenerateContent(ctx, req.Model, contents, genCfg)
	if err != nil {
		if ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errors.Wrap(errors.ErrUpstream, "gemini request timed out")
		}
		if errors.Is(err, context.Canceled) {
			return nil, errors.Wrap(err, "gemini request cancelled")
		}
		return nil, errors.Wrapf(errors.ErrUpstream, "gemini request failed: %v", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, errors.Wrap(errors.ErrUpstream, "gemini returned empty content")
	}

	out := &ChatResponse{Model: req.Model, Content: text}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	return out, nil
}
