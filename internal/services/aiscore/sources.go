package aiscore

import (
	"context"
	"time"

	"stockscore/internal/adapters/ai"
	"stockscore/internal/scoring"
	"stockscore/pkg/errors"
	"stockscore/pkg/llmjson"
)

// Call purposes, used as metric labels
const (
	purposeMetrics   = "metrics"
	purposeNarrative = "narrative"
)

// ProviderSettings are the request parameters shared by both collaborators
type ProviderSettings struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

func (s ProviderSettings) request(messages ...ai.Message) ai.ChatRequest {
	return ai.ChatRequest{
		Model:       s.Model,
		Messages:    messages,
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
	}
}

func (s ProviderSettings) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

var (
	_ scoring.MetricsSource   = (*MetricsSource)(nil)
	_ scoring.NarrativeSource = (*NarrativeSource)(nil)
)

// MetricsSource asks the chat provider for a raw metrics payload
type MetricsSource struct {
	provider ai.ChatProvider
	settings ProviderSettings
}

// NewMetricsSource creates a metrics collaborator over provider
func NewMetricsSource(provider ai.ChatProvider, settings ProviderSettings) *MetricsSource {
	return &MetricsSource{provider: provider, settings: settings}
}

// FetchMetrics returns the decoded JSON object from the provider reply
func (s *MetricsSource) FetchMetrics(ctx context.Context, ticker string) (map[string]any, error) {
	ctx, cancel := s.settings.withTimeout(ai.WithPurpose(ctx, purposeMetrics))
	defer cancel()

	resp, err := s.provider.Chat(ctx, s.settings.request(
		ai.SystemMessage(systemPrompt),
		ai.UserMessage(metricsPrompt(ticker)),
	))
	if err != nil {
		return nil, errors.Wrap(err, "metrics request")
	}

	// Undecodable replies are upstream failures
	raw, err := llmjson.Decode[map[string]any](resp.Content)
	if err != nil {
		return nil, errors.Wrap(errors.Join(errors.ErrUpstream, err), "metrics payload")
	}
	if raw == nil {
		return nil, errors.Wrap(errors.Join(errors.ErrUpstream, errors.ErrInvalidInput), "metrics payload is null")
	}
	return raw, nil
}

// NarrativeSource asks the chat provider for free-text reasoning
type NarrativeSource struct {
	provider ai.ChatProvider
	settings ProviderSettings
}

// NewNarrativeSource creates a narrative collaborator over provider
func NewNarrativeSource(provider ai.ChatProvider, settings ProviderSettings) *NarrativeSource {
	return &NarrativeSource{provider: provider, settings: settings}
}

// Reasoning returns the raw reply; the engine cleans and truncates it
func (s *NarrativeSource) Reasoning(ctx context.Context, req scoring.NarrativeRequest) (string, error) {
	ctx, cancel := s.settings.withTimeout(ai.WithPurpose(ctx, purposeNarrative))
	defer cancel()

	resp, err := s.provider.Chat(ctx, s.settings.request(
		ai.SystemMessage(narrativeSystemPrompt),
		ai.UserMessage(reasoningPrompt(req)),
	))
	if err != nil {
		return "", errors.Wrap(errors.Join(errors.ErrNarrative, err), "narrative request")
	}
	return resp.Content, nil
}
