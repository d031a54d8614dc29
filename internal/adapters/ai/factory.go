package ai

import (
	"context"
	"strings"

	"stockscore/internal/adapters/config"
	"stockscore/pkg/errors"
)

// NewChatProvider builds the provider selected by cfg.Provider, throttled to
// cfg.RequestsPerMinute.
func NewChatProvider(ctx context.Context, cfg config.AIConfig) (ChatProvider, error) {
	var (
		provider ChatProvider
		err      error
	)

	switch ProviderName(NormalizeProviderName(cfg.Provider)) {
	case ProviderNamePerplexity:
		provider, err = NewPerplexityProvider(cfg.PerplexityKey, cfg.PerplexityBaseURL, cfg.Timeout)
	case ProviderNameGemini:
		provider, err = NewGeminiProvider(ctx, cfg.GeminiKey, "", cfg.Timeout)
	default:
		return nil, errors.Wrapf(errors.ErrNotImplemented, "ai provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return NewThrottledProvider(provider, cfg.RequestsPerMinute), nil
}

// ModelFor returns the configured model for the selected provider
func ModelFor(cfg config.AIConfig) string {
	if ProviderName(NormalizeProviderName(cfg.Provider)) == ProviderNameGemini {
		return cfg.GeminiModel
	}
	return cfg.PerplexityModel
}

// NormalizeProviderName makes provider lookup more forgiving.
func NormalizeProviderName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
