package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockscore/internal/adapters/config"
	"stockscore/pkg/errors"
)

func TestNewChatProviderRequiresKey(t *testing.T) {
	_, err := NewChatProvider(context.Background(), config.AIConfig{Provider: "perplexity"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnavailable))

	_, err = NewChatProvider(context.Background(), config.AIConfig{Provider: "gemini"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnavailable))
}

func TestNewChatProviderRejectsUnknownProvider(t *testing.T) {
	_, err := NewChatProvider(context.Background(), config.AIConfig{Provider: "claude"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotImplemented))
}

func TestNewChatProviderWrapsWithThrottle(t *testing.T) {
	p, err := NewChatProvider(context.Background(), config.AIConfig{
		Provider:          " Perplexity ",
		PerplexityKey:     "pk",
		PerplexityBaseURL: "http://127.0.0.1:1",
		Timeout:           time.Second,
		RequestsPerMinute: 60,
	})
	require.NoError(t, err)

	_, ok := p.(*ThrottledProvider)
	assert.True(t, ok)
	assert.Equal(t, ProviderNamePerplexity, p.Name())
}

func TestModelFor(t *testing.T) {
	cfg := config.AIConfig{Provider: "gemini", GeminiModel: "gemini-2.5-flash", PerplexityModel: "sonar-pro"}
	assert.Equal(t, "gemini-2.5-flash", ModelFor(cfg))

	cfg.Provider = "perplexity"
	assert.Equal(t, "sonar-pro", ModelFor(cfg))
}

func TestNormalizeProviderName(t *testing.T) {
	assert.Equal(t, "gemini", NormalizeProviderName("  Gemini "))
}
