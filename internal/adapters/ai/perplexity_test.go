package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockscore/pkg/errors"
)

func chatCompletion(content string) map[string]any {
	return map[string]any{
		"id":      "cmpl-1",
		"object":  "chat.completion",
		"created": 1760000000,
		"model":   "sonar-pro",
		"choices": []any{map[string]any{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
		"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17},
	}
}

func TestPerplexityChat(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer pk", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatCompletion(`{"peRatio": 12}`))
	}))
	defer srv.Close()

	p, err := NewPerplexityProvider("pk", srv.URL, 5*time.Second)
	require.NoError(t, err)

	resp, err := p.Chat(context.Background(), ChatRequest{
		Model:       "sonar-pro",
		Messages:    []Message{SystemMessage("be precise"), UserMessage("metrics for TCS")},
		Temperature: 0.1,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"peRatio": 12}`, resp.Content)
	assert.Equal(t, "sonar-pro", resp.Model)
	assert.Equal(t, 17, resp.Usage.TotalTokens)

	assert.Equal(t, "sonar-pro", got.Model)
	assert.InDelta(t, 0.1, got.Temperature, 1e-9)
	assert.Equal(t, DefaultMaxTokens, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "metrics for TCS", got.Messages[1].Content)
}

func TestPerplexityChatUpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-2xx",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
			},
		},
		{
			name: "empty content",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(chatCompletion("   "))
			},
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			p, err := NewPerplexityProvider("pk", srv.URL, 200*time.Millisecond)
			require.NoError(t, err)

			_, err = p.Chat(context.Background(), ChatRequest{Model: "sonar-pro", Messages: []Message{UserMessage("x")}})
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrUpstream), err.Error())
		})
	}
}

func TestPerplexityRequiresModel(t *testing.T) {
	p, err := NewPerplexityProvider("pk", "", time.Second)
	require.NoError(t, err)

	_, err = p.Chat(context.Background(), ChatRequest{})
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}
