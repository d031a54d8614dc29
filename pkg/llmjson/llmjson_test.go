package llmjson

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockscore/pkg/errors"
)

type rating struct {
	Label string  `json:"label" validate:"required,oneof=buy hold sell"`
	Score float64 `json:"score" validate:"gte=0,lte=100"`
}

type report struct {
	Ticker  string   `json:"ticker" validate:"required"`
	Price   *float64 `json:"price"`
	Ratings []rating `json:"ratings" validate:"required,dive"`
}

func TestExtractPrecedence(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"json fence", "Here you go:\n```json\n{\"a\": 1}\n```\nthanks", `{"a": 1}`},
		{"bare fence", "```\n[1, 2]\n```", `[1, 2]`},
		{"object in prose", "Sure! {\"a\": {\"b\": 2}} Hope that helps.", `{"a": {"b": 2}}`},
		{"array in prose", "values: [1, 2, 3] end", `[1, 2, 3]`},
		{"array of objects", "list: [{\"a\": 1}, {\"a\": 2}]", `[{"a": 1}, {"a": 2}]`},
		{"plain text", "  no json here  ", "no json here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.text))
		})
	}
}

func TestDecodeFencedAndBareAgree(t *testing.T) {
	raw := `{"ticker": "TCS", "price": 3500.5, "ratings": [{"label": "buy", "score": 80}]}`

	bare, err := Decode[report](raw)
	require.NoError(t, err)
	fenced, err := Decode[report]("```json\n" + raw + "\n```")
	require.NoError(t, err)

	assert.Equal(t, bare, fenced)
	require.NotNil(t, bare.Price)
	assert.Equal(t, 3500.5, *bare.Price)
}

func TestDecodeParseErrorCarriesExcerpt(t *testing.T) {
	text := "I could not find data for that ticker. " + strings.Repeat("x", 600)

	_, err := Decode[report](text)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.True(t, strings.HasPrefix(parseErr.Excerpt, "I could not find data"))
	assert.Len(t, parseErr.Excerpt, excerptLimit+len("..."))
}

func TestDecodeSchemaErrorListsEveryPath(t *testing.T) {
	raw := `{"price": null, "ratings": [{"label": "buy", "score": 50}, {"label": "moon", "score": 120}], "extra": true}`

	_, err := Decode[report](raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.ElementsMatch(t, []string{"ticker", "ratings[1].label", "ratings[1].score"}, schemaErr.Paths())
	assert.Equal(t, []string{"extra", "price", "ratings"}, schemaErr.Keys)
	assert.Contains(t, err.Error(), "parsed data keys: extra, price, ratings")
}

func TestDecodeTypeMismatchIsSchemaError(t *testing.T) {
	_, err := Decode[report](`{"ticker": 42, "ratings": []}`)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	require.Len(t, schemaErr.Violations, 1)
	assert.Equal(t, "ticker", schemaErr.Violations[0].Path)
}

func TestDecodeIntoMapSkipsStructValidation(t *testing.T) {
	out, err := Decode[map[string]any]("```\n{\"valuation\": {\"peRatio\": 21.4}}\n```")
	require.NoError(t, err)
	assert.Contains(t, out, "valuation")

	_, err = Decode[map[string]any](`[1, 2, 3]`)
	var schemaErr *SchemaError
	assert.True(t, errors.As(err, &schemaErr))
}
