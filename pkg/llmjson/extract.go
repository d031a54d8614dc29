// Package llmjson pulls JSON payloads out of free-form model output and
// validates them against struct schemas.
package llmjson

import (
	"encoding/json"
	"regexp"
	"strings"
)

// fencePattern matches the first markdown code fence, with an optional language tag.
var fencePattern = regexp.MustCompile("(?s)```(?:[A-Za-z]+)?[ \\t]*\\n?(.*?)\\n?\\s*```")

// Extract returns the JSON candidate inside text. Precedence:
// fenced block, first '{' to last '}', first '[' to last ']', trimmed text.
//
// A brace span that is not valid JSON yields to a valid bracket span, so a
// top-level array of objects survives surrounding prose.
func Extract(text string) string {
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}

	object := span(text, '{', '}')
	if object != "" && json.Valid([]byte(object)) {
		return object
	}

	array := span(text, '[', ']')
	if array != "" && (object == "" || json.Valid([]byte(array))) {
		return array
	}

	if object != "" {
		return object
	}
	return strings.TrimSpace(text)
}

func span(text string, open, close byte) string {
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, close)
	if start < 0 || end <= start {
		return ""
	}
	return strings.TrimSpace(text[start : end+1])
}
