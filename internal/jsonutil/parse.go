// Package jsonutil provides utilities for extracting and parsing JSON from
// LLM responses that may be wrapped in markdown code fences or embedded in
// prose, plus field-level coercion helpers for responses whose schema the
// model does not reliably honor.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripMarkdownFences removes ```json ... ``` or ``` ... ``` wrapping from text.
// Returns the content between the fences, or the original text if no fences are found.
func StripMarkdownFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 3 {
		return text
	}

	startIdx := 1 // skip the opening ``` line
	endIdx := len(lines) - 1

	// Find the closing ```
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			endIdx = i
			break
		}
	}

	return strings.Join(lines[startIdx:endIdx], "\n")
}

// ExtractJSON finds and returns the JSON content (object or array) from text
// that may contain surrounding non-JSON content.
// It finds the first { or [ and matches it with the last corresponding } or ].
func ExtractJSON(text string) (string, error) {
	text = strings.TrimSpace(text)

	objIdx := strings.Index(text, "{")
	arrIdx := strings.Index(text, "[")

	if objIdx == -1 && arrIdx == -1 {
		return "", fmt.Errorf("no JSON content found")
	}

	// Determine which delimiter comes first
	var startIdx int
	var endChar string

	if arrIdx == -1 || (objIdx != -1 && objIdx <= arrIdx) {
		startIdx = objIdx
		endChar = "}"
	} else {
		startIdx = arrIdx
		endChar = "]"
	}

	text = text[startIdx:]
	endIdx := strings.LastIndex(text, endChar)
	if endIdx == -1 {
		return "", fmt.Errorf("no closing %s found", endChar)
	}

	return text[:endIdx+1], nil
}

// ParseJSON strips markdown fences from raw LLM response text, extracts JSON
// content (object or array), and unmarshals it into the provided type T.
func ParseJSON[T any](raw string) (T, error) {
	text := StripMarkdownFences(raw)
	jsonStr, err := ExtractJSON(text)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%w (raw length: %d)", err, len(raw))
	}

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		var zero T
		// Include a truncated preview in the error for debugging
		preview := jsonStr
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		return zero, fmt.Errorf("invalid JSON: %w (text: %s)", err, preview)
	}
	return result, nil
}

// ParseObject strips fences, extracts JSON, and unmarshals into a generic
// map for field-by-field coercion. Use this when the model's adherence to
// the requested schema cannot be trusted: each field is then read with
// String/StringList/Float, which default independently instead of failing
// the whole parse on one bad field.
func ParseObject(raw string) (map[string]any, error) {
	return ParseJSON[map[string]any](raw)
}

// String returns the string value of m[key], or def when the field is
// missing or not a string.
func String(m map[string]any, key, def string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return def
}

// StringList returns m[key] coerced to a string slice. Missing fields,
// non-array fields, and non-string elements all coerce to an empty or
// shortened slice — never an error.
func StringList(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Float returns the numeric value of m[key], or def when the field is
// missing or not a number. JSON numbers unmarshal as float64.
func Float(m map[string]any, key string, def float64) float64 {
	if v, ok := m[key].(float64); ok {
		return v
	}
	return def
}
