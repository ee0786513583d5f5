// Package parser extracts structured records from raw generative-model output.
//
// Model output is not guaranteed to be well-formed JSON: responses routinely
// arrive wrapped in markdown code fences, prefixed with prose, or followed by
// commentary. The extraction heuristics live here behind a narrow contract so
// they can evolve without touching orchestration logic.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON indicates no JSON object could be located in the raw text.
var ErrNoJSON = errors.New("no JSON object found in model output")

// ExtractJSONObject returns the first balanced {...} object in raw text.
// Code-fence markers and surrounding prose are tolerated. Brace matching is
// string-aware: braces inside JSON string literals do not count.
func ExtractJSONObject(raw string) (string, error) {
	s := stripFences(raw)

	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", ErrNoJSON
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}

	return "", fmt.Errorf("%w: unbalanced braces", ErrNoJSON)
}

// DecodeObject extracts the first JSON object from raw text and unmarshals it
// into v.
func DecodeObject(raw string, v any) error {
	obj, err := ExtractJSONObject(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(obj), v); err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}
	return nil
}

// stripFences removes markdown code-fence lines (``` or ```json) so that the
// fence backticks cannot shadow the object boundaries.
func stripFences(s string) string {
	if !strings.Contains(s, "```") {
		return s
	}
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
