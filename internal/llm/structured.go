package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SchemaValidator validates a parsed struct after JSON extraction.
// Returns nil if valid, or a descriptive error if invalid.
type SchemaValidator[T any] func(T) error

// ExtractJSON pulls the first JSON object that decodes into T out of raw
// model output. Markdown fences, surrounding prose, and line comments are
// tolerated. If validator is non-nil, the decoded value must pass it.
func ExtractJSON[T any](raw string, validator SchemaValidator[T]) (T, error) {
	var zero T

	cleaned := stripJSONComments(stripCodeFences(raw))

	var lastErr error
	found := false
	for offset := 0; offset < len(cleaned); {
		idx := strings.IndexByte(cleaned[offset:], '{')
		if idx < 0 {
			break
		}
		start := offset + idx
		found = true

		var result T
		// Decode reads exactly one value and ignores whatever follows it.
		dec := json.NewDecoder(strings.NewReader(cleaned[start:]))
		if err := dec.Decode(&result); err != nil {
			lastErr = err
			offset = start + 1
			continue
		}

		if validator != nil {
			if err := validator(result); err != nil {
				return zero, fmt.Errorf("%w: validation failed: %v", ErrInvalidOutput, err)
			}
		}
		return result, nil
	}

	if !found {
		return zero, fmt.Errorf("%w: no JSON object found in response", ErrInvalidOutput)
	}
	return zero, fmt.Errorf("%w: %v", ErrInvalidOutput, lastErr)
}

// stripCodeFences drops markdown fence lines (``` or ```json) and keeps
// everything between and around them.
func stripCodeFences(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// stripJSONComments removes // line comments that sit outside string values.
func stripJSONComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && c == '/' && i+1 < len(s) && s[i+1] == '/':
			for i+1 < len(s) && s[i+1] != '\n' {
				i++
			}
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
