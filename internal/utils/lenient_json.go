package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var (
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	unquotedKeyRe   = regexp.MustCompile(`([{,]\s*)([A-Za-z_]\w*)(\s*:)`)
	controlCharRe   = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// ParseLenientJSON parses JSON that may be slightly malformed. Numbers decoded
// into interface values are kept as json.Number, so one out-of-range literal
// does not fail the whole document. Accepted input:
// - Pure JSON
// - JSON with surrounding text
// - Trailing commas, unquoted keys, single-quoted strings, stray control characters
func ParseLenientJSON(input string, target interface{}) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("empty input")
	}

	// Try direct parsing first (most common case)
	if err := unmarshalNumbers(input, target); err == nil {
		return nil
	}

	candidate := input
	if extracted := extractJSONFromText(input); extracted != "" {
		candidate = extracted
		if err := unmarshalNumbers(candidate, target); err == nil {
			return nil
		}
	}

	if cleaned := cleanAndFixJSON(candidate); cleaned != "" {
		if err := unmarshalNumbers(cleaned, target); err == nil {
			return nil
		}
	}

	return fmt.Errorf("failed to parse JSON from input: %s", truncateString(input, 100))
}

// unmarshalNumbers is json.Unmarshal with UseNumber
func unmarshalNumbers(input string, target interface{}) error {
	dec := json.NewDecoder(strings.NewReader(input))
	dec.UseNumber()
	if err := dec.Decode(target); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("unexpected data after JSON value")
	}
	return nil
}

// DecodePayload turns a request body into an open key-value payload.
// Anything that is not a JSON object, however malformed, yields an empty payload.
func DecodePayload(body []byte) (map[string]any, error) {
	payload := map[string]any{}
	if len(body) == 0 {
		return payload, nil
	}
	var decoded map[string]any
	if err := ParseLenientJSON(string(body), &decoded); err != nil {
		return payload, err
	}
	if decoded == nil {
		return payload, nil
	}
	return decoded, nil
}

// extractJSONFromText finds the first JSON object in surrounding text
func extractJSONFromText(input string) string {
	if start := strings.Index(input, "{"); start >= 0 {
		return extractBalancedBraces(input[start:], '{', '}')
	}
	return ""
}

// extractBalancedBraces extracts content with balanced braces
func extractBalancedBraces(input string, open, close rune) string {
	if len(input) == 0 {
		return ""
	}

	depth := 0
	inString := false
	escape := false
	start := 0

	for i, ch := range input {
		if escape {
			escape = false
			continue
		}

		if ch == '\\' {
			escape = true
			continue
		}

		if ch == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		if ch == open {
			if depth == 0 {
				start = i
			}
			depth++
		} else if ch == close {
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}

	return ""
}

// cleanAndFixJSON attempts to fix common hand-written JSON mistakes
func cleanAndFixJSON(input string) string {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(s, "\ufeff")

	s = fixSingleQuotes(s)
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	s = unquotedKeyRe.ReplaceAllString(s, `$1"$2"$3`)
	s = controlCharRe.ReplaceAllString(s, "")

	return s
}

// fixSingleQuotes converts single-quoted strings to double-quoted ones.
// Apostrophes inside double-quoted strings are left alone.
func fixSingleQuotes(input string) string {
	var result strings.Builder
	inDouble := false
	inSingle := false
	escape := false

	for _, ch := range input {
		if escape {
			result.WriteRune(ch)
			escape = false
			continue
		}

		switch {
		case ch == '\\':
			result.WriteRune(ch)
			escape = true
		case ch == '"' && !inSingle:
			inDouble = !inDouble
			result.WriteRune(ch)
		case ch == '"' && inSingle:
			result.WriteString(`\"`)
		case ch == '\'' && !inDouble:
			inSingle = !inSingle
			result.WriteRune('"')
		default:
			result.WriteRune(ch)
		}
	}

	return result.String()
}

// truncateString truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
