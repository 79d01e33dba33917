package perception

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Model responses frequently wrap JSON in markdown fences, prepend prose, or
// leave trailing commas. ParseJSONResponse applies an ordered list of repair
// strategies and decodes the first candidate that parses into v. Nearly every
// LLM-backed agent depends on this, so it stays a single component.

var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

// ParseJSONResponse extracts a JSON object from raw model output into v.
// Returns a *ParseError when no repair strategy yields valid JSON.
func ParseJSONResponse(raw string, v any) error {
	cleaned := stripMarkdownFences(raw)

	// Strategy 1: direct parse.
	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	// Strategy 2: brace-matched candidate objects, in order of appearance.
	for _, candidate := range findJSONCandidates(cleaned) {
		if err := json.Unmarshal([]byte(candidate), v); err == nil {
			return nil
		}
		// Strategy 3: same candidate with trailing commas removed.
		repaired := trailingCommaRe.ReplaceAllString(candidate, "$1")
		if err := json.Unmarshal([]byte(repaired), v); err == nil {
			return nil
		}
	}

	// Strategy 4: trailing-comma repair over the whole cleaned text.
	repaired := trailingCommaRe.ReplaceAllString(cleaned, "$1")
	if err := json.Unmarshal([]byte(repaired), v); err == nil {
		return nil
	}

	return &ParseError{Response: raw, Err: fmt.Errorf("no strategy produced valid JSON")}
}

// stripMarkdownFences removes a ```json / ``` wrapper if present.
func stripMarkdownFences(s string) string {
	cleaned := strings.TrimSpace(s)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = cleaned[len("```json"):]
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = cleaned[len("```"):]
	}
	if strings.HasSuffix(cleaned, "```") {
		cleaned = cleaned[:len(cleaned)-len("```")]
	}
	return strings.TrimSpace(cleaned)
}

// findJSONCandidates scans the input for top-level JSON object candidates
// using a byte-level state machine that tracks string literals and escapes.
// Safe to iterate bytes for ASCII delimiters because UTF-8 guarantees ASCII
// bytes never appear inside a multi-byte sequence.
func findJSONCandidates(s string) []string {
	var candidates []string
	var depth int
	start := -1
	var inString, escape bool

	for i := 0; i < len(s); i++ {
		b := s[i]

		if escape {
			escape = false
			continue
		}

		if inString {
			if b == '\\' {
				escape = true
			} else if b == '"' {
				inString = false
			}
			continue
		}

		switch b {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start != -1 {
					candidates = append(candidates, s[start:i+1])
					start = -1
				}
			}
		}
	}

	// Unterminated object (response truncated mid-string is unrecoverable,
	// but a dangling top-level brace may still close after comma repair).
	if depth > 0 && start != -1 && !inString {
		candidates = append(candidates, s[start:]+strings.Repeat("}", depth))
	}

	return candidates
}
