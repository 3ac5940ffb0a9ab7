package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyCompletion is returned by [Object] when the completion text is empty
// or contains only whitespace. Use [errors.Is] to detect it.
var ErrEmptyCompletion = errors.New("empty model output")

// ErrNoObject is returned by [Object] when the completion contains text but no
// substring of it parses as a JSON object. Use [errors.Is] to detect it.
var ErrNoObject = errors.New("no JSON object in model output")

// languageTags lists fence language tags that models commonly place on the
// first line of a code block. Only an exact (trimmed, case-insensitive) match
// is dropped; any other first line is kept as data.
var languageTags = map[string]bool{
	"json":       true,
	"js":         true,
	"javascript": true,
}

// Object extracts the first JSON object found in text.
//
// It tries three strategies in order and returns on the first success:
//
//  1. Parse the whole trimmed string.
//  2. Parse the interior of each triple-backtick fenced block, in order of
//     appearance, dropping a leading language tag line (json/js/javascript).
//  3. Scan for balanced {...} regions, ignoring braces inside quoted strings,
//     and parse each candidate left to right.
//
// A candidate only counts when its top-level value is a JSON object; arrays
// and scalars are never accepted. Object is pure and safe for concurrent use.
//
// The error is ErrEmptyCompletion for blank input and wraps ErrNoObject when
// every strategy is exhausted. Callers should keep the original text next to
// the error: malformed model output cannot be diagnosed without it.
func Object(text string) (map[string]any, error) {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return nil, ErrEmptyCompletion
	}

	// Fast path: the model did what it was told.
	if obj, ok := tryObject(cleaned); ok {
		return obj, nil
	}

	if strings.Contains(cleaned, "```") {
		if obj, ok := fromFencedBlocks(cleaned); ok {
			return obj, nil
		}
	}

	if obj, ok := fromBalancedBraces(cleaned); ok {
		return obj, nil
	}

	return nil, fmt.Errorf("%w: could not extract a valid JSON object", ErrNoObject)
}

// tryObject parses candidate as JSON and reports success only when the
// top-level value is an object. "null" unmarshals into a nil map without an
// error, so that case is rejected explicitly.
func tryObject(candidate string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return nil, false
	}
	if obj == nil {
		return nil, false
	}
	return obj, true
}

// fromFencedBlocks splits text on the triple-backtick delimiter and tries the
// interior of each fenced block. After the split, odd-indexed segments are the
// block interiors. A first line that is exactly a known language tag is
// dropped; anything else stays, since it may be the first line of the JSON.
func fromFencedBlocks(text string) (map[string]any, bool) {
	parts := strings.Split(text, "```")
	for i := 1; i < len(parts); i += 2 {
		lines := strings.Split(parts[i], "\n")
		if len(lines) > 0 && languageTags[strings.ToLower(strings.TrimSpace(lines[0]))] {
			lines = lines[1:]
		}
		candidate := strings.TrimSpace(strings.Join(lines, "\n"))
		if obj, ok := tryObject(candidate); ok {
			return obj, true
		}
	}
	return nil, false
}

// fromBalancedBraces scans text for balanced {...} regions and parses each one
// as a candidate. The scan tracks whether it is inside a quoted string and a
// backslash escape flag, so braces embedded in string values never move the
// depth counter. When a candidate fails to parse (or parses as a non-object),
// the search resumes at the next '{' strictly after the candidate's start, not
// after its end: a malformed outer candidate may nest a valid object, and a
// later sibling may be valid even when an earlier one was not.
func fromBalancedBraces(text string) (map[string]any, bool) {
	for start := strings.IndexByte(text, '{'); start != -1; {
		depth := 0
		inString := false
		escaped := false

	scan:
		for i := start; i < len(text); i++ {
			ch := text[i]
			if inString {
				switch {
				case escaped:
					escaped = false
				case ch == '\\':
					escaped = true
				case ch == '"':
					inString = false
				}
				continue
			}

			switch ch {
			case '"':
				inString = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					if obj, ok := tryObject(text[start : i+1]); ok {
						return obj, true
					}
					break scan
				}
			}
		}

		next := strings.IndexByte(text[start+1:], '{')
		if next == -1 {
			break
		}
		start += 1 + next
	}
	return nil, false
}
