// Package llmjson pulls JSON objects out of free-form model output.
//
// Models are asked to answer with a bare JSON object but routinely wrap it in
// prose or markdown fences. Parse tries progressively looser extractions and
// never panics or returns a Go error for bad input: the outcome is always a
// Result whose Kind tells the caller what happened.
package llmjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind tags the outcome of a parse.
type Kind string

const (
	KindOK            Kind = "ok"
	KindParseError    Kind = "parse_error"
	KindUpstreamError Kind = "upstream_error"
)

// Result is the outcome of extracting a JSON object from model text.
type Result struct {
	Kind   Kind
	Raw    json.RawMessage
	Reason string
}

// Error is returned by Result.Err for non-OK results.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// ErrNoObject is the reason used when the text holds no '{' at all.
var ErrNoObject = errors.New("no JSON object found in response")

// OK reports whether an object was extracted.
func (r Result) OK() bool { return r.Kind == KindOK }

// Err returns nil for OK results and an *Error otherwise.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return &Error{Kind: r.Kind, Reason: r.Reason}
}

// Decode unmarshals the extracted object into v.
func (r Result) Decode(v any) error {
	if !r.OK() {
		return r.Err()
	}
	if err := json.Unmarshal(r.Raw, v); err != nil {
		return &Error{Kind: KindParseError, Reason: err.Error()}
	}
	return nil
}

// FromUpstream wraps an agent failure so callers handle it like any other result.
func FromUpstream(err error) Result {
	reason := "agent call failed"
	if err != nil {
		reason = err.Error()
	}
	return Result{Kind: KindUpstreamError, Reason: reason}
}

func parseError(reason string) Result {
	return Result{Kind: KindParseError, Reason: reason}
}

// Parse extracts a JSON object from text.
//
// Order of attempts: the whole text (after stripping code fences), the widest
// window between the first '{' and the last '}', then, when signatureKey is
// set, windows opening at each '{' that precedes the key, walking outwards.
func Parse(text string, signatureKey string) Result {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return parseError("empty response")
	}

	if raw, ok := object(StripCodeFence(trimmed)); ok {
		return Result{Kind: KindOK, Raw: raw}
	}

	start := strings.Index(trimmed, "{")
	if start < 0 {
		return parseError(ErrNoObject.Error())
	}
	end := strings.LastIndex(trimmed, "}")
	if end > start {
		if raw, ok := object(trimmed[start : end+1]); ok {
			return Result{Kind: KindOK, Raw: raw}
		}
	}

	if signatureKey != "" {
		if raw, ok := keyed(trimmed, signatureKey); ok {
			return Result{Kind: KindOK, Raw: raw}
		}
		return parseError(fmt.Sprintf("could not extract a JSON object containing %q", signatureKey))
	}
	return parseError("could not extract a valid JSON object")
}

// StripCodeFence removes a surrounding markdown code fence such as ```json ... ```.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.Index(s, "\n"); nl >= 0 {
		// drop the info string (e.g. "json")
		if !strings.ContainsAny(s[:nl], "{[") {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func keyed(text, key string) (json.RawMessage, bool) {
	needle := `"` + key + `"`
	idx := strings.Index(text, needle)
	if idx < 0 {
		return nil, false
	}
	last := strings.LastIndex(text, "}")

	for start := strings.LastIndex(text[:idx], "{"); start >= 0; start = strings.LastIndex(text[:start], "{") {
		if end := matchingBrace(text, start); end > start {
			if raw, ok := objectWithKey(text[start:end+1], key); ok {
				return raw, true
			}
		}
		if last > start {
			if raw, ok := objectWithKey(text[start:last+1], key); ok {
				return raw, true
			}
		}
	}
	return nil, false
}

// matchingBrace returns the index of the '}' closing the '{' at start, or -1.
func matchingBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
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
				return i
			}
		}
	}
	return -1
}

func object(s string) (json.RawMessage, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		return nil, false
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, false
	}
	return json.RawMessage(s), true
}

func objectWithKey(s, key string) (json.RawMessage, bool) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, false
	}
	if _, ok := m[key]; !ok {
		return nil, false
	}
	return json.RawMessage(s), true
}
