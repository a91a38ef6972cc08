package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ListPolicy selects which element stands in for the whole reply when the
// service returns a JSON list where a single object was requested. The
// services are instructed to return one object but are not trusted to.
type ListPolicy int

const (
	// TakeLast uses the last element of the list (the analyzer, inferencer,
	// and planner stages consolidate toward the most recent item).
	TakeLast ListPolicy = iota

	// TakeFirst uses the first element of the list (the response generator
	// wants the primary message).
	TakeFirst
)

// extractJSONValue extracts the first complete JSON value (object or array)
// from text that may contain markdown fences or prose around it. If no JSON
// boundary is found the text is returned as-is and the caller's decode
// reports the failure.
func extractJSONValue(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	start := strings.IndexAny(text, "{[")
	if start == -1 {
		return text
	}
	opening := text[start]
	closing := byte('}')
	if opening == '[' {
		closing = ']'
	}

	depth := 0
	inString := false
	escape := false

	for i := start; i < len(text); i++ {
		char := text[i]

		if escape {
			escape = false
			continue
		}
		if char == '\\' {
			escape = true
			continue
		}
		if char == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch char {
		case opening:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}

	return text
}

// NormalizeObject decodes a best-effort JSON reply where a single object was
// requested. It returns the raw object, applying the list-tolerance rules:
// a list reply collapses to one element per the policy, and an empty list
// yields nil (the caller treats nil as an empty object). An error means the
// reply was not valid JSON at all.
func NormalizeObject(raw string, policy ListPolicy) (json.RawMessage, error) {
	clean := extractJSONValue(raw)

	var value json.RawMessage
	if err := json.Unmarshal([]byte(clean), &value); err != nil {
		return nil, fmt.Errorf("reply is not valid JSON: %w", err)
	}

	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return value, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("reply list is not valid JSON: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	if policy == TakeFirst {
		return items[0], nil
	}
	return items[len(items)-1], nil
}

// DecodeObject normalizes a reply with NormalizeObject and unmarshals the
// surviving object into out. An empty-list reply leaves out untouched, so
// callers get zero values, the equivalent of an empty object.
func DecodeObject(raw string, policy ListPolicy, out interface{}) error {
	msg, err := NormalizeObject(raw, policy)
	if err != nil {
		return err
	}
	if msg == nil {
		return nil
	}
	if err := json.Unmarshal(msg, out); err != nil {
		return fmt.Errorf("reply does not match expected schema: %w", err)
	}
	return nil
}

// IsJSONObject reports whether the message is object-shaped.
func IsJSONObject(msg json.RawMessage) bool {
	trimmed := bytes.TrimSpace(msg)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
