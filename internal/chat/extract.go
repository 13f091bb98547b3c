package chat

import (
	"encoding/json"
	"strings"
)

// Response fields probed in priority order after the OpenAI-style
// choices path. Providers behind the same gateway disagree on shape, so
// extraction is a best-effort scan.
var textFields = []string{"result", "response", "reply", "text", "message", "answer", "output", "content"}

// ExtractText pulls a single reply string out of whatever shape the
// conversational provider returned: a raw string body, a JSON string, an
// OpenAI-style choices array, or one of several known named fields.
// Non-string values under those fields are re-stringified as a last
// resort. An empty return means no usable text was found and the caller
// should treat the response as an upstream error.
func ExtractText(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		// Not JSON at all: the body itself is the reply.
		return trimmed
	}

	switch v := decoded.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]interface{}:
		if text := fromChoices(v); text != "" {
			return text
		}
		for _, field := range textFields {
			if s, ok := v[field].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
		for _, field := range textFields {
			value, ok := v[field]
			if !ok || value == nil {
				continue
			}
			if raw, err := json.Marshal(value); err == nil {
				return string(raw)
			}
		}
	}
	return ""
}

// fromChoices handles the OpenAI-compatible shape
// choices[0].message.content.
func fromChoices(m map[string]interface{}) string {
	choices, ok := m["choices"].([]interface{})
	if !ok || len(choices) == 0 {
		return ""
	}
	first, ok := choices[0].(map[string]interface{})
	if !ok {
		return ""
	}
	message, ok := first["message"].(map[string]interface{})
	if !ok {
		return ""
	}
	content, _ := message["content"].(string)
	return strings.TrimSpace(content)
}
