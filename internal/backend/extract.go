package backend

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// Blocked generations arrive with a finish reason instead of text.
var blockedFinishReasons = map[string]bool{
	"SAFETY":     true,
	"RECITATION": true,
	"OTHER":      true,
}

// flatTextKeys are tried in order on object responses that match neither
// branded shape. "response" may also hold a nested object, handled below.
var flatTextKeys = []string{"completion", "text", "response", "result", "output"}

// ExtractText normalizes a generation response body to plain text. It
// classifies the payload into one of the known shapes (chat-completions
// choices, generateContent candidates, a flat text key, or a one-level
// nested response object) and falls back to the raw body for anything it
// cannot place, logging the unknown shape so a new provider format shows up
// in the logs rather than as silent garbage.
func ExtractText(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return string(body)
	}
	switch classify(payload) {
	case shapeChoices:
		return extractChoices(payload)
	case shapeCandidates:
		return extractCandidates(payload)
	case shapeFlat:
		// A flat key holding a non-string still falls through to the
		// serialized fallback instead of swallowing the payload.
		if text, ok := extractFlat(payload); ok {
			return text
		}
	}
	log.Warn("unknown response shape from backend", "keys", topLevelKeys(payload))
	serialized, err := json.Marshal(payload)
	if err != nil {
		return string(body)
	}
	return string(serialized)
}

type responseShape int

const (
	shapeUnknown responseShape = iota
	shapeChoices
	shapeCandidates
	shapeFlat
)

func classify(payload map[string]any) responseShape {
	if _, ok := payload["choices"]; ok {
		return shapeChoices
	}
	if _, ok := payload["candidates"]; ok {
		return shapeCandidates
	}
	for _, key := range flatTextKeys {
		if _, ok := payload[key]; ok {
			return shapeFlat
		}
	}
	return shapeUnknown
}

func extractChoices(payload map[string]any) string {
	choices, ok := payload["choices"].([]any)
	if !ok || len(choices) == 0 {
		return ""
	}
	choice, ok := choices[0].(map[string]any)
	if !ok {
		return ""
	}
	message, ok := choice["message"].(map[string]any)
	if !ok {
		return ""
	}
	content, _ := message["content"].(string)
	return content
}

func extractCandidates(payload map[string]any) string {
	candidates, ok := payload["candidates"].([]any)
	if !ok || len(candidates) == 0 {
		return ""
	}
	candidate, ok := candidates[0].(map[string]any)
	if !ok {
		return ""
	}
	if reason, _ := candidate["finishReason"].(string); blockedFinishReasons[reason] {
		log.Warn("generation blocked by provider", "finishReason", reason)
		return ""
	}
	content, ok := candidate["content"].(map[string]any)
	if !ok {
		return ""
	}
	parts, ok := content["parts"].([]any)
	if !ok || len(parts) == 0 {
		return ""
	}
	part, ok := parts[0].(map[string]any)
	if !ok {
		return ""
	}
	text, _ := part["text"].(string)
	return text
}

func extractFlat(payload map[string]any) (string, bool) {
	for _, key := range flatTextKeys {
		value, ok := payload[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			return v, true
		case map[string]any:
			// Some servers wrap the answer one level down, e.g.
			// {"response": {"text": "..."}}.
			if key == "response" {
				for _, inner := range flatTextKeys {
					if s, ok := v[inner].(string); ok {
						return s, true
					}
				}
			}
		}
	}
	return "", false
}

func topLevelKeys(payload map[string]any) string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}
