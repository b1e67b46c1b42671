package backend

import (
	"context"
	"net/http"
	"strings"

	"github.com/siddarthal/AiHackathon/internal/domain"
)

// completionStops cut a local completion off before the model drifts into a
// fresh declaration instead of finishing the current one.
var completionStops = []string{"\n\n\n", "class ", "def ", "public class", "public static"}

// LocalBackend talks to a local inference server (Ollama /api/generate).
// It takes one flat prompt per call and needs no credential.
type LocalBackend struct {
	url    string
	model  string
	system string
	client *http.Client
}

func (b *LocalBackend) Name() string  { return "local" }
func (b *LocalBackend) Model() string { return b.model }

func (b *LocalBackend) Chat(ctx context.Context, messages []domain.ChatMessage, contextBlock string, opts GenOptions) (string, error) {
	system, turns, err := normalizeMessages(messages, contextBlock, b.system)
	if err != nil {
		return "", err
	}
	payload := map[string]any{
		"model":       b.model,
		"prompt":      flattenTranscript(system, turns),
		"stream":      false,
		"max_tokens":  opts.MaxTokens,
		"temperature": opts.Temperature,
	}
	body, err := postJSON(ctx, b.client, b.url, chatTimeout, nil, payload)
	if err != nil {
		return "", err
	}
	return ExtractText(body), nil
}

// Complete sends the prefix raw, without any chat template, so the model
// continues the code instead of answering about it.
func (b *LocalBackend) Complete(ctx context.Context, prefix string, opts GenOptions) (string, error) {
	payload := map[string]any{
		"model":  b.model,
		"prompt": prefix,
		"stream": false,
		"raw":    true,
		"options": map[string]any{
			"temperature": opts.Temperature,
			"num_predict": opts.MaxTokens,
			"stop":        completionStops,
			"top_p":       0.95,
		},
	}
	body, err := postJSON(ctx, b.client, b.url, completionTimeout, nil, payload)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(ExtractText(body)), nil
}
