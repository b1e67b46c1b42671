package backend

import (
	"context"
	"net/http"

	"github.com/siddarthal/AiHackathon/internal/domain"
)

// OpenAIBackend speaks the chat-completions wire format: a messages list
// with the system prompt as its first entry and bearer-token auth.
type OpenAIBackend struct {
	url    string
	model  string
	apiKey string
	system string
	client *http.Client
}

func (b *OpenAIBackend) Name() string  { return "openai" }
func (b *OpenAIBackend) Model() string { return b.model }

func (b *OpenAIBackend) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + b.apiKey}
}

func (b *OpenAIBackend) Chat(ctx context.Context, messages []domain.ChatMessage, contextBlock string, opts GenOptions) (string, error) {
	system, turns, err := normalizeMessages(messages, contextBlock, b.system)
	if err != nil {
		return "", err
	}
	wire := make([]map[string]string, 0, len(turns)+1)
	wire = append(wire, map[string]string{"role": "system", "content": system})
	for _, turn := range turns {
		wire = append(wire, map[string]string{"role": turn.Role, "content": turn.Content})
	}
	payload := map[string]any{
		"model":       b.model,
		"messages":    wire,
		"max_tokens":  opts.MaxTokens,
		"temperature": opts.Temperature,
	}
	body, err := postJSON(ctx, b.client, b.url, chatTimeout, b.headers(), payload)
	if err != nil {
		return "", err
	}
	return ExtractText(body), nil
}

// Complete has no raw mode on this API, so the prefix rides as the sole
// user message of a minimal chat call.
func (b *OpenAIBackend) Complete(ctx context.Context, prefix string, opts GenOptions) (string, error) {
	payload := map[string]any{
		"model": b.model,
		"messages": []map[string]string{
			{"role": "user", "content": completionInstruction + prefix},
		},
		"max_tokens":  opts.MaxTokens,
		"temperature": opts.Temperature,
	}
	body, err := postJSON(ctx, b.client, b.url, completionTimeout, b.headers(), payload)
	if err != nil {
		return "", err
	}
	return ExtractText(body), nil
}
