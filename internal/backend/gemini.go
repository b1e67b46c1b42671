package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/siddarthal/AiHackathon/internal/domain"
)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

// GeminiBackend speaks the generateContent wire format: contents with
// user/model roles and the API key in the query string. The format has no
// system slot, so the system prompt is folded into the first user part.
type GeminiBackend struct {
	baseURL string
	model   string
	apiKey  string
	system  string
	client  *http.Client
}

func (b *GeminiBackend) Name() string  { return "gemini" }
func (b *GeminiBackend) Model() string { return b.model }

func (b *GeminiBackend) endpoint() string {
	return fmt.Sprintf("%s/%s:generateContent?key=%s", b.baseURL, b.model, b.apiKey)
}

func (b *GeminiBackend) Chat(ctx context.Context, messages []domain.ChatMessage, contextBlock string, opts GenOptions) (string, error) {
	system, turns, err := normalizeMessages(messages, contextBlock, b.system)
	if err != nil {
		return "", err
	}
	contents := make([]geminiContent, 0, len(turns))
	systemPending := system != ""
	for _, turn := range turns {
		role := "user"
		text := turn.Content
		if turn.Role == domain.RoleAssistant {
			role = "model"
		} else if systemPending {
			text = system + "\n\n" + text
			systemPending = false
		}
		contents = append(contents, geminiContent{Role: role, Parts: []geminiPart{{Text: text}}})
	}
	payload := map[string]any{
		"contents": contents,
		"generationConfig": map[string]any{
			"temperature":     opts.Temperature,
			"maxOutputTokens": opts.MaxTokens,
		},
	}
	body, err := postJSON(ctx, b.client, b.endpoint(), chatTimeout, nil, payload)
	if err != nil {
		return "", err
	}
	return ExtractText(body), nil
}

func (b *GeminiBackend) Complete(ctx context.Context, prefix string, opts GenOptions) (string, error) {
	payload := map[string]any{
		"contents": []geminiContent{
			{Parts: []geminiPart{{Text: completionInstruction + prefix}}},
		},
		"generationConfig": map[string]any{
			"temperature":     opts.Temperature,
			"maxOutputTokens": opts.MaxTokens,
		},
	}
	body, err := postJSON(ctx, b.client, b.endpoint(), completionTimeout, nil, payload)
	if err != nil {
		return "", err
	}
	return ExtractText(body), nil
}
