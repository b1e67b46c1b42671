package service

import (
	"context"
	"errors"

	"github.com/siddarthal/AiHackathon/internal/backend"
	"github.com/siddarthal/AiHackathon/internal/domain"
)

// Floors keep a clamped request from degenerating into a useless
// generation budget.
const (
	chatTokenFloor       = 64
	completionTokenFloor = 16
)

// ChatInput is one chat turn request. Temperature distinguishes unset from
// an explicit zero.
type ChatInput struct {
	Messages    []domain.ChatMessage
	Files       []domain.FileReference
	Backend     string
	MaxTokens   int
	Temperature *float64
}

type ChatOutput struct {
	Answer      string `json:"answer"`
	BackendUsed string `json:"backend_used"`
	ModelUsed   string `json:"model_used"`
}

// Chat assembles the file context, resolves the backend, and generates a
// reply. It needs no index and works in every lifecycle state.
func (s *Service) Chat(ctx context.Context, input ChatInput) (ChatOutput, error) {
	if len(input.Messages) == 0 {
		return ChatOutput{}, errors.New("chat requires at least one message")
	}
	contextBlock := s.assembler.Assemble(input.Files)
	b := s.router.Resolve(input.Backend)

	opts := backend.GenOptions{
		MaxTokens:   clampTokens(input.MaxTokens, s.cfg.ChatMaxTokens, chatTokenFloor, 2*s.cfg.ChatMaxTokens),
		Temperature: s.cfg.ChatTemperature,
	}
	if input.Temperature != nil {
		opts.Temperature = *input.Temperature
	}

	answer, err := b.Chat(ctx, input.Messages, contextBlock, opts)
	if err != nil {
		return ChatOutput{}, err
	}
	return ChatOutput{Answer: answer, BackendUsed: b.Name(), ModelUsed: b.Model()}, nil
}

// CompleteInput asks for a continuation of a raw code prefix. Suffix is
// accepted for fill-in-the-middle callers, but the current backends
// complete from the prefix alone.
type CompleteInput struct {
	Prefix      string
	Suffix      string
	Backend     string
	MaxTokens   int
	Temperature *float64
}

type CompleteOutput struct {
	Completion  string `json:"completion"`
	BackendUsed string `json:"backend_used"`
	ModelUsed   string `json:"model_used"`
}

func (s *Service) Complete(ctx context.Context, input CompleteInput) (CompleteOutput, error) {
	if input.Prefix == "" {
		return CompleteOutput{}, errors.New("completion requires a non-empty prefix")
	}
	b := s.router.Resolve(input.Backend)

	opts := backend.GenOptions{
		MaxTokens:   clampTokens(input.MaxTokens, s.cfg.CompletionMaxTokens, completionTokenFloor, s.cfg.CompletionMaxTokens),
		Temperature: s.cfg.CompletionTemperature,
	}
	if input.Temperature != nil {
		opts.Temperature = *input.Temperature
	}

	completion, err := b.Complete(ctx, input.Prefix, opts)
	if err != nil {
		return CompleteOutput{}, err
	}
	return CompleteOutput{Completion: completion, BackendUsed: b.Name(), ModelUsed: b.Model()}, nil
}

// clampTokens resolves a requested budget against the configured default
// and bounds. Zero or negative means "use the default".
func clampTokens(requested, fallback, floor, ceiling int) int {
	if requested <= 0 {
		requested = fallback
	}
	return max(floor, min(requested, ceiling))
}
