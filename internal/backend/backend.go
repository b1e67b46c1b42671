package backend

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/siddarthal/AiHackathon/internal/domain"
)

// Generation call timeouts. Chat answers can be long; completions are
// latency-sensitive because an editor is waiting on them.
const (
	chatTimeout       = 120 * time.Second
	completionTimeout = 30 * time.Second
)

// GenOptions are the per-request generation knobs, already clamped by the
// caller.
type GenOptions struct {
	MaxTokens   int
	Temperature float64
}

// Backend is one generation service. Each variant owns its wire format:
// it builds its own payload from the caller's messages plus an assembled
// file-context block, and normalizes its own response shape to plain text.
type Backend interface {
	Name() string
	Model() string
	Chat(ctx context.Context, messages []domain.ChatMessage, contextBlock string, opts GenOptions) (string, error)
	Complete(ctx context.Context, prefix string, opts GenOptions) (string, error)
}

// EndpointConfig configures one backend variant.
type EndpointConfig struct {
	URL    string
	Model  string
	APIKey string
}

// Config wires all three variants plus the process-wide default mode.
type Config struct {
	Default      string
	SystemPrompt string
	Local        EndpointConfig
	OpenAI       EndpointConfig
	Gemini       EndpointConfig
}

// Router resolves a requested mode to a concrete backend.
type Router struct {
	local       *LocalBackend
	openai      *OpenAIBackend
	gemini      *GeminiBackend
	defaultMode string
}

func NewRouter(cfg Config) *Router {
	system := cfg.SystemPrompt
	if system == "" {
		system = DefaultSystemPrompt
	}
	client := &http.Client{Timeout: chatTimeout}
	def := cfg.Default
	if def == "" {
		def = "local"
	}
	return &Router{
		local:       &LocalBackend{url: cfg.Local.URL, model: cfg.Local.Model, system: system, client: client},
		openai:      &OpenAIBackend{url: cfg.OpenAI.URL, model: cfg.OpenAI.Model, apiKey: cfg.OpenAI.APIKey, system: system, client: client},
		gemini:      &GeminiBackend{baseURL: cfg.Gemini.URL, model: cfg.Gemini.Model, apiKey: cfg.Gemini.APIKey, system: system, client: client},
		defaultMode: def,
	}
}

// Resolve maps a requested mode to a backend. Empty means the configured
// default; "token" is the deprecated alias for "openai"; anything
// unrecognized degrades to the always-available local backend.
func (r *Router) Resolve(mode string) Backend {
	if mode == "" {
		mode = r.defaultMode
	}
	if mode == "token" {
		log.Debug("deprecated backend mode, treating as openai", "mode", mode)
		mode = "openai"
	}
	switch mode {
	case "openai":
		return r.openai
	case "gemini":
		return r.gemini
	case "local":
		return r.local
	default:
		log.Warn("unknown backend mode, falling back to local", "mode", mode)
		return r.local
	}
}

// Default returns the backend for the configured default mode.
func (r *Router) Default() Backend {
	return r.Resolve(r.defaultMode)
}
