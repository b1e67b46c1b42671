// Package app assembles the service from configuration. Both binaries go
// through here so the HTTP server and the console wire the same components.
package app

import (
	"fmt"
	"time"

	"github.com/siddarthal/AiHackathon/internal/backend"
	"github.com/siddarthal/AiHackathon/internal/chunker"
	"github.com/siddarthal/AiHackathon/internal/config"
	"github.com/siddarthal/AiHackathon/internal/domain"
	"github.com/siddarthal/AiHackathon/internal/embedding"
	"github.com/siddarthal/AiHackathon/internal/filecontext"
	"github.com/siddarthal/AiHackathon/internal/service"
	"github.com/siddarthal/AiHackathon/internal/vectorstore"
	"github.com/siddarthal/AiHackathon/internal/vectorstore/memory"
	"github.com/siddarthal/AiHackathon/internal/vectorstore/qdrant"
)

// BuildService turns a loaded config into a ready-to-use service.
func BuildService(cfg *config.AppConfig) (*service.Service, error) {
	ch, err := chunker.NewWindowChunker(cfg.Index.ChunkSize, cfg.Index.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("configuring chunker: %w", err)
	}

	router := backend.NewRouter(backend.Config{
		Default:      cfg.Backends.Default,
		SystemPrompt: cfg.Chat.SystemPrompt,
		Local: backend.EndpointConfig{
			URL:   cfg.Backends.Local.URL,
			Model: cfg.Backends.Local.Model,
		},
		OpenAI: backend.EndpointConfig{
			URL:    cfg.Backends.OpenAI.URL,
			Model:  cfg.Backends.OpenAI.Model,
			APIKey: cfg.Backends.OpenAI.APIKey(),
		},
		Gemini: backend.EndpointConfig{
			URL:    cfg.Backends.Gemini.URL,
			Model:  cfg.Backends.Gemini.Model,
			APIKey: cfg.Backends.Gemini.APIKey(),
		},
	})

	embedderFactory := func() (domain.Embedder, error) {
		return embedding.NewProvider(embedding.Config{
			Type: cfg.Embedder.Type,
			Ollama: embedding.OllamaConfig{
				BaseURL: cfg.Embedder.Ollama.BaseURL,
				Model:   cfg.Embedder.Ollama.Model,
				Timeout: time.Duration(cfg.Embedder.Ollama.TimeoutSecs) * time.Second,
			},
			OpenAI: embedding.OpenAIConfig{
				APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
				Model:     cfg.Embedder.OpenAI.Model,
			},
		})
	}

	storageFactory, err := storageFactory(cfg)
	if err != nil {
		return nil, err
	}

	svcCfg := service.Config{
		IndexDir:              cfg.Index.Path,
		TopK:                  cfg.Index.TopK,
		ChatMaxTokens:         cfg.Chat.MaxTokens,
		ChatTemperature:       *cfg.Chat.Temperature,
		CompletionMaxTokens:   cfg.Completion.MaxTokens,
		CompletionTemperature: cfg.Completion.Temperature,
		SummaryMaxSentences:   cfg.Summary.MaxSentences,
	}
	assembler := filecontext.NewAssembler(cfg.Completion.ContextMaxChars)

	return service.New(svcCfg, router, ch, assembler, service.Factories{
		Embedder: embedderFactory,
		Storage:  storageFactory,
	}), nil
}

func storageFactory(cfg *config.AppConfig) (func() vectorstore.Storage, error) {
	switch cfg.Index.Store {
	case "memory", "":
		return func() vectorstore.Storage { return memory.NewStore() }, nil
	case "qdrant":
		if cfg.Qdrant == nil {
			return nil, fmt.Errorf("qdrant store selected but qdrant config missing")
		}
		qcfg := qdrant.Config{
			URL:        cfg.Qdrant.URL,
			APIKey:     cfg.Qdrant.APIKey,
			Collection: cfg.Qdrant.Collection,
			Timeout:    time.Duration(cfg.Qdrant.TimeoutSecs) * time.Second,
		}
		return func() vectorstore.Storage { return qdrant.NewStore(qcfg) }, nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.Index.Store)
	}
}
