package embedding

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/siddarthal/AiHackathon/internal/domain"
)

// ModelPersister is implemented by embedders whose fitted state must travel
// with the index directory (currently only TF-IDF).
type ModelPersister interface {
	SaveModel(dir string) error
	LoadModel(dir string) error
}

// Config selects and configures the embedding provider.
type Config struct {
	Type   string `yaml:"type"` // auto | tfidf | ollama | openai
	Ollama OllamaConfig
	OpenAI OpenAIConfig
}

// NewProvider resolves the embedder for the current process. Type "auto"
// implements the local-first policy: probe the local Ollama server with a
// one-word embed, fall back to the hosted OpenAI API, and fail fatally with
// domain.ErrEmbeddingUnavailable when neither works. The result is fixed for
// the lifetime of the index built from it.
func NewProvider(cfg Config) (domain.Embedder, error) {
	switch cfg.Type {
	case "tfidf":
		return NewTFIDFEmbedder(), nil
	case "ollama":
		emb := NewOllamaEmbedder(cfg.Ollama)
		if err := probe(emb); err != nil {
			return nil, fmt.Errorf("%w: ollama: %v", domain.ErrEmbeddingUnavailable, err)
		}
		return emb, nil
	case "openai":
		emb, err := NewOpenAIEmbedder(cfg.OpenAI)
		if err != nil {
			return nil, fmt.Errorf("%w: openai: %v", domain.ErrEmbeddingUnavailable, err)
		}
		return emb, nil
	case "auto", "":
		local := NewOllamaEmbedder(cfg.Ollama)
		if err := probe(local); err == nil {
			log.Info("using local ollama embeddings", "model", local.Model())
			return local, nil
		} else {
			log.Warn("local embeddings unavailable, falling back to hosted", "error", err)
		}
		hosted, err := NewOpenAIEmbedder(cfg.OpenAI)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
		}
		if err := probe(hosted); err != nil {
			return nil, fmt.Errorf("%w: openai: %v", domain.ErrEmbeddingUnavailable, err)
		}
		log.Info("using hosted openai embeddings", "model", hosted.Model())
		return hosted, nil
	default:
		return nil, fmt.Errorf("unknown embedder type: %s", cfg.Type)
	}
}

// probe issues a trivial embed to prove the provider actually works, not
// just that it was constructed.
func probe(emb domain.Embedder) error {
	_, err := emb.Embed("hello")
	return err
}
