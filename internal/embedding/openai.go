package embedding

import (
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIEmbedder is the hosted fallback. It requires an API key and maps a
// known model to its published dimension up front.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
	dim    int
}

type OpenAIConfig struct {
	APIKeyEnv string
	Model     string
}

func NewOpenAIEmbedder(cfg OpenAIConfig) (*OpenAIEmbedder, error) {
	keyEnv := cfg.APIKeyEnv
	if keyEnv == "" {
		keyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(keyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", keyEnv)
	}
	model := cfg.Model
	if model == "" {
		model = "text-embedding-3-small"
	}
	dim := 1536
	if model == "text-embedding-3-large" {
		dim = 3072
	}
	return &OpenAIEmbedder{
		client: openai.NewClient(key),
		model:  model,
		dim:    dim,
	}, nil
}

func (e *OpenAIEmbedder) Name() string  { return "openai" }
func (e *OpenAIEmbedder) Model() string { return e.model }

// Prepare is not required for hosted embedding.
func (e *OpenAIEmbedder) Prepare(corpus []string) error { return nil }

func (e *OpenAIEmbedder) Dimension() int { return e.dim }

func (e *OpenAIEmbedder) Embed(text string) ([]float64, error) {
	if text == "" {
		return nil, errors.New("cannot embed empty text")
	}
	resp, err := e.client.CreateEmbeddings(context.Background(), openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}
	v32 := resp.Data[0].Embedding
	vec := make([]float64, len(v32))
	for i := range v32 {
		vec[i] = float64(v32[i])
	}
	// normalized so cosine reduces to a dot product in the store
	l2normalize(vec)
	return vec, nil
}

// EmbedBatch embeds each text with bounded concurrency against the API.
func (e *OpenAIEmbedder) EmbedBatch(texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	errCh := make(chan error, len(texts))
	sem := make(chan struct{}, 10)

	for i := range texts {
		sem <- struct{}{}
		go func(idx int) {
			defer func() { <-sem }()
			vec, err := e.Embed(texts[idx])
			if err != nil {
				errCh <- fmt.Errorf("embedding text %d: %w", idx, err)
				return
			}
			vectors[idx] = vec
			errCh <- nil
		}(i)
	}

	var firstErr error
	for range texts {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return vectors, nil
}
