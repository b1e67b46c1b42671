package embedding

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// OllamaEmbedder talks to a local Ollama server. It needs no credential,
// which makes it the preferred provider when it is reachable.
type OllamaEmbedder struct {
	baseURL    string
	model      string
	dimension  int
	client     *http.Client
	maxRetries int
}

type OllamaConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

func NewOllamaEmbedder(cfg OllamaConfig) *OllamaEmbedder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "nomic-embed-text"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	return &OllamaEmbedder{
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		client:     &http.Client{Timeout: t},
		maxRetries: 5,
	}
}

func (e *OllamaEmbedder) Name() string  { return "ollama" }
func (e *OllamaEmbedder) Model() string { return e.model }

// Prepare is not required for server-side embedding; the dimension is
// learned lazily from the first response.
func (e *OllamaEmbedder) Prepare(corpus []string) error { return nil }

func (e *OllamaEmbedder) Dimension() int { return e.dimension }

func (e *OllamaEmbedder) Embed(text string) ([]float64, error) {
	type reqBody struct {
		Model  string `json:"model"`
		Prompt string `json:"prompt"`
	}
	url := fmt.Sprintf("%s/api/embeddings", e.baseURL)
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		data, _ := json.Marshal(reqBody{Model: e.model, Prompt: text})
		req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")

		resp, err := e.client.Do(req)
		if err != nil {
			if attempt < e.maxRetries {
				time.Sleep(retryDelay(attempt))
				continue
			}
			return nil, err
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			ra := resp.Header.Get("Retry-After")
			_ = resp.Body.Close()
			if attempt >= e.maxRetries {
				return nil, fmt.Errorf("ollama embeddings failed: %s", resp.Status)
			}
			if secs, err := strconv.Atoi(ra); err == nil {
				time.Sleep(time.Duration(secs) * time.Second)
			} else {
				time.Sleep(retryDelay(attempt))
			}
			continue
		}

		if resp.StatusCode >= 300 {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("ollama embeddings failed: %s", resp.Status)
		}

		var out struct {
			Embedding []float64 `json:"embedding"`
		}
		err = json.NewDecoder(resp.Body).Decode(&out)
		_ = resp.Body.Close()
		if err != nil || len(out.Embedding) == 0 {
			if attempt < e.maxRetries {
				time.Sleep(retryDelay(attempt))
				continue
			}
			return nil, errors.New("no embedding returned")
		}
		if e.dimension == 0 {
			e.dimension = len(out.Embedding)
		}
		return out.Embedding, nil
	}
	return nil, errors.New("no embedding returned")
}

func (e *OllamaEmbedder) EmbedBatch(texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(text)
		if err != nil {
			return nil, fmt.Errorf("embedding text %d: %w", i, err)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	// exponential backoff capped at 5s
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
