package qdrant

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/siddarthal/AiHackathon/internal/domain"
	"github.com/siddarthal/AiHackathon/internal/vectorstore"
)

// Store is a minimal REST client to Qdrant. It assumes cosine distance and
// creates the collection if missing. Qdrant is durable server-side, so Save
// has nothing to write and Load only verifies the collection is usable for
// the current embedder.
type Store struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewStore(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

func (s *Store) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.dimension = dimension
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	// Qdrant returns 200 OK if the collection already exists with the same schema.
	return s.putJSON(fmt.Sprintf("%s/collections/%s", s.url, s.collection), body)
}

func (s *Store) Upsert(chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	points := make([]map[string]any, len(chunks))
	for i := range chunks {
		points[i] = map[string]any{
			"id":     fmt.Sprintf("%s:%d", chunks[i].Source, chunks[i].Index),
			"vector": vectors[i],
			"payload": map[string]any{
				"source": chunks[i].Source,
				"index":  chunks[i].Index,
				"text":   chunks[i].Text,
			},
		}
	}
	body := map[string]any{"points": points}
	return s.putJSON(fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection), body)
}

func (s *Store) Search(vector []float64, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.postJSON(fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection), req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		chunk := domain.Chunk{}
		if v, ok := r.Payload["source"].(string); ok {
			chunk.Source = v
		}
		if v, ok := r.Payload["index"].(float64); ok {
			chunk.Index = int(v)
		}
		if v, ok := r.Payload["text"].(string); ok {
			chunk.Text = v
		}
		results = append(results, domain.SearchResult{Chunk: chunk, Score: r.Score})
	}
	return results, nil
}

func (s *Store) Count() int {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/count", s.url, s.collection)
	if err := s.postJSON(url, map[string]any{"exact": true}, &resp); err != nil {
		return 0
	}
	return resp.Result.Count
}

func (s *Store) Clear() error {
	// Best-effort: drop collection
	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/collections/%s", s.url, s.collection), nil)
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	_, _ = s.client.Do(req)
	return nil
}

// Save is a no-op: the server owns durability.
func (s *Store) Save(_ string, _ vectorstore.Manifest) error { return nil }

// Load verifies the collection exists with a dimension the current embedder
// can query. Anything else is reported as a missing index so the caller
// rebuilds.
func (s *Store) Load(_ string, expect vectorstore.Manifest) (vectorstore.Manifest, error) {
	var resp struct {
		Result struct {
			Config struct {
				Params struct {
					Vectors struct {
						Size int `json:"size"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}
	if err := s.getJSON(fmt.Sprintf("%s/collections/%s", s.url, s.collection), &resp); err != nil {
		return vectorstore.Manifest{}, fmt.Errorf("%w: %v", domain.ErrIndexNotFound, err)
	}
	size := resp.Result.Config.Params.Vectors.Size
	if size <= 0 {
		return vectorstore.Manifest{}, fmt.Errorf("%w: collection %s has no vector schema", domain.ErrIndexNotFound, s.collection)
	}
	if expect.Dimension > 0 && expect.Dimension != size {
		return vectorstore.Manifest{}, fmt.Errorf("%w: collection dimension %d does not match embedder dimension %d",
			domain.ErrIndexNotFound, size, expect.Dimension)
	}
	s.dimension = size
	return vectorstore.Manifest{
		Embedder:  expect.Embedder,
		Model:     expect.Model,
		Dimension: size,
		Chunks:    s.Count(),
	}, nil
}

func (s *Store) putJSON(url string, body any) error {
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPut, url, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant PUT %s failed: %s", url, resp.Status)
	}
	return nil
}

func (s *Store) postJSON(url string, body any, out any) error {
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (s *Store) getJSON(url string, out any) error {
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant GET %s failed: %s", url, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
