package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siddarthal/AiHackathon/internal/backend"
	"github.com/siddarthal/AiHackathon/internal/chunker"
	"github.com/siddarthal/AiHackathon/internal/config"
	"github.com/siddarthal/AiHackathon/internal/domain"
	"github.com/siddarthal/AiHackathon/internal/embedding"
	"github.com/siddarthal/AiHackathon/internal/filecontext"
	"github.com/siddarthal/AiHackathon/internal/service"
	"github.com/siddarthal/AiHackathon/internal/vectorstore"
	"github.com/siddarthal/AiHackathon/internal/vectorstore/memory"
)

func newTestServer(t *testing.T, backendURL string) (*Server, *service.Service) {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	cfg.Backends.Local.URL = backendURL

	ch, err := chunker.NewWindowChunker(200, 20)
	require.NoError(t, err)
	router := backend.NewRouter(backend.Config{
		Default: "local",
		Local:   backend.EndpointConfig{URL: backendURL, Model: "test-model"},
	})
	svc := service.New(service.Config{
		TopK:                3,
		ChatMaxTokens:       512,
		ChatTemperature:     0.3,
		CompletionMaxTokens: 128,
	}, router, ch, filecontext.NewAssembler(4000), service.Factories{
		Embedder: func() (domain.Embedder, error) { return embedding.NewTFIDFEmbedder(), nil },
		Storage:  func() vectorstore.Storage { return memory.NewStore() },
	})
	return New(cfg, svc), svc
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndConfig(t *testing.T) {
	srv, _ := newTestServer(t, "http://localhost:0")

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var health struct {
		Status string `json:"status"`
		Index  struct {
			State string `json:"state"`
		} `json:"index"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "uninitialized", health.Index.State)

	rec = doJSON(t, srv.Handler(), http.MethodGet, "/config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
	assert.Contains(t, rec.Body.String(), "api_key_env")
}

func TestAskEndpoint(t *testing.T) {
	t.Run("Should answer 503 before the index is ready", func(t *testing.T) {
		srv, _ := newTestServer(t, "http://localhost:0")
		rec := doJSON(t, srv.Handler(), http.MethodPost, "/ask", `{"query":"anything"}`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("Should answer 400 on a missing query", func(t *testing.T) {
		srv, _ := newTestServer(t, "http://localhost:0")
		rec := doJSON(t, srv.Handler(), http.MethodPost, "/ask", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Should answer with sources once indexed", func(t *testing.T) {
		llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"response":"caps at ten"}`))
		}))
		defer llm.Close()

		srv, svc := newTestServer(t, llm.URL)
		docsDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(docsDir, "db.md"),
			[]byte("The database connection pool caps idle connections at ten."), 0o644))
		_, err := svc.IndexDirectory(context.Background(), docsDir)
		require.NoError(t, err)

		rec := doJSON(t, srv.Handler(), http.MethodPost, "/ask", `{"query":"connection pool size"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		var answer service.Answer
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &answer))
		assert.Equal(t, "caps at ten", answer.Answer)
		assert.NotEmpty(t, answer.Sources)
	})
}

func TestChatEndpoint(t *testing.T) {
	t.Run("Should return the generated answer with backend metadata", func(t *testing.T) {
		llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"response":"hi there"}`))
		}))
		defer llm.Close()

		srv, _ := newTestServer(t, llm.URL)
		rec := doJSON(t, srv.Handler(), http.MethodPost, "/chat",
			`{"messages":[{"role":"user","content":"hello"}]}`)
		require.Equal(t, http.StatusOK, rec.Code)
		var out service.ChatOutput
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		assert.Equal(t, "hi there", out.Answer)
		assert.Equal(t, "local", out.BackendUsed)
		assert.Equal(t, "test-model", out.ModelUsed)
	})

	t.Run("Should answer 400 without messages", func(t *testing.T) {
		srv, _ := newTestServer(t, "http://localhost:0")
		rec := doJSON(t, srv.Handler(), http.MethodPost, "/chat", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Should answer 502 when the backend rejects the call", func(t *testing.T) {
		llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model overloaded", http.StatusTooManyRequests)
		}))
		defer llm.Close()

		srv, _ := newTestServer(t, llm.URL)
		rec := doJSON(t, srv.Handler(), http.MethodPost, "/chat",
			`{"messages":[{"role":"user","content":"hello"}]}`)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "model overloaded")
	})
}

func TestCompleteEndpoint(t *testing.T) {
	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"    return a + b"}`))
	}))
	defer llm.Close()

	srv, _ := newTestServer(t, llm.URL)
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/complete", `{"prefix":"def add(a, b):"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var out service.CompleteOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "return a + b", out.Completion)
}

func TestReindexEndpoint(t *testing.T) {
	t.Run("Should index the requested path", func(t *testing.T) {
		srv, _ := newTestServer(t, "http://localhost:0")
		docsDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(docsDir, "a.md"), []byte("some text."), 0o644))

		rec := doJSON(t, srv.Handler(), http.MethodPost, "/reindex", `{"path":"`+docsDir+`"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		var stats service.IndexStats
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
		assert.Equal(t, 1, stats.Files)
	})

	t.Run("Should answer 400 for a missing corpus directory", func(t *testing.T) {
		srv, _ := newTestServer(t, "http://localhost:0")
		rec := doJSON(t, srv.Handler(), http.MethodPost, "/reindex",
			`{"path":"`+filepath.Join(t.TempDir(), "nowhere")+`"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
