package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siddarthal/AiHackathon/internal/backend"
	"github.com/siddarthal/AiHackathon/internal/chunker"
	"github.com/siddarthal/AiHackathon/internal/domain"
	"github.com/siddarthal/AiHackathon/internal/embedding"
	"github.com/siddarthal/AiHackathon/internal/filecontext"
	"github.com/siddarthal/AiHackathon/internal/vectorstore"
	"github.com/siddarthal/AiHackathon/internal/vectorstore/memory"
)

func newTestService(t *testing.T, indexDir, backendURL string) *Service {
	t.Helper()
	ch, err := chunker.NewWindowChunker(200, 20)
	require.NoError(t, err)
	router := backend.NewRouter(backend.Config{
		Default: "local",
		Local:   backend.EndpointConfig{URL: backendURL, Model: "test-model"},
	})
	cfg := Config{
		IndexDir:            indexDir,
		TopK:                3,
		ChatMaxTokens:       512,
		ChatTemperature:     0.3,
		CompletionMaxTokens: 128,
	}
	return New(cfg, router, ch, filecontext.NewAssembler(4000), Factories{
		Embedder: func() (domain.Embedder, error) { return embedding.NewTFIDFEmbedder(), nil },
		Storage:  func() vectorstore.Storage { return memory.NewStore() },
	})
}

func writeDocs(t *testing.T, dir string, docs map[string]string) {
	t.Helper()
	for name, text := range docs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644))
	}
}

func TestServiceLifecycle(t *testing.T) {
	t.Run("Should start uninitialized and refuse queries", func(t *testing.T) {
		svc := newTestService(t, "", "http://localhost:0")
		assert.Equal(t, StateUninitialized, svc.State())

		_, err := svc.Search("anything", 3)
		assert.ErrorIs(t, err, domain.ErrIndexNotReady)

		_, err = svc.AnswerQuery(context.Background(), "anything")
		assert.ErrorIs(t, err, domain.ErrIndexNotReady)
	})

	t.Run("Should become ready after indexing and retrieve the right chunk", func(t *testing.T) {
		docsDir := t.TempDir()
		writeDocs(t, docsDir, map[string]string{
			"db.md":   "The database connection pool caps idle connections at ten.",
			"http.md": "The http server listens on port eight thousand by default.",
		})
		svc := newTestService(t, "", "http://localhost:0")

		stats, err := svc.IndexDirectory(context.Background(), docsDir)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Files)
		assert.Equal(t, "tfidf", stats.Embedder)
		assert.Positive(t, stats.Chunks)
		assert.Equal(t, StateReady, svc.State())

		results, err := svc.Search("database connection pool", 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "db.md", filepath.Base(results[0].Chunk.Source))
	})

	t.Run("Should keep serving the old snapshot when a rebuild fails", func(t *testing.T) {
		docsDir := t.TempDir()
		writeDocs(t, docsDir, map[string]string{"a.md": "alpha content here."})
		svc := newTestService(t, "", "http://localhost:0")

		_, err := svc.IndexDirectory(context.Background(), docsDir)
		require.NoError(t, err)

		_, err = svc.IndexDirectory(context.Background(), filepath.Join(docsDir, "missing"))
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, StateReady, svc.State())

		_, err = svc.Search("alpha", 1)
		assert.NoError(t, err)
	})
}

func TestServicePersistence(t *testing.T) {
	t.Run("Should reload a persisted index", func(t *testing.T) {
		docsDir := t.TempDir()
		indexDir := filepath.Join(t.TempDir(), "index")
		writeDocs(t, docsDir, map[string]string{
			"notes.md": "Retrieval uses cosine similarity over normalized vectors.",
		})

		first := newTestService(t, indexDir, "http://localhost:0")
		_, err := first.IndexDirectory(context.Background(), docsDir)
		require.NoError(t, err)

		second := newTestService(t, indexDir, "http://localhost:0")
		ok, err := second.LoadPersistedIndex(indexDir)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, StateReady, second.State())

		results, err := second.Search("cosine similarity", 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Contains(t, results[0].Chunk.Text, "cosine similarity")
	})

	t.Run("Should report absent index as false without error", func(t *testing.T) {
		svc := newTestService(t, "", "http://localhost:0")
		ok, err := svc.LoadPersistedIndex(filepath.Join(t.TempDir(), "nowhere"))
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestAnswerQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"the pool caps at ten"}`))
	}))
	defer srv.Close()

	docsDir := t.TempDir()
	writeDocs(t, docsDir, map[string]string{
		"db.md": "The database connection pool caps idle connections at ten.",
	})
	svc := newTestService(t, "", srv.URL)
	_, err := svc.IndexDirectory(context.Background(), docsDir)
	require.NoError(t, err)

	answer, err := svc.AnswerQuery(context.Background(), "how many idle connections does the pool keep")
	require.NoError(t, err)
	assert.Equal(t, "the pool caps at ten", answer.Answer)
	require.NotEmpty(t, answer.Sources)
	assert.Equal(t, "db.md", filepath.Base(answer.Sources[0].Source))
	assert.LessOrEqual(t, len([]rune(answer.Sources[0].Snippet)), 400)
}

func TestChatAndComplete(t *testing.T) {
	t.Run("Should route chat through the resolved backend", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"response":"hello from local"}`))
		}))
		defer srv.Close()

		svc := newTestService(t, "", srv.URL)
		out, err := svc.Chat(context.Background(), ChatInput{
			Messages: []domain.ChatMessage{{Role: domain.RoleUser, Content: "hi"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "hello from local", out.Answer)
		assert.Equal(t, "local", out.BackendUsed)
		assert.Equal(t, "test-model", out.ModelUsed)
	})

	t.Run("Should reject empty chat input", func(t *testing.T) {
		svc := newTestService(t, "", "http://localhost:0")
		_, err := svc.Chat(context.Background(), ChatInput{})
		assert.Error(t, err)
	})

	t.Run("Should reject empty completion prefix", func(t *testing.T) {
		svc := newTestService(t, "", "http://localhost:0")
		_, err := svc.Complete(context.Background(), CompleteInput{})
		assert.Error(t, err)
	})
}

func TestClampTokens(t *testing.T) {
	cases := []struct {
		name                              string
		requested, fallback, floor, limit int
		want                              int
	}{
		{"zero takes the fallback", 0, 512, 64, 1024, 512},
		{"below floor rises to floor", 8, 512, 64, 1024, 64},
		{"above ceiling drops to ceiling", 4096, 512, 64, 1024, 1024},
		{"in range passes through", 256, 512, 64, 1024, 256},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, clampTokens(tc.requested, tc.fallback, tc.floor, tc.limit))
		})
	}
}
