package memory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siddarthal/AiHackathon/internal/domain"
	"github.com/siddarthal/AiHackathon/internal/vectorstore"
)

func seededStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	require.NoError(t, s.Init(3))
	chunks := []domain.Chunk{
		{Source: "a.go", Index: 0, Text: "alpha"},
		{Source: "b.go", Index: 0, Text: "bravo"},
		{Source: "c.go", Index: 0, Text: "charlie"},
	}
	vectors := [][]float64{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	require.NoError(t, s.Upsert(chunks, vectors))
	return s
}

func TestStore(t *testing.T) {
	t.Run("ShouldRejectInvalidDimension", func(t *testing.T) {
		require.Error(t, NewStore().Init(0))
	})

	t.Run("ShouldReturnTopResultForMatchingVector", func(t *testing.T) {
		s := seededStore(t)
		res, err := s.Search([]float64{0, 1, 0}, 1)
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, "bravo", res[0].Chunk.Text)
		assert.InDelta(t, 1.0, res[0].Score, 1e-9)
	})

	t.Run("ShouldOrderResultsByDescendingScore", func(t *testing.T) {
		s := seededStore(t)
		res, err := s.Search([]float64{0.9, 0.4, 0.1}, 3)
		require.NoError(t, err)
		require.Len(t, res, 3)
		assert.Equal(t, "alpha", res[0].Chunk.Text)
		assert.True(t, res[0].Score >= res[1].Score && res[1].Score >= res[2].Score)
	})

	t.Run("ShouldClampTopKToAvailableEntries", func(t *testing.T) {
		s := seededStore(t)
		res, err := s.Search([]float64{1, 0, 0}, 10)
		require.NoError(t, err)
		assert.Len(t, res, 3)
	})

	t.Run("ShouldDefaultTopKWhenNonPositive", func(t *testing.T) {
		s := seededStore(t)
		res, err := s.Search([]float64{1, 0, 0}, 0)
		require.NoError(t, err)
		assert.Len(t, res, 3)
	})

	t.Run("ShouldRejectMismatchedUpsert", func(t *testing.T) {
		s := NewStore()
		require.NoError(t, s.Init(2))
		err := s.Upsert([]domain.Chunk{{Text: "x"}}, [][]float64{{1, 0, 0}})
		require.Error(t, err)
	})

	t.Run("ShouldRejectMismatchedQueryDimension", func(t *testing.T) {
		s := seededStore(t)
		_, err := s.Search([]float64{1, 0}, 1)
		require.Error(t, err)
	})

	t.Run("ShouldCountAndClear", func(t *testing.T) {
		s := seededStore(t)
		assert.Equal(t, 3, s.Count())
		require.NoError(t, s.Clear())
		assert.Equal(t, 0, s.Count())
	})
}

func TestStorePersistence(t *testing.T) {
	manifest := vectorstore.Manifest{Embedder: "tfidf", Model: "tfidf-corpus"}

	t.Run("ShouldRoundTripSearchResults", func(t *testing.T) {
		dir := t.TempDir()
		s := seededStore(t)
		require.NoError(t, s.Save(dir, manifest))

		restored := NewStore()
		got, err := restored.Load(dir, manifest)
		require.NoError(t, err)
		assert.Equal(t, 3, got.Dimension)
		assert.Equal(t, 3, got.Chunks)

		query := []float64{0.2, 0.9, 0.1}
		want, err := s.Search(query, 3)
		require.NoError(t, err)
		have, err := restored.Search(query, 3)
		require.NoError(t, err)
		assert.Equal(t, want, have)
	})

	t.Run("ShouldFailToLoadMissingDirectory", func(t *testing.T) {
		_, err := NewStore().Load(filepath.Join(t.TempDir(), "absent"), manifest)
		require.ErrorIs(t, err, domain.ErrIndexNotFound)
	})

	t.Run("ShouldFailToLoadWhenEmbedderIdentityDiffers", func(t *testing.T) {
		dir := t.TempDir()
		s := seededStore(t)
		require.NoError(t, s.Save(dir, manifest))
		_, err := NewStore().Load(dir, vectorstore.Manifest{Embedder: "openai", Model: "text-embedding-3-small"})
		require.ErrorIs(t, err, domain.ErrIndexNotFound)
	})

	t.Run("ShouldFailToLoadCorruptVectors", func(t *testing.T) {
		dir := t.TempDir()
		s := seededStore(t)
		require.NoError(t, s.Save(dir, manifest))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "vectors.gob"), []byte("garbage"), 0o644))
		_, err := NewStore().Load(dir, manifest)
		require.ErrorIs(t, err, domain.ErrIndexNotFound)
	})
}
