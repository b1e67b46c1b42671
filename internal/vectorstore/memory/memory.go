package memory

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/siddarthal/AiHackathon/internal/domain"
	"github.com/siddarthal/AiHackathon/internal/vectorstore"
)

const (
	manifestFile = "manifest.json"
	vectorsFile  = "vectors.gob"
	chunksFile   = "chunks.json"
)

// Store is an in-memory vector store using brute-force cosine similarity,
// with whole-directory persistence. Vectors are expected L2-normalized so
// similarity reduces to a dot product.
type Store struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
	chunks    []domain.Chunk
}

func NewStore() *Store { return &Store{} }

func (s *Store) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	s.chunks = nil
	return nil
}

func (s *Store) Upsert(chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return fmt.Errorf("vector dimension mismatch (got %d want %d)", len(v), s.dimension)
		}
	}
	s.chunks = append(s.chunks, chunks...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

func (s *Store) Search(vector []float64, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("query dimension mismatch (got %d want %d)", len(vector), s.dimension)
	}
	if topK <= 0 {
		topK = 5
	}
	scores := make([]float64, len(s.vectors))
	for i := range s.vectors {
		scores[i] = dot(s.vectors[i], vector)
	}
	idxs := argsortDesc(scores)
	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.SearchResult, 0, topK)
	for i := 0; i < topK; i++ {
		j := idxs[i]
		results = append(results, domain.SearchResult{Chunk: s.chunks[j], Score: scores[j]})
	}
	return results, nil
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	s.chunks = nil
	return nil
}

// Save writes manifest, vectors and chunk metadata into dir. Each file is
// written to a temp name and renamed so a crashed save never leaves a
// half-written file behind a valid name.
func (s *Store) Save(dir string, manifest vectorstore.Manifest) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating index dir %s: %w", dir, err)
	}
	manifest.Dimension = s.dimension
	manifest.Chunks = len(s.chunks)

	if err := writeAtomic(filepath.Join(dir, vectorsFile), func(f *os.File) error {
		return gob.NewEncoder(f).Encode(s.vectors)
	}); err != nil {
		return fmt.Errorf("writing vectors: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, chunksFile), func(f *os.File) error {
		return json.NewEncoder(f).Encode(s.chunks)
	}); err != nil {
		return fmt.Errorf("writing chunks: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, manifestFile), func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(manifest)
	}); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// Load replaces the store contents from a directory written by Save.
// expect carries the current embedder identity; a manifest written by a
// different embedder or model makes the directory unusable.
func (s *Store) Load(dir string, expect vectorstore.Manifest) (vectorstore.Manifest, error) {
	var manifest vectorstore.Manifest
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		return manifest, fmt.Errorf("%w: %s", domain.ErrIndexNotFound, dir)
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return manifest, fmt.Errorf("%w: bad manifest: %v", domain.ErrIndexNotFound, err)
	}
	if manifest.Embedder != expect.Embedder || manifest.Model != expect.Model {
		return manifest, fmt.Errorf("%w: built with %s/%s, current embedder is %s/%s",
			domain.ErrIndexNotFound, manifest.Embedder, manifest.Model, expect.Embedder, expect.Model)
	}
	if manifest.Dimension <= 0 {
		return manifest, fmt.Errorf("%w: bad manifest dimension", domain.ErrIndexNotFound)
	}

	vf, err := os.Open(filepath.Join(dir, vectorsFile))
	if err != nil {
		return manifest, fmt.Errorf("%w: %v", domain.ErrIndexNotFound, err)
	}
	defer vf.Close()
	var vectors [][]float64
	if err := gob.NewDecoder(vf).Decode(&vectors); err != nil {
		return manifest, fmt.Errorf("%w: bad vectors: %v", domain.ErrIndexNotFound, err)
	}

	cdata, err := os.ReadFile(filepath.Join(dir, chunksFile))
	if err != nil {
		return manifest, fmt.Errorf("%w: %v", domain.ErrIndexNotFound, err)
	}
	var chunks []domain.Chunk
	if err := json.Unmarshal(cdata, &chunks); err != nil {
		return manifest, fmt.Errorf("%w: bad chunks: %v", domain.ErrIndexNotFound, err)
	}
	if len(chunks) != len(vectors) {
		return manifest, fmt.Errorf("%w: %d chunks but %d vectors", domain.ErrIndexNotFound, len(chunks), len(vectors))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = manifest.Dimension
	s.vectors = vectors
	s.chunks = chunks
	return manifest, nil
}

func writeAtomic(path string, write func(*os.File) error) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func argsortDesc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	quicksort(idxs, vals, 0, len(idxs)-1)
	return idxs
}

func quicksort(idxs []int, vals []float64, lo, hi int) {
	if lo >= hi {
		return
	}
	i, j := lo, hi
	pivot := vals[idxs[(lo+hi)/2]]
	for i <= j {
		for vals[idxs[i]] > pivot { // desc order
			i++
		}
		for vals[idxs[j]] < pivot {
			j--
		}
		if i <= j {
			idxs[i], idxs[j] = idxs[j], idxs[i]
			i++
			j--
		}
	}
	if lo < j {
		quicksort(idxs, vals, lo, j)
	}
	if i < hi {
		quicksort(idxs, vals, i, hi)
	}
}
