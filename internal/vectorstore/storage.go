package vectorstore

import "github.com/siddarthal/AiHackathon/internal/domain"

// Manifest identifies the embedder an index was built with. A persisted
// index is only valid for the exact same embedding configuration, so the
// manifest is checked on load and a mismatch is treated as "no usable
// index" rather than a crash.
type Manifest struct {
	Embedder  string `json:"embedder"`
	Model     string `json:"model"`
	Dimension int    `json:"dimension"`
	Chunks    int    `json:"chunks"`
}

// Storage stores chunk vectors and supports top-k similarity search.
// Save and Load move the full vector set plus chunk metadata to and from a
// directory; Load fails with domain.ErrIndexNotFound when the directory is
// absent or structurally invalid, or when the manifest does not match the
// expected embedder identity.
type Storage interface {
	Init(dimension int) error
	Upsert(chunks []domain.Chunk, vectors [][]float64) error
	Search(vector []float64, topK int) ([]domain.SearchResult, error)
	Count() int
	Clear() error
	Save(dir string, manifest Manifest) error
	Load(dir string, expect Manifest) (Manifest, error)
}
