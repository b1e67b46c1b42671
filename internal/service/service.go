package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/siddarthal/AiHackathon/internal/backend"
	"github.com/siddarthal/AiHackathon/internal/chunker"
	"github.com/siddarthal/AiHackathon/internal/domain"
	"github.com/siddarthal/AiHackathon/internal/embedding"
	"github.com/siddarthal/AiHackathon/internal/filecontext"
	"github.com/siddarthal/AiHackathon/internal/loader"
	"github.com/siddarthal/AiHackathon/internal/summarizer"
	"github.com/siddarthal/AiHackathon/internal/vectorstore"
)

// State reports where the service is in its index lifecycle.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateReady         State = "ready"
	StateRebuilding    State = "rebuilding"
)

const answerSnippetLimit = 400

// Config carries the tunables the service needs beyond its collaborators.
type Config struct {
	IndexDir string
	TopK     int

	ChatMaxTokens         int
	ChatTemperature       float64
	CompletionMaxTokens   int
	CompletionTemperature float64

	SummaryMaxSentences int
}

// Factories build a fresh embedder and storage for each (re)build. A
// rebuild must not mutate the snapshot queries are reading, so the service
// never reuses live instances.
type Factories struct {
	Embedder func() (domain.Embedder, error)
	Storage  func() vectorstore.Storage
}

// snapshot is one fully built index. Queries read whichever snapshot was
// current when they started; rebuilds publish a new one wholesale.
type snapshot struct {
	storage  vectorstore.Storage
	embedder domain.Embedder
	files    int
	chunks   int
	digest   string
	builtAt  time.Time
}

// Service owns the retrieval index and fronts the generation backends.
type Service struct {
	cfg       Config
	router    *backend.Router
	chunker   *chunker.WindowChunker
	assembler *filecontext.Assembler
	digest    *summarizer.Digest
	build     Factories

	current    atomic.Pointer[snapshot]
	rebuilding atomic.Bool
}

func New(cfg Config, router *backend.Router, ch *chunker.WindowChunker, assembler *filecontext.Assembler, build Factories) *Service {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.SummaryMaxSentences <= 0 {
		cfg.SummaryMaxSentences = 5
	}
	return &Service{
		cfg:       cfg,
		router:    router,
		chunker:   ch,
		assembler: assembler,
		digest:    summarizer.NewDigest(),
		build:     build,
	}
}

// State derives the lifecycle state. Rebuilding wins over ready so callers
// can tell a warm index apart from one being replaced.
func (s *Service) State() State {
	if s.rebuilding.Load() {
		return StateRebuilding
	}
	if s.current.Load() == nil {
		return StateUninitialized
	}
	return StateReady
}

// IndexStats describes one completed build.
type IndexStats struct {
	Files     int           `json:"files"`
	Chunks    int           `json:"chunks"`
	Dimension int           `json:"dimension"`
	Embedder  string        `json:"embedder"`
	Model     string        `json:"model"`
	Digest    string        `json:"digest"`
	Elapsed   time.Duration `json:"-"`
}

// IndexDirectory builds a complete index from the documents under path and
// atomically swaps it in. Queries running against the previous snapshot are
// unaffected; a failed build leaves the previous snapshot in place.
func (s *Service) IndexDirectory(ctx context.Context, path string) (IndexStats, error) {
	if !s.rebuilding.CompareAndSwap(false, true) {
		return IndexStats{}, errors.New("index rebuild already in progress")
	}
	defer s.rebuilding.Store(false)
	start := time.Now()

	docs, err := loader.Load(path)
	if err != nil {
		return IndexStats{}, err
	}
	chunks, err := s.chunker.ChunkAll(docs)
	if err != nil {
		return IndexStats{}, err
	}
	if len(chunks) == 0 {
		return IndexStats{}, fmt.Errorf("%w: all documents under %s are empty", domain.ErrEmptyCorpus, path)
	}
	if err := ctx.Err(); err != nil {
		return IndexStats{}, err
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}

	embedder, err := s.build.Embedder()
	if err != nil {
		return IndexStats{}, err
	}
	if err := embedder.Prepare(texts); err != nil {
		return IndexStats{}, fmt.Errorf("preparing embedder: %w", err)
	}
	vectors, err := embedder.EmbedBatch(texts)
	if err != nil {
		return IndexStats{}, fmt.Errorf("embedding corpus: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return IndexStats{}, err
	}

	storage := s.build.Storage()
	if err := storage.Init(embedder.Dimension()); err != nil {
		return IndexStats{}, err
	}
	if err := storage.Upsert(chunks, vectors); err != nil {
		return IndexStats{}, err
	}

	manifest := vectorstore.Manifest{
		Embedder:  embedder.Name(),
		Model:     embedder.Model(),
		Dimension: embedder.Dimension(),
		Chunks:    len(chunks),
	}
	if s.cfg.IndexDir != "" {
		if err := storage.Save(s.cfg.IndexDir, manifest); err != nil {
			return IndexStats{}, fmt.Errorf("persisting index: %w", err)
		}
		if persister, ok := embedder.(embedding.ModelPersister); ok {
			if err := persister.SaveModel(s.cfg.IndexDir); err != nil {
				return IndexStats{}, fmt.Errorf("persisting embedder model: %w", err)
			}
		}
	}

	digest := s.digest.DescribeCorpus(docs, s.cfg.SummaryMaxSentences)
	s.current.Store(&snapshot{
		storage:  storage,
		embedder: embedder,
		files:    len(docs),
		chunks:   len(chunks),
		digest:   digest,
		builtAt:  time.Now(),
	})

	stats := IndexStats{
		Files:     len(docs),
		Chunks:    len(chunks),
		Dimension: embedder.Dimension(),
		Embedder:  embedder.Name(),
		Model:     embedder.Model(),
		Digest:    digest,
		Elapsed:   time.Since(start),
	}
	log.Info("index built",
		"files", stats.Files, "chunks", stats.Chunks,
		"embedder", stats.Embedder, "model", stats.Model,
		"elapsed", stats.Elapsed)
	return stats, nil
}

// LoadPersistedIndex restores a previously saved index from dir. It returns
// false (not an error) when no usable index exists there, including the
// case where the persisted index was built by a different embedder.
func (s *Service) LoadPersistedIndex(dir string) (bool, error) {
	embedder, err := s.build.Embedder()
	if err != nil {
		return false, err
	}
	if persister, ok := embedder.(embedding.ModelPersister); ok {
		if err := persister.LoadModel(dir); err != nil {
			log.Debug("no persisted embedder model", "dir", dir, "err", err)
			return false, nil
		}
	}
	storage := s.build.Storage()
	expect := vectorstore.Manifest{
		Embedder:  embedder.Name(),
		Model:     embedder.Model(),
		Dimension: embedder.Dimension(),
	}
	manifest, err := storage.Load(dir, expect)
	if err != nil {
		if errors.Is(err, domain.ErrIndexNotFound) {
			log.Debug("no usable persisted index", "dir", dir, "err", err)
			return false, nil
		}
		return false, err
	}

	s.current.Store(&snapshot{
		storage:  storage,
		embedder: embedder,
		chunks:   manifest.Chunks,
		builtAt:  time.Now(),
	})
	log.Info("persisted index loaded", "dir", dir, "chunks", manifest.Chunks,
		"embedder", manifest.Embedder, "model", manifest.Model)
	return true, nil
}

// Search retrieves the topK most similar chunks without generating an
// answer.
func (s *Service) Search(query string, topK int) ([]domain.SearchResult, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, domain.ErrIndexNotReady
	}
	if topK <= 0 {
		topK = s.cfg.TopK
	}
	vector, err := snap.embedder.Embed(query)
	if err != nil {
		return nil, err
	}
	return snap.storage.Search(vector, topK)
}

// Source points at the indexed text a retrieved answer leaned on.
type Source struct {
	Source  string `json:"source"`
	Snippet string `json:"snippet"`
}

// Answer is a generated response plus the retrieval evidence behind it.
type Answer struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// AnswerQuery retrieves the most relevant chunks for query and asks the
// default backend to answer from them.
func (s *Service) AnswerQuery(ctx context.Context, query string) (Answer, error) {
	results, err := s.Search(query, s.cfg.TopK)
	if err != nil {
		return Answer{}, err
	}

	var contextBlock strings.Builder
	sources := make([]Source, 0, len(results))
	for _, res := range results {
		fmt.Fprintf(&contextBlock, "Source: %s\n%s\n\n", res.Chunk.Source, res.Chunk.Text)
		sources = append(sources, Source{Source: res.Chunk.Source, Snippet: snippet(res.Chunk.Text)})
	}

	content := "Answer the question using only the context below.\n\n" +
		contextBlock.String() + "Question: " + query
	messages := []domain.ChatMessage{{Role: domain.RoleUser, Content: content}}
	opts := backend.GenOptions{MaxTokens: s.cfg.ChatMaxTokens, Temperature: s.cfg.ChatTemperature}
	answer, err := s.router.Default().Chat(ctx, messages, "", opts)
	if err != nil {
		return Answer{}, err
	}
	return Answer{Answer: answer, Sources: sources}, nil
}

// Status describes the service for health and config endpoints.
type Status struct {
	State   State     `json:"state"`
	Files   int       `json:"files"`
	Chunks  int       `json:"chunks"`
	Digest  string    `json:"digest,omitempty"`
	BuiltAt time.Time `json:"built_at,omitzero"`
}

func (s *Service) Status() Status {
	st := Status{State: s.State()}
	if snap := s.current.Load(); snap != nil {
		st.Files = snap.files
		st.Chunks = snap.chunks
		st.Digest = snap.digest
		st.BuiltAt = snap.builtAt
	}
	return st
}

func snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= answerSnippetLimit {
		return text
	}
	return string(runes[:answerSnippetLimit])
}
