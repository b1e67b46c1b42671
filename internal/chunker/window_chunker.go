package chunker

import (
	"fmt"

	"github.com/siddarthal/AiHackathon/internal/domain"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 150
)

// WindowChunker splits documents into fixed-size character windows where
// consecutive windows share an overlap. The stride is size-overlap, so the
// split is deterministic and never crosses a document boundary.
type WindowChunker struct {
	size    int
	overlap int
}

// NewWindowChunker validates the window geometry. An overlap that reaches
// the window size would stall the sliding window, so it is rejected.
func NewWindowChunker(size, overlap int) (*WindowChunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunker: size must be positive, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunker: overlap cannot be negative, got %d", overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunker: overlap %d must be smaller than size %d", overlap, size)
	}
	return &WindowChunker{size: size, overlap: overlap}, nil
}

// Chunk cuts one document into overlapping windows. The last window may be
// shorter than the configured size. Empty documents produce no chunks.
func (c *WindowChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	runes := []rune(document.Text)
	if len(runes) == 0 {
		return nil, nil
	}
	stride := c.size - c.overlap
	var chunks []domain.Chunk
	for start, idx := 0, 0; start < len(runes); start, idx = start+stride, idx+1 {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, domain.Chunk{
			Source: document.Source,
			Index:  idx,
			Text:   string(runes[start:end]),
		})
		if end == len(runes) {
			break
		}
	}
	return chunks, nil
}

// ChunkAll flattens the per-document splits of a whole corpus, preserving
// document order and the in-document chunk order.
func (c *WindowChunker) ChunkAll(documents []domain.Document) ([]domain.Chunk, error) {
	var all []domain.Chunk
	for _, doc := range documents {
		chunks, err := c.Chunk(doc)
		if err != nil {
			return nil, err
		}
		all = append(all, chunks...)
	}
	return all, nil
}
