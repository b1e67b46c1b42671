package domain

// Embedder converts text into a fixed-dimension numeric vector.
// Implementations may require a preparation phase over the corpus.
// Vectors are comparable only between embedders with identical
// name, model and dimension, so the embedder identity is part of the
// identity of any index built from it.
type Embedder interface {
	Name() string
	Model() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(text string) ([]float64, error)
	EmbedBatch(texts []string) ([][]float64, error)
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}
