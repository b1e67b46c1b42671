package domain

import "errors"

var (
	// ErrNotFound reports a documents path that does not exist or is not a directory.
	ErrNotFound = errors.New("documents path not found")

	// ErrEmptyCorpus reports that loading or chunking produced nothing to index.
	ErrEmptyCorpus = errors.New("no documents to index")

	// ErrEmbeddingUnavailable is fatal: neither the local nor the hosted
	// embedding provider could be initialized.
	ErrEmbeddingUnavailable = errors.New("no embedding provider available")

	// ErrIndexNotFound reports absent or structurally invalid persisted index
	// state. Callers recover by rebuilding, not by crashing.
	ErrIndexNotFound = errors.New("persisted index not found")

	// ErrIndexNotReady reports that no index has been built or loaded yet.
	// Distinct from a query failure: the caller asked too early.
	ErrIndexNotReady = errors.New("index not ready")
)
