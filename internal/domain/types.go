package domain

// Document is a single text file loaded from the documents tree.
// Documents are transient: they exist between loading and chunking,
// only chunks travel further down the pipeline.
type Document struct {
	Source   string // absolute or caller-relative file path
	Filename string
	Text     string
}

// Chunk is an overlapping text window cut out of one document.
// A chunk never spans document boundaries.
type Chunk struct {
	Source string `json:"source"`
	Index  int    `json:"index"`
	Text   string `json:"text"`
}

// SearchResult is a retrieved chunk with its similarity score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Chat message roles accepted from callers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of a caller-supplied conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// FileReference is a file snippet attached to a chat or completion
// request by the caller. It is not derived from the index.
type FileReference struct {
	Path      string `json:"path"`
	Content   string `json:"content,omitempty"`
	Language  string `json:"language,omitempty"`
	StartLine int    `json:"start_line,omitempty"`
	EndLine   int    `json:"end_line,omitempty"`
}
