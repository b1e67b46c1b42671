package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/siddarthal/AiHackathon/internal/domain"
)

// textExtensions is the allow-list of file types worth indexing.
// Everything else in the tree is ignored.
var textExtensions = map[string]struct{}{
	".md": {}, ".txt": {}, ".py": {}, ".json": {}, ".yaml": {}, ".yml": {},
	".java": {}, ".js": {}, ".ts": {}, ".html": {}, ".css": {}, ".c": {},
	".cpp": {}, ".cs": {}, ".go": {}, ".rs": {}, ".gradle": {}, ".xml": {},
	".sh": {}, ".ini": {}, ".cfg": {}, ".csv": {},
}

// Load recursively reads every eligible text file under root into documents.
// A file that cannot be read is logged and skipped; the walk keeps going.
// Returns domain.ErrNotFound when root is not an existing directory and
// domain.ErrEmptyCorpus when no eligible file could be read.
func Load(root string) ([]domain.Document, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, root)
	}

	var docs []domain.Document
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn("skipping unreadable entry", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := textExtensions[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn("failed to read file, skipping", "path", path, "error", err)
			return nil
		}
		docs = append(docs, domain.Document{
			Source:   path,
			Filename: d.Name(),
			Text:     string(data),
		})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walking %s: %w", root, walkErr)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w under %s", domain.ErrEmptyCorpus, root)
	}
	return docs, nil
}
