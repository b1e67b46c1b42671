package filecontext

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/siddarthal/AiHackathon/internal/domain"
)

const (
	// DefaultBudget is the global character budget shared by all files
	// attached to a single request.
	DefaultBudget = 4000

	// minPerFileBudget keeps every non-empty file visible even when many
	// files compete for the global budget.
	minPerFileBudget = 200

	ellipsis = "..."
)

// Assembler renders caller-supplied file references into one bounded text
// block. The global budget is divided across the non-skipped files; each
// file's content is truncated to its share.
type Assembler struct {
	budget int
}

func NewAssembler(budget int) *Assembler {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Assembler{budget: budget}
}

// Assemble builds the context block. Zero files produce an empty block.
// Files with empty content are skipped with a warning and consume no budget.
func (a *Assembler) Assemble(files []domain.FileReference) string {
	if len(files) == 0 {
		return ""
	}
	perFile := a.budget / len(files)
	if perFile < minPerFileBudget {
		perFile = minPerFileBudget
	}
	blocks := make([]string, 0, len(files))
	for _, ref := range files {
		if ref.Content == "" {
			log.Warn("file reference has no content, skipping", "path", ref.Path)
			continue
		}
		snippet := truncate(ref.Content, perFile)
		blocks = append(blocks, header(ref)+"\n```\n"+snippet+"\n```")
	}
	return strings.Join(blocks, "\n\n")
}

func header(ref domain.FileReference) string {
	parts := []string{ref.Path}
	if ref.Language != "" {
		parts = append(parts, fmt.Sprintf("[%s]", ref.Language))
	}
	if ref.StartLine > 0 && ref.EndLine > 0 {
		parts = append(parts, fmt.Sprintf("(lines %d-%d)", ref.StartLine, ref.EndLine))
	}
	return strings.Join(parts, " ")
}

// truncate cuts text to at most limit characters; the ellipsis marker fits
// inside the limit rather than on top of it.
func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	cut := limit - len(ellipsis)
	if cut < 0 {
		cut = 0
	}
	return string(runes[:cut]) + ellipsis
}
