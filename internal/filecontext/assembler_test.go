package filecontext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/siddarthal/AiHackathon/internal/domain"
)

func TestAssembler(t *testing.T) {
	t.Run("ShouldReturnEmptyBlockForNoFiles", func(t *testing.T) {
		assert.Empty(t, NewAssembler(4000).Assemble(nil))
	})

	t.Run("ShouldRenderHeaderWithLanguageAndLines", func(t *testing.T) {
		block := NewAssembler(4000).Assemble([]domain.FileReference{{
			Path:      "src/app.py",
			Content:   "print('hi')",
			Language:  "python",
			StartLine: 10,
			EndLine:   12,
		}})
		assert.Contains(t, block, "src/app.py [python] (lines 10-12)")
		assert.Contains(t, block, "print('hi')")
	})

	t.Run("ShouldOmitOptionalHeaderParts", func(t *testing.T) {
		block := NewAssembler(4000).Assemble([]domain.FileReference{{
			Path:    "main.go",
			Content: "package main",
		}})
		assert.True(t, strings.HasPrefix(block, "main.go\n```"))
	})

	t.Run("ShouldSkipEmptyFilesWithoutConsumingBudget", func(t *testing.T) {
		a := NewAssembler(4000)
		block := a.Assemble([]domain.FileReference{
			{Path: "empty.txt"},
			{Path: "full.txt", Content: "content here"},
		})
		assert.NotContains(t, block, "empty.txt")
		assert.Contains(t, block, "full.txt")
	})

	t.Run("ShouldNeverExceedGlobalBudgetPlusHeaders", func(t *testing.T) {
		a := NewAssembler(4000)
		big := strings.Repeat("x", 10000)
		files := []domain.FileReference{
			{Path: "a.txt", Content: big},
			{Path: "b.txt", Content: big},
			{Path: "c.txt", Content: big},
		}
		block := a.Assemble(files)
		// per-block fixed overhead: header line + fences + separators
		overhead := len(files) * 32
		assert.LessOrEqual(t, len(block), 4000+overhead)
	})

	t.Run("ShouldTruncateWithinPerFileBudget", func(t *testing.T) {
		a := NewAssembler(1000)
		files := []domain.FileReference{
			{Path: "a.txt", Content: strings.Repeat("a", 5000)},
			{Path: "b.txt", Content: strings.Repeat("b", 5000)},
		}
		block := a.Assemble(files)
		for _, part := range strings.Split(block, "\n\n") {
			body := strings.TrimSuffix(strings.SplitN(part, "```\n", 2)[1], "\n```")
			assert.LessOrEqual(t, len([]rune(body)), 500)
			assert.True(t, strings.HasSuffix(body, "..."))
		}
	})

	t.Run("ShouldGuaranteeMinimumPerFileShare", func(t *testing.T) {
		a := NewAssembler(1000)
		files := make([]domain.FileReference, 10)
		for i := range files {
			files[i] = domain.FileReference{Path: "f.txt", Content: strings.Repeat("y", 400)}
		}
		block := a.Assemble(files)
		// 1000/10 = 100 < 200 floor, so each snippet may carry up to 200 chars
		for _, part := range strings.Split(block, "\n\n") {
			body := strings.TrimSuffix(strings.SplitN(part, "```\n", 2)[1], "\n```")
			assert.LessOrEqual(t, len([]rune(body)), 200)
		}
	})

	t.Run("ShouldKeepShortContentVerbatim", func(t *testing.T) {
		block := NewAssembler(4000).Assemble([]domain.FileReference{{Path: "s.txt", Content: "short"}})
		assert.Contains(t, block, "short")
		assert.NotContains(t, block, "...")
	})
}
