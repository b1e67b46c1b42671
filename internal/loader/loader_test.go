package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siddarthal/AiHackathon/internal/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("ShouldLoadOnlyAllowedExtensionsRecursively", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "main.go", "package main")
		writeFile(t, dir, "notes.md", "# notes")
		writeFile(t, dir, "sub/config.yaml", "a: 1")
		writeFile(t, dir, "sub/photo.png", "\x89PNG")
		writeFile(t, dir, "binary.exe", "MZ")

		docs, err := Load(dir)
		require.NoError(t, err)
		require.Len(t, docs, 3)

		names := map[string]bool{}
		for _, d := range docs {
			names[d.Filename] = true
			assert.NotEmpty(t, d.Text)
			assert.NotEmpty(t, d.Source)
		}
		assert.True(t, names["main.go"])
		assert.True(t, names["notes.md"])
		assert.True(t, names["config.yaml"])
	})

	t.Run("ShouldFailWhenRootDoesNotExist", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing"))
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("ShouldFailWhenRootIsAFile", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "only.txt", "hello")
		_, err := Load(path)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("ShouldFailWithEmptyCorpusWhenNothingEligible", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "image.jpg", "nope")
		_, err := Load(dir)
		require.ErrorIs(t, err, domain.ErrEmptyCorpus)
	})

	t.Run("ShouldSkipUnreadableFilesWithoutFailing", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("permission checks do not apply to root")
		}
		dir := t.TempDir()
		writeFile(t, dir, "ok.txt", "fine")
		locked := writeFile(t, dir, "locked.txt", "secret")
		require.NoError(t, os.Chmod(locked, 0o000))
		t.Cleanup(func() { _ = os.Chmod(locked, 0o644) })

		docs, err := Load(dir)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "ok.txt", docs[0].Filename)
	})
}

func TestLoadErrorIdentity(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.True(t, errors.Is(err, domain.ErrNotFound))
	require.False(t, errors.Is(err, domain.ErrEmptyCorpus))
}
