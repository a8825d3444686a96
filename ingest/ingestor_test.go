package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/repolens/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtureAcquire returns an AcquireFunc that writes the given files
// into the working area instead of cloning.
func fixtureAcquire(files map[string]string) AcquireFunc {
	return func(ctx context.Context, repoURL, dir string) error {
		for name, content := range files {
			path := filepath.Join(dir, filepath.FromSlash(name))
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return err
			}
		}
		return nil
	}
}

func TestIngest_InvalidURLNoAcquisition(t *testing.T) {
	acquired := false
	ing := NewIngestor(WithAcquireFunc(func(ctx context.Context, repoURL, dir string) error {
		acquired = true
		return nil
	}))

	_, err := ing.Ingest(context.Background(), "ftp://bad")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.False(t, acquired, "validation failure must not attempt acquisition")
}

func TestIngest_ChunksEligibleFiles(t *testing.T) {
	files := map[string]string{
		"README.md":        strings.Repeat("readme content ", 100), // 1500 runes -> 2 chunks
		"main.go":          "package main\n\nfunc main() {}\n",
		"docs/guide.md":    "a short guide",
		"logo.png":         "\x89PNG\x00binary",
		".git/config":      "[core]\n",
		"vendor/dep/a.go":  "package dep",
		"Makefile":         "all:\n\tgo build ./...\n",
		"assets/blob.data": "x",
	}

	ing := NewIngestor(WithAcquireFunc(fixtureAcquire(files)))
	chunks, err := ing.Ingest(context.Background(), "https://github.com/acme/widgets")
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	paths := map[string]bool{}
	for i, c := range chunks {
		paths[c.SourcePath] = true
		assert.Equal(t, i, c.SequenceIndex, "sequence indices must be dense and ordered")
		assert.NotEmpty(t, c.Text)
	}

	assert.True(t, paths["README.md"])
	assert.True(t, paths["main.go"])
	assert.True(t, paths["docs/guide.md"])
	assert.True(t, paths["Makefile"])
	assert.False(t, paths["logo.png"], "binary files are skipped")
	assert.False(t, paths[".git/config"], "excluded directories are skipped")
	assert.False(t, paths["vendor/dep/a.go"], "vendored code is skipped")
	assert.False(t, paths["assets/blob.data"], "unknown extensions are skipped")
}

func TestIngest_SameFileChunksContiguous(t *testing.T) {
	files := map[string]string{
		"README.md": strings.Repeat("0123456789", 300), // 3000 runes
	}

	ing := NewIngestor(WithAcquireFunc(fixtureAcquire(files)))
	chunks, err := ing.Ingest(context.Background(), "https://github.com/acme/widgets")
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		require.Equal(t, chunks[i-1].SourcePath, chunks[i].SourcePath)
		assert.Greater(t, chunks[i].ByteOffset, chunks[i-1].ByteOffset,
			"same-file chunks must be ordered by byte offset")
	}
}

func TestIngest_EmptyRepository(t *testing.T) {
	ing := NewIngestor(WithAcquireFunc(fixtureAcquire(nil)))
	chunks, err := ing.Ingest(context.Background(), "https://github.com/acme/empty")
	require.NoError(t, err, "an empty repository is not an error")
	assert.Empty(t, chunks)
}

func TestIngest_AcquisitionFailure(t *testing.T) {
	ing := NewIngestor(WithAcquireFunc(func(ctx context.Context, repoURL, dir string) error {
		return errors.New("authentication required")
	}))

	_, err := ing.Ingest(context.Background(), "https://github.com/acme/private")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrAcquisition)
}

func TestIngest_WorkingAreaReleased(t *testing.T) {
	var workDir string
	ing := NewIngestor(WithAcquireFunc(func(ctx context.Context, repoURL, dir string) error {
		workDir = dir
		return os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello"), 0o644)
	}))

	_, err := ing.Ingest(context.Background(), "https://github.com/acme/widgets")
	require.NoError(t, err)
	require.NotEmpty(t, workDir)

	_, statErr := os.Stat(workDir)
	assert.True(t, os.IsNotExist(statErr), "working area must be deleted after ingestion")
}

func TestIngest_WorkingAreaReleasedOnFailure(t *testing.T) {
	var workDir string
	ing := NewIngestor(WithAcquireFunc(func(ctx context.Context, repoURL, dir string) error {
		workDir = dir
		return errors.New("network down")
	}))

	_, err := ing.Ingest(context.Background(), "https://github.com/acme/widgets")
	require.Error(t, err)

	_, statErr := os.Stat(workDir)
	assert.True(t, os.IsNotExist(statErr), "working area must be deleted on failure too")
}

func TestIngest_CustomChunkSize(t *testing.T) {
	files := map[string]string{"README.md": strings.Repeat("a", 250)}
	ing := NewIngestor(
		WithAcquireFunc(fixtureAcquire(files)),
		WithChunkSize(100),
		WithChunkOverlap(20),
	)

	chunks, err := ing.Ingest(context.Background(), "https://github.com/acme/widgets")
	require.NoError(t, err)
	require.Len(t, chunks, 3) // starts 0, 80, 160 cover 250 runes
	assert.Len(t, chunks[0].Text, 100)
}

func TestEligibleFile(t *testing.T) {
	assert.True(t, eligibleFile("README.md"))
	assert.True(t, eligibleFile("src/app.py"))
	assert.True(t, eligibleFile("LICENSE"))
	assert.True(t, eligibleFile("Dockerfile"))
	assert.False(t, eligibleFile("image.jpg"))
	assert.False(t, eligibleFile(".env"))
	assert.False(t, eligibleFile("bin/tool.exe"))
}

func TestLooksBinary(t *testing.T) {
	assert.True(t, looksBinary([]byte("ab\x00cd")))
	assert.False(t, looksBinary([]byte("plain text")))
	assert.False(t, looksBinary(nil))
}
