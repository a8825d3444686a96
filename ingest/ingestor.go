// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	git "github.com/go-git/go-git/v5"
	"github.com/poiesic/repolens/core"
)

// AcquireFunc materializes repository content into dir. The default
// implementation performs a shallow git clone; tests inject a local
// fixture copy instead.
type AcquireFunc func(ctx context.Context, repoURL, dir string) error

// Ingestor materializes repository text into an ordered sequence of
// overlapping chunks with provenance.
type Ingestor struct {
	chunkSize    int
	chunkOverlap int
	acquire      AcquireFunc
	logger       *slog.Logger
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithChunkSize sets the chunk length in runes. Default is 1000.
func WithChunkSize(size int) Option {
	return func(ing *Ingestor) {
		if size > 0 {
			ing.chunkSize = size
		}
	}
}

// WithChunkOverlap sets the overlap between consecutive chunks of the
// same file, in runes. Default is 200.
func WithChunkOverlap(overlap int) Option {
	return func(ing *Ingestor) {
		if overlap >= 0 {
			ing.chunkOverlap = overlap
		}
	}
}

// WithAcquireFunc replaces the repository acquisition step.
func WithAcquireFunc(fn AcquireFunc) Option {
	return func(ing *Ingestor) {
		if fn != nil {
			ing.acquire = fn
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ing *Ingestor) {
		if logger != nil {
			ing.logger = logger
		}
	}
}

// NewIngestor creates an ingestor with default settings.
func NewIngestor(opts ...Option) *Ingestor {
	ing := &Ingestor{
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		acquire:      gitAcquire,
		logger:       slog.Default().With("component", "ingestor"),
	}
	for _, opt := range opts {
		opt(ing)
	}
	if ing.chunkOverlap >= ing.chunkSize {
		ing.chunkOverlap = 0
	}
	return ing
}

// Ingest validates the repository URL, materializes the repository
// into a temporary working area and chunks its text content.
//
// The working area is released on every exit path. An empty repository
// (zero eligible files) succeeds with an empty chunk sequence.
func (ing *Ingestor) Ingest(ctx context.Context, repoURL string) ([]core.Chunk, error) {
	if err := core.ValidateRepositoryURL(repoURL); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "repolens-clone-")
	if err != nil {
		return nil, fmt.Errorf("%w: creating working area: %w", core.ErrAcquisition, err)
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			ing.logger.Warn("failed to clean up working area", "dir", dir, "err", rmErr)
		} else {
			ing.logger.Debug("cleaned up working area", "dir", dir)
		}
	}()

	ing.logger.Info("acquiring repository", "url", repoURL, "dir", dir)
	if err := ing.acquire(ctx, repoURL, dir); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrAcquisition, err)
	}

	chunks, err := ing.chunkTree(dir)
	if err != nil {
		return nil, err
	}

	ing.logger.Info("repository chunked", "url", repoURL, "chunks", len(chunks))
	return chunks, nil
}

// chunkTree walks the working area and chunks every eligible text file.
// filepath.WalkDir visits entries in lexical order, so the resulting
// chunk sequence is deterministic for a given tree.
func (ing *Ingestor) chunkTree(root string) ([]core.Chunk, error) {
	var chunks []core.Chunk

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if excludedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)

		if !eligibleFile(relPath) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Size() > maxFileSize {
			ing.logger.Debug("skipping oversized file", "path", relPath, "size", info.Size())
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			ing.logger.Warn("could not read file", "path", relPath, "err", err)
			return nil
		}
		if looksBinary(data) || !utf8.Valid(data) {
			return nil
		}

		fileChunks := splitText(string(data), relPath, ing.chunkSize, ing.chunkOverlap, len(chunks))
		chunks = append(chunks, fileChunks...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walking repository tree: %w", core.ErrAcquisition, err)
	}

	return chunks, nil
}

// gitAcquire shallow-clones the repository into dir.
func gitAcquire(ctx context.Context, repoURL, dir string) error {
	_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:          repoURL,
		Depth:        1,
		SingleBranch: true,
		Tags:         git.NoTags,
	})
	if err != nil {
		return fmt.Errorf("cloning %s: %w", repoURL, err)
	}
	return nil
}
