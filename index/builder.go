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


package index

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/repolens/ai"
	"github.com/poiesic/repolens/core"
)

const defaultBatchSize = 16

// StoreFactory produces an empty store for a build. Each build gets a
// fresh store so concurrent pipeline runs never share index state.
type StoreFactory func() (Store, error)

// Builder embeds chunks and populates a store. Embedding requests are
// batched through a bounded worker pool; Build returns only when every
// chunk is embedded or the build has failed, so the indexing stage
// stays synchronous from the orchestrator's point of view.
type Builder struct {
	embedder  ai.Embedder
	newStore  StoreFactory
	poolSize  int
	batchSize int
	logger    *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithPoolSize sets the embedding worker pool size.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) BuilderOption {
	return func(b *Builder) {
		if size > 0 {
			b.poolSize = size
		}
	}
}

// WithBatchSize sets the number of chunks per embedding request.
// Default is 16.
func WithBatchSize(size int) BuilderOption {
	return func(b *Builder) {
		if size > 0 {
			b.batchSize = size
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder creates an index builder.
func NewBuilder(embedder ai.Embedder, newStore StoreFactory, opts ...BuilderOption) (*Builder, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if newStore == nil {
		return nil, ErrStoreFactoryRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	b := &Builder{
		embedder:  embedder,
		newStore:  newStore,
		poolSize:  poolSize,
		batchSize: defaultBatchSize,
		logger:    slog.Default().With("component", "index-builder"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Build embeds every chunk exactly once and returns a queryable index.
//
// Rebuilding from the same chunk sequence yields equivalent retrieval
// behavior: vectors are deterministic for fixed input and result
// ordering is fixed by the store's tie-break rule, not insertion order.
// A zero-chunk build succeeds and yields an index whose queries return
// empty results. Any embedding failure aborts the build and wraps
// core.ErrIndexing.
func (b *Builder) Build(ctx context.Context, chunks []core.Chunk) (*Index, error) {
	store, err := b.newStore()
	if err != nil {
		return nil, fmt.Errorf("%w: creating store: %w", core.ErrIndexing, err)
	}

	if len(chunks) == 0 {
		b.logger.Warn("building index over empty chunk sequence")
		return NewIndex(store, b.embedder), nil
	}

	pool, err := ants.NewPool(b.poolSize)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("%w: creating worker pool: %w", core.ErrIndexing, err)
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	setErr := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	for start := 0; start < len(chunks); start += b.batchSize {
		end := start + b.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			mu.Lock()
			failed := firstErr != nil
			mu.Unlock()
			if failed || ctx.Err() != nil {
				return
			}

			texts := make([]string, len(batch))
			for i, c := range batch {
				texts[i] = c.Text
			}

			vectors, err := b.embedder.EmbedTexts(ctx, texts)
			if err != nil {
				setErr(err)
				return
			}
			if len(vectors) != len(batch) {
				setErr(fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(batch)))
				return
			}

			mu.Lock()
			defer mu.Unlock()
			if firstErr != nil {
				return
			}
			if err := store.Add(batch, vectors); err != nil {
				firstErr = err
			}
		})
		if submitErr != nil {
			wg.Done()
			setErr(submitErr)
			break
		}
	}

	wg.Wait()

	if firstErr == nil && ctx.Err() != nil {
		firstErr = ctx.Err()
	}
	if firstErr != nil {
		store.Close()
		return nil, fmt.Errorf("%w: %w", core.ErrIndexing, firstErr)
	}

	b.logger.Info("index built", "chunks", len(chunks), "workers", b.poolSize)
	return NewIndex(store, b.embedder), nil
}
