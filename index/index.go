package index

import (
	"context"
	"fmt"

	"github.com/poiesic/repolens/ai"
	"github.com/poiesic/repolens/core"
)

// Store is a vector backend holding embedded chunks. Implementations
// must return search results with non-increasing scores, breaking ties
// by ascending sequence index so result order is deterministic.
type Store interface {
	// Add appends chunks with their embedding vectors, matched by
	// position. Vectors are immutable once stored.
	Add(chunks []core.Chunk, vectors [][]float32) error

	// Search returns up to k chunks ranked by similarity to the query
	// vector, highest score first. k greater than the stored corpus
	// returns the full corpus; k <= 0 and an empty store both return
	// an empty result, never an error.
	Search(vector []float32, k int) ([]core.ScoredChunk, error)

	// Len returns the number of stored chunks.
	Len() int

	// Close releases backend resources.
	Close() error
}

// Index answers text similarity queries over a built store.
type Index struct {
	store    Store
	embedder ai.Embedder
}

// NewIndex binds a populated store to the embedder used for queries.
func NewIndex(store Store, embedder ai.Embedder) *Index {
	return &Index{store: store, embedder: embedder}
}

// Query embeds the query text and returns the top-k most similar
// chunks. Scores are monotonically non-increasing across the result.
//
// Querying an index built from zero chunks returns an empty sequence,
// never an error. A query-time embedding failure wraps
// core.ErrRetrieval; callers may degrade gracefully.
func (ix *Index) Query(ctx context.Context, text string, k int) ([]core.ScoredChunk, error) {
	if k <= 0 || ix.store.Len() == 0 {
		return []core.ScoredChunk{}, nil
	}

	vector, err := ix.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %w", core.ErrRetrieval, err)
	}

	results, err := ix.store.Search(vector, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrRetrieval, err)
	}
	return results, nil
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	return ix.store.Len()
}

// Close releases the underlying store.
func (ix *Index) Close() error {
	return ix.store.Close()
}
