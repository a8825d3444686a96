package index_test

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/repolens/ai/mock"
	"github.com/poiesic/repolens/core"
	"github.com/poiesic/repolens/index"
	"github.com/poiesic/repolens/index/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeChunks(texts ...string) []core.Chunk {
	chunks := make([]core.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = core.Chunk{Text: text, SourcePath: "README.md", SequenceIndex: i}
	}
	return chunks
}

func TestBuild_AndQuery(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	builder, err := index.NewBuilder(embedder, memory.Factory, index.WithPoolSize(2), index.WithBatchSize(2))
	require.NoError(t, err)

	chunks := makeChunks("alpha text", "beta text", "gamma text", "delta text", "epsilon text")
	ix, err := builder.Build(context.Background(), chunks)
	require.NoError(t, err)
	defer ix.Close()

	assert.Equal(t, 5, ix.Len())

	results, err := ix.Query(context.Background(), "alpha text", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Scores must be non-increasing; the identical text scores highest.
	assert.Equal(t, "alpha text", results[0].Chunk.Text)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i].Score, results[i-1].Score)
	}
}

func TestBuild_KExceedsCorpus(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	builder, err := index.NewBuilder(embedder, memory.Factory)
	require.NoError(t, err)

	ix, err := builder.Build(context.Background(), makeChunks("one", "two", "three"))
	require.NoError(t, err)
	defer ix.Close()

	results, err := ix.Query(context.Background(), "one", 50)
	require.NoError(t, err)
	assert.Len(t, results, 3, "k greater than corpus size returns the full corpus")
}

func TestBuild_EmptyChunks(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	builder, err := index.NewBuilder(embedder, memory.Factory)
	require.NoError(t, err)

	ix, err := builder.Build(context.Background(), nil)
	require.NoError(t, err, "a zero-chunk build succeeds")
	defer ix.Close()

	results, err := ix.Query(context.Background(), "anything", 5)
	require.NoError(t, err, "querying an empty index is not an error")
	assert.Empty(t, results)
	assert.Zero(t, embedder.CallCount(), "nothing to embed on an empty index")
}

func TestBuild_EmbeddingFailureIsTerminal(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding service down")
	}

	builder, err := index.NewBuilder(embedder, memory.Factory)
	require.NoError(t, err)

	_, err = builder.Build(context.Background(), makeChunks("a", "b"))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrIndexing)
}

func TestQuery_EmbeddingFailureIsRetrievalError(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	builder, err := index.NewBuilder(embedder, memory.Factory)
	require.NoError(t, err)

	ix, err := builder.Build(context.Background(), makeChunks("a", "b"))
	require.NoError(t, err)
	defer ix.Close()

	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}

	_, err = ix.Query(context.Background(), "query", 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrRetrieval)
}

func TestBuild_Idempotent(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	builder, err := index.NewBuilder(embedder, memory.Factory, index.WithBatchSize(1))
	require.NoError(t, err)

	chunks := makeChunks("red", "green", "blue", "yellow")

	first, err := builder.Build(context.Background(), chunks)
	require.NoError(t, err)
	second, err := builder.Build(context.Background(), chunks)
	require.NoError(t, err)

	a, err := first.Query(context.Background(), "green", 4)
	require.NoError(t, err)
	b, err := second.Query(context.Background(), "green", 4)
	require.NoError(t, err)

	assert.Equal(t, a, b, "rebuilding from the same chunks yields identical retrieval")
}

func TestNewBuilder_RequiresDependencies(t *testing.T) {
	_, err := index.NewBuilder(nil, memory.Factory)
	assert.ErrorIs(t, err, index.ErrEmbedderRequired)

	_, err = index.NewBuilder(mock.NewMockEmbedder(), nil)
	assert.ErrorIs(t, err, index.ErrStoreFactoryRequired)
}
