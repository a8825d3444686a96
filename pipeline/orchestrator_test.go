package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/repolens/core"
	"github.com/poiesic/repolens/generate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRepoURL = "https://github.com/acme/widgets"

type fakeIngestor struct {
	chunks []core.Chunk
	err    error
	calls  int
}

func (f *fakeIngestor) Ingest(ctx context.Context, repoURL string) ([]core.Chunk, error) {
	f.calls++
	return f.chunks, f.err
}

type fakeRetriever struct {
	results    []core.ScoredChunk
	queryErr   error
	queryCalls int
	closed     bool
}

func (f *fakeRetriever) Query(ctx context.Context, text string, k int) ([]core.ScoredChunk, error) {
	f.queryCalls++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if k < len(f.results) {
		return f.results[:k], nil
	}
	return f.results, nil
}

func (f *fakeRetriever) Len() int { return len(f.results) }

func (f *fakeRetriever) Close() error {
	f.closed = true
	return nil
}

type fakeBuilder struct {
	retriever *fakeRetriever
	err       error
	calls     int
}

func (f *fakeBuilder) Build(ctx context.Context, chunks []core.Chunk) (Retriever, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.retriever, nil
}

type fakeGenerator struct {
	suggestions []core.Suggestion
	err         error
	lastReq     generate.Request
	calls       int
}

func (f *fakeGenerator) Generate(ctx context.Context, req generate.Request) ([]core.Suggestion, error) {
	f.calls++
	f.lastReq = req
	return f.suggestions, f.err
}

func testChunks() []core.Chunk {
	chunks := make([]core.Chunk, 3)
	for i := range chunks {
		chunks[i] = core.Chunk{
			Text:          fmt.Sprintf("chunk %d about indexing and retrieval", i),
			SourcePath:    "README.md",
			SequenceIndex: i,
		}
	}
	return chunks
}

func testSuggestion() core.Suggestion {
	return core.Suggestion{
		Title:        "Add a usage section",
		Category:     core.CategoryDocumentation,
		Rationale:    "The README has no usage examples.",
		ProposedText: "## Usage\n\nRun the binary.",
	}
}

func newFixture() (*fakeIngestor, *fakeBuilder, *fakeGenerator) {
	ing := &fakeIngestor{chunks: testChunks()}
	retriever := &fakeRetriever{
		results: []core.ScoredChunk{
			{Chunk: testChunks()[0], Score: 0.9},
			{Chunk: testChunks()[1], Score: 0.8},
		},
	}
	builder := &fakeBuilder{retriever: retriever}
	gen := &fakeGenerator{suggestions: []core.Suggestion{testSuggestion()}}
	return ing, builder, gen
}

func TestNewOrchestrator_RequiresDependencies(t *testing.T) {
	ing, builder, gen := newFixture()

	_, err := NewOrchestrator(nil, builder, gen)
	assert.ErrorIs(t, err, ErrIngestorRequired)

	_, err = NewOrchestrator(ing, nil, gen)
	assert.ErrorIs(t, err, ErrIndexBuilderRequired)

	_, err = NewOrchestrator(ing, builder, nil)
	assert.ErrorIs(t, err, ErrGeneratorRequired)
}

func TestRun_EndToEnd(t *testing.T) {
	ing, builder, gen := newFixture()
	orch, err := NewOrchestrator(ing, builder, gen)
	require.NoError(t, err)

	run, err := orch.Run(context.Background(), testRepoURL)
	require.NoError(t, err)

	assert.Equal(t, StateSucceeded, run.State)
	assert.Len(t, run.Chunks, 3)
	assert.NotEmpty(t, run.Keywords)
	assert.Len(t, run.Retrieved, 2)
	require.Len(t, run.Suggestions, 1)
	assert.Equal(t, "Add a usage section", run.Suggestions[0].Title)
	assert.Empty(t, run.Failures)
	assert.False(t, run.Degraded())
	assert.True(t, builder.retriever.closed, "retriever is closed after the run")

	// Generation was grounded on the retrieved excerpts and metadata.
	assert.Equal(t, testRepoURL, gen.lastReq.RepositoryURL)
	assert.Len(t, gen.lastReq.Context, 2)
	assert.NotEmpty(t, gen.lastReq.Metadata.Keywords)
}

func TestRun_InvalidURLStopsBeforeAnyStage(t *testing.T) {
	ing, builder, gen := newFixture()
	orch, err := NewOrchestrator(ing, builder, gen)
	require.NoError(t, err)

	run, err := orch.Run(context.Background(), "ftp://bad/url")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrValidation)

	assert.Equal(t, StateFailed, run.State)
	require.Len(t, run.Failures, 1)
	assert.Equal(t, "validation", run.Failures[0].Kind)
	assert.Equal(t, "validate", run.Failures[0].Stage)

	assert.Zero(t, ing.calls, "ingestion never ran")
	assert.Zero(t, builder.calls, "indexing never ran")
	assert.Zero(t, gen.calls, "generation never ran")
}

func TestRun_IngestFailureHaltsPipeline(t *testing.T) {
	ing, builder, gen := newFixture()
	ing.err = fmt.Errorf("%w: clone failed", core.ErrAcquisition)
	orch, err := NewOrchestrator(ing, builder, gen)
	require.NoError(t, err)

	run, err := orch.Run(context.Background(), testRepoURL)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrAcquisition)

	assert.Equal(t, StateFailed, run.State)
	require.Len(t, run.Failures, 1)
	assert.Equal(t, "acquisition", run.Failures[0].Kind)
	assert.Equal(t, "ingest", run.Failures[0].Stage)
	assert.Zero(t, builder.calls)
	assert.Zero(t, gen.calls)
}

func TestRun_IndexFailureHaltsPipeline(t *testing.T) {
	ing, builder, gen := newFixture()
	builder.err = fmt.Errorf("%w: embedder unavailable", core.ErrIndexing)
	orch, err := NewOrchestrator(ing, builder, gen)
	require.NoError(t, err)

	run, err := orch.Run(context.Background(), testRepoURL)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrIndexing)
	assert.Equal(t, StateFailed, run.State)
	assert.Zero(t, gen.calls)
}

func TestRun_RetrievalFailureDegrades(t *testing.T) {
	ing, builder, gen := newFixture()
	builder.retriever.queryErr = fmt.Errorf("%w: embedding query failed", core.ErrRetrieval)
	orch, err := NewOrchestrator(ing, builder, gen)
	require.NoError(t, err)

	run, err := orch.Run(context.Background(), testRepoURL)
	require.NoError(t, err, "retrieval failure must not fail the run")

	assert.Equal(t, StateSucceeded, run.State)
	assert.True(t, run.Degraded())
	require.Len(t, run.Failures, 1)
	assert.Equal(t, "retrieval", run.Failures[0].Kind)
	assert.Equal(t, "retrieve", run.Failures[0].Stage)

	assert.Empty(t, run.Retrieved)
	assert.Equal(t, 1, gen.calls, "generation still ran")
	assert.Empty(t, gen.lastReq.Context, "generation grounded on metadata only")
	assert.NotEmpty(t, gen.lastReq.Metadata.Keywords)
}

func TestRun_GenerationFailureRecorded(t *testing.T) {
	ing, builder, gen := newFixture()
	gen.err = fmt.Errorf("%w: retries exhausted", core.ErrGeneration)
	orch, err := NewOrchestrator(ing, builder, gen)
	require.NoError(t, err)

	run, err := orch.Run(context.Background(), testRepoURL)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrGeneration)

	assert.Equal(t, StateFailed, run.State)
	require.Len(t, run.Failures, 1)
	assert.Equal(t, "generation", run.Failures[0].Kind)
	assert.Equal(t, "generate", run.Failures[0].Stage)
	assert.Empty(t, run.Suggestions)
	assert.True(t, builder.retriever.closed)
}

func TestRun_CancelledContextStopsAtStageBoundary(t *testing.T) {
	ing, builder, gen := newFixture()
	orch, err := NewOrchestrator(ing, builder, gen)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run, err := orch.Run(ctx, testRepoURL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateFailed, run.State)
	assert.Zero(t, ing.calls)
}

func TestRun_EmptyRepositorySucceeds(t *testing.T) {
	ing, builder, gen := newFixture()
	ing.chunks = nil
	builder.retriever.results = nil
	orch, err := NewOrchestrator(ing, builder, gen)
	require.NoError(t, err)

	run, err := orch.Run(context.Background(), testRepoURL)
	require.NoError(t, err)

	assert.Equal(t, StateSucceeded, run.State)
	assert.Empty(t, run.Chunks)
	assert.Empty(t, run.Keywords)
	assert.Zero(t, builder.retriever.queryCalls, "an empty index is never queried")
	assert.Len(t, run.Suggestions, 1)
}

func TestRun_RetrievalKRespected(t *testing.T) {
	ing, builder, gen := newFixture()
	orch, err := NewOrchestrator(ing, builder, gen, WithRetrievalK(1))
	require.NoError(t, err)

	run, err := orch.Run(context.Background(), testRepoURL)
	require.NoError(t, err)
	assert.Len(t, run.Retrieved, 1)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "succeeded", StateSucceeded.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown", State(99).String())
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateIndexing.Terminal())
}

func TestErrorKindForUnknownError(t *testing.T) {
	rec := failureRecord("ingest", errors.New("plain failure"))
	assert.Equal(t, "internal", rec.Kind)
	assert.Equal(t, "ingest", rec.Stage)
}
