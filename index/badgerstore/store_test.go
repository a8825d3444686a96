package badgerstore

import (
	"testing"

	"github.com/poiesic/repolens/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("") // in-memory
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_AddAndSearch(t *testing.T) {
	s := openTestStore(t)

	chunks := []core.Chunk{
		{Text: "first chunk", SourcePath: "README.md", ByteOffset: 0, SequenceIndex: 0},
		{Text: "second chunk", SourcePath: "README.md", ByteOffset: 800, SequenceIndex: 1},
		{Text: "third chunk", SourcePath: "docs/guide.md", ByteOffset: 0, SequenceIndex: 2},
	}
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0.9, 0.1, 0},
	}
	require.NoError(t, s.Add(chunks, vectors))
	assert.Equal(t, 3, s.Len())

	results, err := s.Search([]float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "first chunk", results[0].Chunk.Text)
	assert.Equal(t, "third chunk", results[1].Chunk.Text)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)

	// Provenance survives the round trip.
	assert.Equal(t, "docs/guide.md", results[1].Chunk.SourcePath)
}

func TestStore_TieBreakBySequenceIndex(t *testing.T) {
	s := openTestStore(t)

	chunks := []core.Chunk{
		{Text: "later", SequenceIndex: 9},
		{Text: "earlier", SequenceIndex: 2},
	}
	vectors := [][]float32{{1, 1}, {1, 1}}
	require.NoError(t, s.Add(chunks, vectors))

	results, err := s.Search([]float32{1, 1}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 2, results[0].Chunk.SequenceIndex)
	assert.Equal(t, 9, results[1].Chunk.SequenceIndex)
}

func TestStore_KExceedsCorpus(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Add(
		[]core.Chunk{{Text: "only", SequenceIndex: 0}},
		[][]float32{{1}},
	))

	results, err := s.Search([]float32{1}, 100)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestStore_NonPositiveK(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Add(
		[]core.Chunk{{Text: "only", SequenceIndex: 0}},
		[][]float32{{1}},
	))

	for _, k := range []int{0, -1, -100} {
		results, err := s.Search([]float32{1}, k)
		require.NoError(t, err)
		assert.Empty(t, results)
	}
}

func TestStore_Empty(t *testing.T) {
	s := openTestStore(t)
	assert.Equal(t, 0, s.Len())

	results, err := s.Search([]float32{1, 2}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRecordCodec_RoundTrip(t *testing.T) {
	in := record{
		Chunk: core.Chunk{
			Text:          "some chunk text with unicode: 世界",
			SourcePath:    "docs/intro.md",
			ByteOffset:    1600,
			SequenceIndex: 4,
		},
		Vector: []float32{0.25, -1.5, 3.125},
	}

	out, err := unmarshalRecord(marshalRecord(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Add(
		[]core.Chunk{{Text: "durable", SequenceIndex: 0}},
		[][]float32{{1, 0}},
	))
	require.NoError(t, s.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, 1, reopened.Len())
	results, err := reopened.Search([]float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "durable", results[0].Chunk.Text)
}
