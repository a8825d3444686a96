package memory

import (
	"testing"

	"github.com/poiesic/repolens/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SearchOrdering(t *testing.T) {
	s := NewStore()
	chunks := []core.Chunk{
		{Text: "a", SequenceIndex: 0},
		{Text: "b", SequenceIndex: 1},
		{Text: "c", SequenceIndex: 2},
	}
	vectors := [][]float32{
		{1, 0},
		{0.5, 0.5},
		{0, 1},
	}
	require.NoError(t, s.Add(chunks, vectors))

	results, err := s.Search([]float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, 0, results[0].Chunk.SequenceIndex)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i].Score, results[i-1].Score)
	}
}

func TestStore_TieBreakBySequenceIndex(t *testing.T) {
	s := NewStore()
	// Insert out of order with identical vectors: equal scores must
	// come back ordered by sequence index, not insertion order.
	chunks := []core.Chunk{
		{Text: "later", SequenceIndex: 7},
		{Text: "earlier", SequenceIndex: 3},
	}
	vectors := [][]float32{
		{1, 1},
		{1, 1},
	}
	require.NoError(t, s.Add(chunks, vectors))

	results, err := s.Search([]float32{1, 1}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 3, results[0].Chunk.SequenceIndex)
	assert.Equal(t, 7, results[1].Chunk.SequenceIndex)
}

func TestStore_EmptySearch(t *testing.T) {
	s := NewStore()
	results, err := s.Search([]float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStore_NonPositiveK(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(
		[]core.Chunk{{Text: "a", SequenceIndex: 0}},
		[][]float32{{1, 0}},
	))

	for _, k := range []int{0, -1, -100} {
		results, err := s.Search([]float32{1, 0}, k)
		require.NoError(t, err)
		assert.Empty(t, results)
	}
}

func TestStore_CountMismatch(t *testing.T) {
	s := NewStore()
	err := s.Add([]core.Chunk{{Text: "a"}}, nil)
	assert.Error(t, err)
}
