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


// Package memory provides an exact in-memory vector store. Search is
// a full scan with cosine similarity, which keeps retrieval behavior
// fully deterministic for tests and small corpora.
package memory

import (
	"sort"
	"sync"

	"github.com/poiesic/repolens/core"
	"github.com/poiesic/repolens/index"
)

type entry struct {
	chunk  core.Chunk
	vector []float32
}

// Store is an exact-search in-memory vector store.
type Store struct {
	mu      sync.RWMutex
	entries []entry
}

var _ index.Store = (*Store)(nil)

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{}
}

// Factory is an index.StoreFactory for in-memory stores.
func Factory() (index.Store, error) {
	return NewStore(), nil
}

// Add appends chunks with their vectors, matched by position.
func (s *Store) Add(chunks []core.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return index.ErrVectorCountMismatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range chunks {
		s.entries = append(s.entries, entry{chunk: chunks[i], vector: vectors[i]})
	}
	return nil
}

// Search scans all entries and returns the top-k by cosine similarity,
// scores non-increasing, ties broken by ascending sequence index.
func (s *Store) Search(vector []float32, k int) ([]core.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]core.ScoredChunk, 0, len(s.entries))
	for _, e := range s.entries {
		results = append(results, core.ScoredChunk{
			Chunk: e.chunk,
			Score: index.Cosine(vector, e.vector),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.SequenceIndex < results[j].Chunk.SequenceIndex
	})

	if k < 0 {
		k = 0
	}
	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// Len returns the number of stored chunks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}
