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


// Package badgerstore provides a BadgerDB-backed vector store. Chunk
// records are serialized with mus-go under sequence-ordered keys;
// search is a linear scan with cosine scoring, which is exact and fast
// enough for single-repository corpora.
package badgerstore

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/repolens/core"
	"github.com/poiesic/repolens/index"
)

// Store is a BadgerDB-backed vector store.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	mu    sync.RWMutex
	count int
}

var _ index.Store = (*Store)(nil)

// badgerLoggerAdapter adapts slog.Logger to the badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Open opens a BadgerDB-backed store at the specified path.
// Creates the directory if it doesn't exist. An empty path opens an
// in-memory database.
func Open(filePath string) (*Store, error) {
	var opts badger.Options

	if filePath == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(filePath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
			if err := os.MkdirAll(filePath, 0o755); err != nil {
				return nil, err
			}
		} else if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default().With("component", "badgerstore")}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	s := &Store{
		db:     db,
		logger: slog.Default().With("component", "badgerstore"),
	}

	// Recount existing records so reopening a populated store works.
	if err := s.recount(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Factory returns an index.StoreFactory producing stores under dir.
// An empty dir produces in-memory databases.
func Factory(dir string) index.StoreFactory {
	return func() (index.Store, error) {
		return Open(dir)
	}
}

func (s *Store) recount() error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkRecordPrefix)
		opts.PrefetchValues = false
		iter := txn.NewIterator(opts)
		defer iter.Close()

		count := 0
		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		s.mu.Lock()
		s.count = count
		s.mu.Unlock()
		return nil
	})
}

// Add appends chunks with their vectors, matched by position.
func (s *Store) Add(chunks []core.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return index.ErrVectorCountMismatch
	}
	if len(chunks) == 0 {
		return nil
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		for i := range chunks {
			rec := record{Chunk: chunks[i], Vector: vectors[i]}
			key := makeChunkKey(chunks[i].SequenceIndex, chunks[i].ID())
			if err := txn.Set(key, marshalRecord(rec)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.count += len(chunks)
	s.mu.Unlock()
	return nil
}

// Search scans all records and returns the top-k by cosine similarity,
// scores non-increasing, ties broken by ascending sequence index.
func (s *Store) Search(vector []float32, k int) ([]core.ScoredChunk, error) {
	var results []core.ScoredChunk

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkRecordPrefix)
		iter := txn.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()

			var rec record
			err := item.Value(func(val []byte) error {
				var err error
				rec, err = unmarshalRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if len(rec.Vector) == 0 {
				continue
			}

			results = append(results, core.ScoredChunk{
				Chunk: rec.Chunk,
				Score: index.Cosine(vector, rec.Vector),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
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
	return s.count
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
