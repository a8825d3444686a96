// Package index builds and queries a vector index over repository
// chunks.
//
// The Store interface separates the vector backend from query-time
// embedding, with two interchangeable implementations: index/memory
// (exact in-memory cosine search, used in tests for determinism) and
// index/badgerstore (a persistent BadgerDB-backed store). Both honor
// the same ordering contract: scores non-increasing, ties broken by
// ascending sequence index.
//
// Build-time embedding failures are terminal (core.ErrIndexing);
// query-time failures wrap core.ErrRetrieval and are recoverable by
// the caller.
package index
