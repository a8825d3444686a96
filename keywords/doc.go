// Package keywords derives a ranked term list and metadata suggestions
// from the chunk corpus.
//
// Everything here is pure and deterministic: no external calls, no
// randomness, and a fully specified ordering (frequency descending,
// ties lexicographic ascending), so identical input always yields an
// identical output sequence.
package keywords
