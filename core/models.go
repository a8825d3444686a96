package core

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated from content so identical text maps to the same ID.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Chunk is a bounded, overlapping slice of repository text with file
// provenance. Chunks are the unit of embedding and retrieval.
//
// Chunks produced from the same source file are contiguous and ordered
// by ByteOffset. Consecutive chunks of a file overlap by the configured
// overlap length, except possibly the final chunk, which may be shorter.
type Chunk struct {
	Text          string
	SourcePath    string // Path relative to the repository root
	ByteOffset    int    // Byte position of the chunk start within the file
	SequenceIndex int    // Position in the overall chunk sequence
}

// ID returns the content-based identifier for the chunk.
// Provenance is included so identical text in two files stays distinct.
func (c *Chunk) ID() ID {
	return IDFromContent(c.SourcePath + "\x00" + c.Text)
}

// KeywordScore is a term with its frequency in the chunk corpus.
// A term appears at most once in an extracted sequence.
type KeywordScore struct {
	Term      string
	Frequency int
}

// SuggestionCategory classifies an improvement suggestion.
type SuggestionCategory string

const (
	CategoryDocumentation   SuggestionCategory = "documentation"
	CategoryDiscoverability SuggestionCategory = "discoverability"
	CategoryClarity         SuggestionCategory = "clarity"
	CategoryOther           SuggestionCategory = "other"
)

// SuggestionCategories lists the valid categories, in display order.
var SuggestionCategories = []SuggestionCategory{
	CategoryDocumentation,
	CategoryDiscoverability,
	CategoryClarity,
	CategoryOther,
}

// Suggestion is one structured improvement suggestion produced by the
// generator. All fields are mandatory and non-empty; a suggestion that
// fails ValidateSuggestion is never surfaced to the caller.
type Suggestion struct {
	Title        string             `json:"title"`
	Category     SuggestionCategory `json:"category"`
	Rationale    string             `json:"rationale"`
	ProposedText string             `json:"proposed_text"`
}

// ScoredChunk is a retrieval hit: a chunk with its similarity score.
type ScoredChunk struct {
	Chunk Chunk
	Score float32
}

// FailureRecord describes a terminal or partial pipeline failure,
// naming the stage that produced it.
type FailureRecord struct {
	Kind    string `json:"kind"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}
