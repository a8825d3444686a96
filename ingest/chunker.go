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


package ingest

import (
	"unicode/utf8"

	"github.com/poiesic/repolens/core"
)

const (
	// DefaultChunkSize is the chunk length in runes.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the overlap between consecutive chunks of
	// the same file, in runes.
	DefaultChunkOverlap = 200
)

// splitText produces fixed-size overlapping chunks from one file's
// text. Chunk length is measured in runes; ByteOffset records the byte
// position of each chunk start so provenance stays usable for seeking.
//
// Consecutive chunks overlap by exactly `overlap` runes. The final
// chunk may be shorter than chunkSize; it is truncated, never padded.
// Empty text yields no chunks. startIndex seeds SequenceIndex so
// chunks keep a global order across files.
func splitText(text, sourcePath string, chunkSize, overlap, startIndex int) []core.Chunk {
	if text == "" {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	runes := []rune(text)

	// Byte offset of each rune position, plus the end sentinel.
	offsets := make([]int, len(runes)+1)
	pos := 0
	for i, r := range runes {
		offsets[i] = pos
		pos += utf8.RuneLen(r)
	}
	offsets[len(runes)] = pos

	step := chunkSize - overlap
	var chunks []core.Chunk
	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, core.Chunk{
			Text:          string(runes[start:end]),
			SourcePath:    sourcePath,
			ByteOffset:    offsets[start],
			SequenceIndex: startIndex + len(chunks),
		})
		if end == len(runes) {
			break
		}
	}
	return chunks
}
