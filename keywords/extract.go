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


package keywords

import (
	"sort"
	"strings"
	"unicode"

	"github.com/poiesic/repolens/core"
)

// DefaultTopN is the default number of keywords extracted.
const DefaultTopN = 12

// minTermLength filters out short tokens; terms of one or two runes
// are almost never meaningful repository keywords.
const minTermLength = 3

// Extract derives a ranked term list from the chunk corpus.
//
// It is a deterministic pure function: lowercase tokenization, the
// fixed stop-word set, frequency counting, and top-n selection ordered
// by frequency descending with ties broken by lexicographic ascending
// order. Each term appears at most once. Zero chunks (or topN <= 0)
// yields an empty sequence; it never fails.
func Extract(chunks []core.Chunk, topN int) []core.KeywordScore {
	if len(chunks) == 0 || topN <= 0 {
		return []core.KeywordScore{}
	}

	counts := make(map[string]int)
	for _, chunk := range chunks {
		for _, term := range tokenize(chunk.Text) {
			counts[term]++
		}
	}

	scores := make([]core.KeywordScore, 0, len(counts))
	for term, freq := range counts {
		scores = append(scores, core.KeywordScore{Term: term, Frequency: freq})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Frequency != scores[j].Frequency {
			return scores[i].Frequency > scores[j].Frequency
		}
		return scores[i].Term < scores[j].Term
	})

	if topN < len(scores) {
		scores = scores[:topN]
	}
	return scores
}

// tokenize lowercases text, splits on non-alphanumeric runes, and
// drops stop words and short tokens.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	terms := make([]string, 0, len(fields))
	for _, field := range fields {
		if len([]rune(field)) < minTermLength || stopWords[field] {
			continue
		}
		terms = append(terms, field)
	}
	return terms
}
