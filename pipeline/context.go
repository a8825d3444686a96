package pipeline

import (
	"github.com/poiesic/repolens/core"
	"github.com/poiesic/repolens/keywords"
)

// Context is the value passed through a run. Each stage reads the
// fields of earlier stages and fills in its own; only the stage that
// owns a field writes it, so the flow needs no locking.
type Context struct {
	RepositoryURL string

	// Chunks is filled by ingestion.
	Chunks []core.Chunk

	// Keywords and Metadata are filled by extraction.
	Keywords []core.KeywordScore
	Metadata keywords.Metadata

	// Retrieved holds the context excerpts fed to the model. Empty when
	// retrieval degraded; the degradation is recorded in Failures.
	Retrieved []core.ScoredChunk

	// Suggestions is filled by generation on success.
	Suggestions []core.Suggestion

	// Failures records terminal failures and non-fatal degradations.
	Failures []core.FailureRecord

	State State
}

// Degraded reports whether the run completed with a non-fatal failure
// recorded, such as retrieval falling back to metadata-only grounding.
func (c Context) Degraded() bool {
	return c.State == StateSucceeded && len(c.Failures) > 0
}
