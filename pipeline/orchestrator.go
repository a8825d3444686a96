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


package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/repolens/core"
	"github.com/poiesic/repolens/generate"
	"github.com/poiesic/repolens/index"
	"github.com/poiesic/repolens/keywords"
)

// Defaults for the retrieval and extraction knobs.
const (
	DefaultRetrievalK  = 4
	DefaultKeywordTopN = keywords.DefaultTopN
)

// retrievalQuery is the fixed query used to pull grounding excerpts
// out of the index before generation.
const retrievalQuery = "summarize the repository and identify missing documentation sections"

var (
	ErrIngestorRequired     = errors.New("ingestor is required")
	ErrIndexBuilderRequired = errors.New("index builder is required")
	ErrGeneratorRequired    = errors.New("generator is required")
)

// Ingestor materializes a repository and chunks its text content.
type Ingestor interface {
	Ingest(ctx context.Context, repoURL string) ([]core.Chunk, error)
}

// Retriever answers similarity queries over an indexed corpus.
type Retriever interface {
	Query(ctx context.Context, text string, k int) ([]core.ScoredChunk, error)
	Len() int
	Close() error
}

// IndexBuilder embeds a chunk sequence into a queryable retriever.
type IndexBuilder interface {
	Build(ctx context.Context, chunks []core.Chunk) (Retriever, error)
}

// Generator produces structured suggestions from grounding material.
type Generator interface {
	Generate(ctx context.Context, req generate.Request) ([]core.Suggestion, error)
}

// AdaptIndexBuilder wraps an index.Builder so its concrete Build result
// satisfies the Retriever interface.
func AdaptIndexBuilder(b *index.Builder) IndexBuilder {
	return builderAdapter{b}
}

type builderAdapter struct {
	b *index.Builder
}

func (a builderAdapter) Build(ctx context.Context, chunks []core.Chunk) (Retriever, error) {
	return a.b.Build(ctx, chunks)
}

// Orchestrator drives one repository analysis run through its stages:
// validate, ingest, index, extract, generate. Stages run strictly in
// order; a stage failure terminates the run with a failure record and
// the remaining stages are skipped. The single exception is retrieval,
// which degrades instead of failing.
type Orchestrator struct {
	ingestor    Ingestor
	builder     IndexBuilder
	generator   Generator
	retrievalK  int
	keywordTopN int
	logger      *slog.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithRetrievalK sets how many excerpts retrieval feeds to generation.
func WithRetrievalK(k int) OrchestratorOption {
	return func(o *Orchestrator) {
		if k > 0 {
			o.retrievalK = k
		}
	}
}

// WithKeywordTopN sets how many keywords extraction keeps.
func WithKeywordTopN(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.keywordTopN = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewOrchestrator wires the stage implementations together.
func NewOrchestrator(ingestor Ingestor, builder IndexBuilder, generator Generator, opts ...OrchestratorOption) (*Orchestrator, error) {
	if ingestor == nil {
		return nil, ErrIngestorRequired
	}
	if builder == nil {
		return nil, ErrIndexBuilderRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	o := &Orchestrator{
		ingestor:    ingestor,
		builder:     builder,
		generator:   generator,
		retrievalK:  DefaultRetrievalK,
		keywordTopN: DefaultKeywordTopN,
		logger:      slog.Default().With("component", "pipeline"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Run executes one analysis of the repository at repoURL.
//
// The returned Context always reflects how far the run got: on failure
// its State is StateFailed, Failures carries the record, and the error
// is also returned. Cancellation is honored at every stage boundary.
// A retrieval failure does not fail the run; generation proceeds on
// metadata alone and the degradation is recorded in Failures.
func (o *Orchestrator) Run(ctx context.Context, repoURL string) (Context, error) {
	run := Context{RepositoryURL: repoURL, State: StateIdle}

	if err := core.ValidateRepositoryURL(repoURL); err != nil {
		return o.fail(run, "validate", err)
	}

	if err := ctx.Err(); err != nil {
		return o.fail(run, "ingest", err)
	}
	run.State = StateIngesting
	o.logger.Info("ingesting repository", "url", repoURL)
	chunks, err := o.ingestor.Ingest(ctx, repoURL)
	if err != nil {
		return o.fail(run, "ingest", err)
	}
	run.Chunks = chunks

	if err := ctx.Err(); err != nil {
		return o.fail(run, "index", err)
	}
	run.State = StateIndexing
	o.logger.Info("building index", "chunks", len(chunks))
	retriever, err := o.builder.Build(ctx, chunks)
	if err != nil {
		return o.fail(run, "index", err)
	}
	defer func() {
		if err := retriever.Close(); err != nil {
			o.logger.Warn("closing retriever", "err", err)
		}
	}()

	if err := ctx.Err(); err != nil {
		return o.fail(run, "extract", err)
	}
	run.State = StateExtracting
	run.Keywords = keywords.Extract(chunks, o.keywordTopN)
	run.Metadata = keywords.SuggestMetadata(run.Keywords)
	o.logger.Info("extracted keywords", "count", len(run.Keywords))

	if err := ctx.Err(); err != nil {
		return o.fail(run, "generate", err)
	}
	run.State = StateGenerating

	var retrieved []core.ScoredChunk
	if retriever.Len() > 0 {
		retrieved, err = retriever.Query(ctx, retrievalQuery, o.retrievalK)
		if err != nil {
			// Degrade: generate from metadata alone rather than failing.
			o.logger.Warn("retrieval failed, continuing without excerpts", "err", err)
			run.Failures = append(run.Failures, failureRecord("retrieve", err))
			retrieved = nil
		}
	}
	run.Retrieved = retrieved

	suggestions, err := o.generator.Generate(ctx, generate.Request{
		RepositoryURL: repoURL,
		Context:       retrieved,
		Metadata:      run.Metadata,
	})
	if err != nil {
		return o.fail(run, "generate", err)
	}
	run.Suggestions = suggestions

	run.State = StateSucceeded
	o.logger.Info("run complete",
		"suggestions", len(suggestions),
		"degraded", run.Degraded())
	return run, nil
}

// fail marks the run terminally failed and records the stage error.
func (o *Orchestrator) fail(run Context, stage string, err error) (Context, error) {
	o.logger.Error("stage failed", "stage", stage, "err", err)
	run.Failures = append(run.Failures, failureRecord(stage, err))
	run.State = StateFailed
	return run, fmt.Errorf("%s: %w", stage, err)
}

func failureRecord(stage string, err error) core.FailureRecord {
	return core.FailureRecord{
		Kind:    core.ErrorKind(err),
		Stage:   stage,
		Message: err.Error(),
	}
}
