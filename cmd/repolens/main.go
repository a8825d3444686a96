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


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/repolens/ai"
	"github.com/poiesic/repolens/ai/openai"
	"github.com/poiesic/repolens/core"
	"github.com/poiesic/repolens/generate"
	"github.com/poiesic/repolens/index"
	"github.com/poiesic/repolens/index/badgerstore"
	"github.com/poiesic/repolens/index/memory"
	"github.com/poiesic/repolens/ingest"
	"github.com/poiesic/repolens/keywords"
	"github.com/poiesic/repolens/pipeline"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "repolens",
		Usage: "Analyze a repository and generate improvement suggestions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Usage:     "Ingest a repository, index it and generate suggestions",
				ArgsUsage: "<repository-url>",
				Action:    analyzeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "completion-host",
						Usage: "Completion service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "embeddinggemma",
					},
					&cli.StringFlag{
						Name:  "completion-model",
						Usage: "Completion model name",
						Value: "gpt-4o-mini",
					},
					&cli.DurationFlag{
						Name:  "request-timeout",
						Usage: "Timeout for each model request",
						Value: 30 * time.Second,
					},
					&cli.StringFlag{
						Name:  "api-key",
						Usage: "Completion service API key (overrides REPOLENS_API_KEY / OPENROUTER_API_KEY)",
					},
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to a BadgerDB directory for the vector index (empty keeps the index in memory)",
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Chunk length in characters",
						Value: ingest.DefaultChunkSize,
					},
					&cli.IntFlag{
						Name:  "chunk-overlap",
						Usage: "Overlap between consecutive chunks in characters",
						Value: ingest.DefaultChunkOverlap,
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of excerpts retrieved for generation",
						Value: pipeline.DefaultRetrievalK,
					},
					&cli.IntFlag{
						Name:  "top-n",
						Usage: "Number of keywords extracted",
						Value: pipeline.DefaultKeywordTopN,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts for transient model failures",
						Value: generate.DefaultMaxAttempts,
					},
					&cli.IntFlag{
						Name:  "schema-retries",
						Usage: "Maximum attempts for schema-invalid model responses",
						Value: generate.DefaultSchemaAttempts,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: generate.DefaultBaseDelay,
					},
					&cli.DurationFlag{
						Name:  "retry-cap",
						Usage: "Upper bound on the backoff delay",
						Value: generate.DefaultMaxDelay,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Emit the full run result as JSON",
					},
				},
			},
			{
				Name:   "health",
				Usage:  "Check that the completion service is reachable",
				Action: healthCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "completion-host",
						Usage: "Completion service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "api-key",
						Usage: "Completion service API key (overrides REPOLENS_API_KEY / OPENROUTER_API_KEY)",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func analyzeCommand(c *cli.Context) error {
	repoURL := c.Args().First()
	if repoURL == "" {
		return fmt.Errorf("repository URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithCompletionHost(c.String("completion-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithCompletionModel(c.String("completion-model")),
		ai.WithAPIKey(apiKey(c)),
		ai.WithRequestTimeout(c.Duration("request-timeout")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	provider, err := openai.NewProvider(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	defer provider.Close()

	ingestor := ingest.NewIngestor(
		ingest.WithChunkSize(c.Int("chunk-size")),
		ingest.WithChunkOverlap(c.Int("chunk-overlap")),
	)

	factory := index.StoreFactory(memory.Factory)
	if dbPath := c.String("db"); dbPath != "" {
		factory = badgerstore.Factory(dbPath)
	}
	builder, err := index.NewBuilder(provider.Embedder(), factory)
	if err != nil {
		return fmt.Errorf("failed to create index builder: %w", err)
	}

	policy := generate.DefaultPolicy()
	policy.MaxAttempts = c.Int("max-retries")
	policy.BaseDelay = c.Duration("retry-delay")
	policy.MaxDelay = c.Duration("retry-cap")

	generator, err := generate.NewGenerator(provider.ChatModel(),
		generate.WithPolicy(policy),
		generate.WithSchemaAttempts(c.Int("schema-retries")),
	)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}

	orch, err := pipeline.NewOrchestrator(
		ingestor,
		pipeline.AdaptIndexBuilder(builder),
		generator,
		pipeline.WithRetrievalK(c.Int("top-k")),
		pipeline.WithKeywordTopN(c.Int("top-n")),
	)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	run, runErr := orch.Run(ctx, repoURL)

	if c.Bool("json") {
		if err := json.NewEncoder(os.Stdout).Encode(runResult(run)); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	} else {
		renderRun(run)
	}

	if runErr != nil {
		return fmt.Errorf("analysis failed: %w", runErr)
	}
	return nil
}

func healthCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aiConfig := ai.NewConfig(
		ai.WithCompletionHost(c.String("completion-host")),
		ai.WithAPIKey(apiKey(c)),
	)
	aiConfig.Normalize()

	if err := openai.CheckHealth(ctx, aiConfig); err != nil {
		return fmt.Errorf("completion service unhealthy: %w", err)
	}

	fmt.Printf("ok: %s is reachable\n", aiConfig.CompletionHost)
	return nil
}

// apiKey resolves the completion service key: flag first, then the
// environment. The key is only ever handed to the HTTP client; it must
// never be logged or printed.
func apiKey(c *cli.Context) string {
	if key := c.String("api-key"); key != "" {
		return key
	}
	if key := os.Getenv("REPOLENS_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("OPENROUTER_API_KEY")
}

// result is the JSON shape emitted by --json.
type result struct {
	RepositoryURL string               `json:"repository_url"`
	State         string               `json:"state"`
	ChunkCount    int                  `json:"chunk_count"`
	Keywords      []core.KeywordScore  `json:"keywords"`
	Metadata      keywords.Metadata    `json:"metadata"`
	Suggestions   []core.Suggestion    `json:"suggestions"`
	Failures      []core.FailureRecord `json:"failures,omitempty"`
}

func runResult(run pipeline.Context) result {
	return result{
		RepositoryURL: run.RepositoryURL,
		State:         run.State.String(),
		ChunkCount:    len(run.Chunks),
		Keywords:      run.Keywords,
		Metadata:      run.Metadata,
		Suggestions:   run.Suggestions,
		Failures:      run.Failures,
	}
}

func renderRun(run pipeline.Context) {
	fmt.Printf("Repository: %s\n", run.RepositoryURL)
	fmt.Printf("State: %s (%d chunks indexed)\n", run.State, len(run.Chunks))

	if len(run.Keywords) > 0 {
		terms := make([]string, len(run.Keywords))
		for i, kw := range run.Keywords {
			terms[i] = fmt.Sprintf("%s(%d)", kw.Term, kw.Frequency)
		}
		fmt.Printf("Keywords: %s\n", strings.Join(terms, ", "))
	}
	if len(run.Metadata.Categories) > 0 {
		fmt.Printf("Categories: %s\n", strings.Join(run.Metadata.Categories, ", "))
	}
	if len(run.Metadata.Tags) > 0 {
		fmt.Printf("Tags: %s\n", strings.Join(run.Metadata.Tags, ", "))
	}

	for _, failure := range run.Failures {
		fmt.Fprintf(os.Stderr, "warning: %s stage: [%s] %s\n",
			failure.Stage, failure.Kind, failure.Message)
	}

	if len(run.Suggestions) > 0 {
		fmt.Printf("\nSuggestions:\n")
	}
	for i, s := range run.Suggestions {
		fmt.Printf("\n%d. [%s] %s\n", i+1, s.Category, s.Title)
		fmt.Printf("   Rationale: %s\n", s.Rationale)
		fmt.Printf("   Proposed:\n%s\n", indent(s.ProposedText, "   "))
	}
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func setup(c *cli.Context) error {
	// A .env alongside the binary may carry the API key; absence is fine.
	_ = godotenv.Load()

	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
