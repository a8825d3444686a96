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


package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/repolens/ai"
	"github.com/poiesic/repolens/core"
)

// DefaultSchemaAttempts is how many responses the generator will
// parse-and-validate before giving up on the schema. This budget is
// separate from the transport retry budget in Policy.
const DefaultSchemaAttempts = 2

// suggestionEnvelope matches the JSON object the model is instructed
// to return.
type suggestionEnvelope struct {
	Suggestions []core.Suggestion `json:"suggestions"`
}

// Generator produces structured improvement suggestions from retrieved
// repository context.
type Generator struct {
	model          ai.ChatModel
	policy         Policy
	schemaAttempts int
	logger         *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithPolicy sets the transport retry policy.
func WithPolicy(policy Policy) Option {
	return func(g *Generator) {
		g.policy = policy
	}
}

// WithSchemaAttempts sets how many schema-invalid responses are
// tolerated before the generation fails.
func WithSchemaAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.schemaAttempts = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// NewGenerator creates a generator backed by the given chat model.
func NewGenerator(model ai.ChatModel, opts ...Option) (*Generator, error) {
	if model == nil {
		return nil, ErrChatModelRequired
	}

	g := &Generator{
		model:          model,
		policy:         DefaultPolicy(),
		schemaAttempts: DefaultSchemaAttempts,
		logger:         slog.Default().With("component", "generator"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate asks the model for improvement suggestions grounded in the
// request's context and metadata.
//
// Transport failures go through the retry policy; once that budget is
// exhausted the error wraps core.ErrGeneration. A response that arrives
// but does not parse or validate consumes one schema attempt and
// triggers a corrective re-prompt carrying the concrete error; when the
// schema budget runs out the error wraps core.ErrSchema.
func (g *Generator) Generate(ctx context.Context, req Request) ([]core.Suggestion, error) {
	systemPrompt := buildSystemPrompt()
	groundedPrompt := buildUserPrompt(req)
	userPrompt := groundedPrompt

	var lastSchemaErr error
	for attempt := 1; attempt <= g.schemaAttempts; attempt++ {
		var raw string
		err := g.policy.Do(ctx, func(ctx context.Context) error {
			response, err := g.model.Complete(ctx, systemPrompt, userPrompt)
			if err != nil {
				return err
			}
			if strings.TrimSpace(response) == "" {
				return ErrEmptyResponse
			}
			raw = response
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrGeneration, err)
		}

		suggestions, parseErr := parseSuggestions(raw)
		if parseErr == nil {
			g.logger.Debug("generated suggestions",
				"count", len(suggestions),
				"schema_attempts", attempt)
			return suggestions, nil
		}

		lastSchemaErr = parseErr
		g.logger.Warn("response failed schema validation",
			"attempt", attempt,
			"of", g.schemaAttempts,
			"err", parseErr)

		// The next round repeats the grounding material and tells the
		// model what was wrong with its output.
		userPrompt = buildCorrectivePrompt(groundedPrompt, parseErr)
	}

	return nil, fmt.Errorf("%w: after %d attempts: %w",
		core.ErrSchema, g.schemaAttempts, lastSchemaErr)
}

// parseSuggestions strips fences, repairs common JSON malformations,
// unmarshals the envelope, and validates every suggestion.
func parseSuggestions(raw string) ([]core.Suggestion, error) {
	text := repairJSON(stripFences(raw))

	var envelope suggestionEnvelope
	if err := json.Unmarshal([]byte(text), &envelope); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	if err := core.ValidateSuggestions(envelope.Suggestions); err != nil {
		return nil, err
	}
	return envelope.Suggestions, nil
}
