// Package ai provides abstractions for the external AI services used
// by the analysis pipeline.
//
// Two services are abstracted:
//
//   - Embedder: generates vector embeddings from text
//   - ChatModel: produces a raw completion for a grounded prompt
//
// and Provider aggregates them for initialization and lifecycle
// management. The pipeline depends only on these interfaces; concrete
// implementations live in sub-packages:
//
//   - ai/openai: production implementation over OpenAI-compatible APIs
//   - ai/mock: test doubles for unit testing without external services
//
// Public constructors in ai/openai return interface types to enforce
// abstraction; mock constructors return concrete types so tests can
// inject behavior and assert call counts.
//
// The package also owns failure classification (Classify): every error
// returned by an implementation is either transient (worth retrying)
// or permanent (surfaced immediately). The retry policy in the
// generate package consumes this classification.
package ai
