// Package openai implements the ai service interfaces over
// OpenAI-compatible HTTP APIs (OpenAI, OpenRouter, Ollama, LocalAI,
// vLLM and similar).
//
// Both the embedder and the chat model share one ai.Config; each
// request is bounded by the configured timeout so a stalled service
// surfaces as a transient failure rather than a hang. CheckHealth
// probes the completion endpoint before a run to catch bad credentials
// early.
package openai
