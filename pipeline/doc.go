// Package pipeline orchestrates a repository analysis run as a linear
// state machine: validate, ingest, index, extract keywords, generate
// suggestions.
//
// Stage implementations are injected as interfaces so each can be
// tested in isolation. A run produces a Context value describing how
// far it got; terminal failures carry a structured failure record and
// skip the remaining stages, while a retrieval failure degrades the
// run instead of ending it.
package pipeline
