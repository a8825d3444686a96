// Package core defines the domain model for repository analysis:
// chunks of repository text with provenance, extracted keyword scores,
// structured improvement suggestions, and the failure taxonomy shared
// by all pipeline stages.
//
// The package has no external service dependencies. Validation here is
// pure and side-effect free; in particular ValidateRepositoryURL runs
// before any network access is attempted.
package core
