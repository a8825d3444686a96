// Package mock provides test doubles for the ai service interfaces.
//
// The mocks default to deterministic behavior (hash-derived embedding
// vectors, a fixed well-formed suggestion payload) so tests are
// reproducible without any external service. Behavior can be replaced
// per test via function fields, and call counts are recorded for
// assertions.
package mock
