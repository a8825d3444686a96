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


package core

import "errors"

// Pipeline failure taxonomy. Every stage error wraps exactly one of
// these sentinels so callers can classify failures with errors.Is.
var (
	// ErrValidation indicates bad input; no side effects were attempted.
	ErrValidation = errors.New("validation failed")

	// ErrAcquisition indicates the repository was unreachable or
	// inaccessible. Terminal.
	ErrAcquisition = errors.New("repository acquisition failed")

	// ErrIndexing indicates the embedding service was unusable while
	// building the index. Terminal.
	ErrIndexing = errors.New("index build failed")

	// ErrRetrieval indicates a query-time embedding failure.
	// Recoverable: the pipeline may proceed with empty retrieved context.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrGeneration indicates a permanent model-call failure, or
	// exhaustion of the transient retry budget. Terminal.
	ErrGeneration = errors.New("generation failed")

	// ErrSchema indicates the model output never conformed to the
	// suggestion schema within the corrective retry budget. Terminal.
	ErrSchema = errors.New("suggestion schema validation failed")
)

// Suggestion validation errors.
var (
	// ErrInvalidSuggestion indicates a Suggestion failed validation.
	ErrInvalidSuggestion = errors.New("invalid suggestion")

	// ErrEmptyField indicates a mandatory suggestion field is empty.
	ErrEmptyField = errors.New("mandatory field is empty")

	// ErrInvalidCategory indicates an unknown suggestion category.
	ErrInvalidCategory = errors.New("invalid suggestion category")
)

// ErrorKind maps a stage error to the kind label used in failure
// records. Unrecognized errors report as "internal".
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrAcquisition):
		return "acquisition"
	case errors.Is(err, ErrIndexing):
		return "indexing"
	case errors.Is(err, ErrRetrieval):
		return "retrieval"
	case errors.Is(err, ErrSchema):
		return "schema"
	case errors.Is(err, ErrGeneration):
		return "generation"
	default:
		return "internal"
	}
}
