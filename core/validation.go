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

import (
	"fmt"
	"regexp"
	"strings"
)

// repoURLPattern accepts http(s) URLs of the form
// scheme://host/owner/repo with an optional .git suffix and optional
// trailing slash. The host is matched case-insensitively.
var repoURLPattern = regexp.MustCompile(
	`^https?://(?i:[a-z0-9]([a-z0-9.-]*[a-z0-9])?)/[A-Za-z0-9_-]+/[A-Za-z0-9_.-]+?(\.git)?/?$`)

// ValidateRepositoryURL validates a repository URL against the accepted
// pattern. It performs no network access.
//
// Validation rules:
//   - Scheme must be http or https
//   - Host, owner and repo path segments must all be present
//   - An optional .git suffix and trailing slash are accepted
func ValidateRepositoryURL(rawURL string) error {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return fmt.Errorf("%w: repository URL is empty", ErrValidation)
	}
	if trimmed != rawURL {
		return fmt.Errorf("%w: repository URL has surrounding whitespace", ErrValidation)
	}
	if !repoURLPattern.MatchString(rawURL) {
		return fmt.Errorf("%w: %q is not a valid repository URL", ErrValidation, rawURL)
	}
	return nil
}

// ValidateCategory checks that a category is one of the known values.
func ValidateCategory(category SuggestionCategory) error {
	for _, c := range SuggestionCategories {
		if category == c {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidCategory, category)
}

// ValidateSuggestion validates a Suggestion according to domain rules.
//
// Validation rules:
//   - Title, Rationale and ProposedText must not be blank
//   - Category must be one of the known values
//
// This is the contract the structured generator must satisfy before a
// model result is accepted.
func ValidateSuggestion(s *Suggestion) error {
	if s == nil {
		return fmt.Errorf("%w: suggestion is nil", ErrInvalidSuggestion)
	}

	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("%w: title: %w", ErrInvalidSuggestion, ErrEmptyField)
	}
	if strings.TrimSpace(s.Rationale) == "" {
		return fmt.Errorf("%w: rationale: %w", ErrInvalidSuggestion, ErrEmptyField)
	}
	if strings.TrimSpace(s.ProposedText) == "" {
		return fmt.Errorf("%w: proposed_text: %w", ErrInvalidSuggestion, ErrEmptyField)
	}
	if err := ValidateCategory(s.Category); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSuggestion, err)
	}

	return nil
}

// ValidateSuggestions validates a full suggestion sequence. The
// sequence must be non-empty and every element must validate.
func ValidateSuggestions(suggestions []Suggestion) error {
	if len(suggestions) == 0 {
		return fmt.Errorf("%w: empty suggestion list", ErrInvalidSuggestion)
	}
	for i := range suggestions {
		if err := ValidateSuggestion(&suggestions[i]); err != nil {
			return fmt.Errorf("suggestion %d: %w", i, err)
		}
	}
	return nil
}
