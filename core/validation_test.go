package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRepositoryURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"github https", "https://github.com/acme/widgets", false},
		{"github http", "http://github.com/acme/widgets", false},
		{"git suffix", "https://github.com/acme/widgets.git", false},
		{"trailing slash", "https://github.com/acme/widgets/", false},
		{"uppercase host", "https://GitHub.COM/acme/widgets", false},
		{"gitlab host", "https://gitlab.com/group/project", false},
		{"dotted repo", "https://github.com/acme/widgets.js", false},
		{"empty", "", true},
		{"ftp scheme", "ftp://bad", true},
		{"no path", "https://github.com", true},
		{"owner only", "https://github.com/acme", true},
		{"extra segment", "https://github.com/acme/widgets/tree/main", true},
		{"whitespace", " https://github.com/acme/widgets", true},
		{"not a url", "github.com/acme/widgets", true},
		{"scp style", "git@github.com:acme/widgets.git", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRepositoryURL(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateSuggestion(t *testing.T) {
	valid := Suggestion{
		Title:        "Add installation section",
		Category:     CategoryDocumentation,
		Rationale:    "The README never explains how to install the tool.",
		ProposedText: "## Installation\n\nRun `go install ...`",
	}

	t.Run("valid", func(t *testing.T) {
		s := valid
		assert.NoError(t, ValidateSuggestion(&s))
	})

	t.Run("nil", func(t *testing.T) {
		err := ValidateSuggestion(nil)
		assert.ErrorIs(t, err, ErrInvalidSuggestion)
	})

	t.Run("blank title", func(t *testing.T) {
		s := valid
		s.Title = "   "
		err := ValidateSuggestion(&s)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmptyField)
	})

	t.Run("empty rationale", func(t *testing.T) {
		s := valid
		s.Rationale = ""
		assert.ErrorIs(t, ValidateSuggestion(&s), ErrEmptyField)
	})

	t.Run("empty proposed text", func(t *testing.T) {
		s := valid
		s.ProposedText = ""
		assert.ErrorIs(t, ValidateSuggestion(&s), ErrEmptyField)
	})

	t.Run("unknown category", func(t *testing.T) {
		s := valid
		s.Category = "style"
		err := ValidateSuggestion(&s)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidCategory)
	})
}

func TestValidateSuggestions(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		assert.ErrorIs(t, ValidateSuggestions(nil), ErrInvalidSuggestion)
	})

	t.Run("one bad element", func(t *testing.T) {
		suggestions := []Suggestion{
			{Title: "ok", Category: CategoryOther, Rationale: "r", ProposedText: "p"},
			{Title: "", Category: CategoryOther, Rationale: "r", ProposedText: "p"},
		}
		err := ValidateSuggestions(suggestions)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidSuggestion)
	})
}

func TestIDFromContent(t *testing.T) {
	a := IDFromContent("hello")
	b := IDFromContent("hello")
	c := IDFromContent("world")

	assert.Equal(t, a, b, "identical content must produce identical IDs")
	assert.NotEqual(t, a, c)
}

func TestChunkID_IncludesProvenance(t *testing.T) {
	a := Chunk{Text: "same text", SourcePath: "README.md"}
	b := Chunk{Text: "same text", SourcePath: "docs/guide.md"}
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "validation", ErrorKind(ErrValidation))
	assert.Equal(t, "acquisition", ErrorKind(ErrAcquisition))
	assert.Equal(t, "indexing", ErrorKind(ErrIndexing))
	assert.Equal(t, "retrieval", ErrorKind(ErrRetrieval))
	assert.Equal(t, "generation", ErrorKind(ErrGeneration))
	assert.Equal(t, "schema", ErrorKind(ErrSchema))
	assert.Equal(t, "internal", ErrorKind(assert.AnError))
}
