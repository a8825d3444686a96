package keywords

import (
	"strings"

	"github.com/poiesic/repolens/core"
)

// Metadata holds keyword-derived repository metadata suggestions.
type Metadata struct {
	Keywords   []core.KeywordScore `json:"keywords"`
	Tags       []string            `json:"tags"`
	Categories []string            `json:"categories"`
	Badges     []string            `json:"badges_to_add"`
}

// categoryRules map content markers to suggested categories. Matching
// is on the extracted keyword terms, so it stays deterministic.
var categoryRules = []struct {
	category string
	markers  []string
}{
	{"LLM/Generative AI", []string{"rag", "agent", "llm", "embedding", "prompt"}},
	{"Go Development", []string{"golang", "goroutine", "func", "package"}},
	{"Python Development", []string{"python", "pip", "django", "flask"}},
	{"Web Development", []string{"http", "server", "api", "frontend", "react"}},
	{"Data Science", []string{"data", "analysis", "model", "dataset", "pandas"}},
	{"Infrastructure", []string{"docker", "kubernetes", "terraform", "deploy"}},
}

// defaultBadges are generic improvement badges suggested for every
// repository until a model-driven pass refines them.
var defaultBadges = []string{
	"[Maintenance] Needs Review",
	"[License] Recommended MIT",
	"[Status] Work in Progress",
}

// maxTagKeywords caps how many top keywords become tags.
const maxTagKeywords = 5

// SuggestMetadata derives tags, categories and badge suggestions from
// the extracted keyword list. Like Extract, it is pure and
// deterministic; zero keywords yields empty tags and categories.
func SuggestMetadata(scores []core.KeywordScore) Metadata {
	terms := make(map[string]bool, len(scores))
	for _, s := range scores {
		terms[strings.ToLower(s.Term)] = true
	}

	var categories []string
	for _, rule := range categoryRules {
		for _, marker := range rule.markers {
			if terms[marker] {
				categories = append(categories, rule.category)
				break
			}
		}
	}

	// Tags: top keywords plus categories, de-duplicated, order preserved.
	seen := make(map[string]bool)
	var tags []string
	for i, s := range scores {
		if i >= maxTagKeywords {
			break
		}
		if !seen[s.Term] {
			seen[s.Term] = true
			tags = append(tags, s.Term)
		}
	}
	for _, c := range categories {
		if !seen[c] {
			seen[c] = true
			tags = append(tags, c)
		}
	}

	return Metadata{
		Keywords:   scores,
		Tags:       tags,
		Categories: categories,
		Badges:     defaultBadges,
	}
}
