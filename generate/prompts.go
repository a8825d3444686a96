package generate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/poiesic/repolens/core"
	"github.com/poiesic/repolens/keywords"
)

const suggestionResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "suggestions": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "properties": {
          "title": {
            "type": "string"
          },
          "category": {
            "type": "string",
            "enum": [%s]
          },
          "rationale": {
            "type": "string"
          },
          "proposed_text": {
            "type": "string"
          }
        },
        "required": ["title", "category", "rationale", "proposed_text"],
        "additionalProperties": false
      }
    }
  },
  "required": ["suggestions"],
  "additionalProperties": false
}`

const suggestionPromptTemplate = `You are an expert repository analyst. Given source excerpts and extracted
metadata from a code repository, produce concrete improvement suggestions.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Each suggestion must be concrete and actionable, grounded in the excerpts provided.
- The category field must match exactly one of the listed values: %s.
- title is a short headline (max 10 words). rationale explains why the change helps, in one paragraph.
- proposed_text is ready-to-use content the maintainer could paste into the repository.
- Produce 3-5 suggestions. Never invent files or features that the excerpts do not support.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.`

const correctivePromptTemplate = `Your previous response could not be parsed as valid JSON matching the required
schema. The error was: %s

Respond again with ONLY a valid JSON object matching the schema. No code fences, no commentary, no text
before or after the object.`

// buildSystemPrompt renders the schema and category list into the
// instruction block sent as the system message.
func buildSystemPrompt() string {
	quoted := make([]string, len(core.SuggestionCategories))
	for i, c := range core.SuggestionCategories {
		quoted[i] = fmt.Sprintf("%q", string(c))
	}
	schema := fmt.Sprintf(suggestionResponseSchema, strings.Join(quoted, ", "))

	names := make([]string, len(core.SuggestionCategories))
	for i, c := range core.SuggestionCategories {
		names[i] = string(c)
	}
	return fmt.Sprintf(suggestionPromptTemplate, schema, strings.Join(names, ", "))
}

// buildUserPrompt assembles the grounding material: repository URL,
// retrieved source excerpts, and extracted metadata.
func buildUserPrompt(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "REPOSITORY: %s\n\n", req.RepositoryURL)

	b.WriteString("SOURCE EXCERPTS:\n")
	if len(req.Context) == 0 {
		b.WriteString("(no excerpts retrieved; rely on the metadata below)\n")
	}
	for _, sc := range req.Context {
		fmt.Fprintf(&b, "--- %s ---\n%s\n", sc.Chunk.SourcePath, sc.Chunk.Text)
	}

	b.WriteString("\nEXTRACTED METADATA:\n")
	meta, err := json.MarshalIndent(req.Metadata, "", "  ")
	if err != nil {
		// Metadata is plain structs; this cannot realistically fail.
		meta = []byte("{}")
	}
	b.Write(meta)

	return b.String()
}

// buildCorrectivePrompt asks the model to try again after a schema
// violation. The chat model is stateless, so the retry must carry the
// full grounded prompt again; the corrective instruction quoting the
// parse or validation error is appended to it.
func buildCorrectivePrompt(grounded string, parseErr error) string {
	return grounded + "\n\n" + fmt.Sprintf(correctivePromptTemplate, parseErr)
}

// Request carries everything the generator grounds its prompt on.
type Request struct {
	RepositoryURL string
	Context       []core.ScoredChunk
	Metadata      keywords.Metadata
}
