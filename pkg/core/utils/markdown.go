package utils

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"
)

// CleanMarkdown strips conversational filler and outer markdown code
// blocks from a model answer, leaving pure Markdown ready for rendering.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)

	if strings.HasPrefix(cleaned, "```markdown") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```markdown")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	} else if strings.HasPrefix(cleaned, "```") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	return cleaned
}

// ValidateMarkdown checks if the string is valid Markdown using
// Goldmark. Goldmark is very permissive, so this is a basic sanity
// check rather than a linter.
func ValidateMarkdown(input string) bool {
	parser := goldmark.DefaultParser()
	reader := text.NewReader([]byte(input))
	doc := parser.Parse(reader)
	return doc != nil
}
