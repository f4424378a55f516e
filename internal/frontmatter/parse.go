// Package frontmatter parses YAML frontmatter from markdown notes.
package frontmatter

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParsedNote represents a parsed markdown note with YAML frontmatter.
type ParsedNote struct {
	// Frontmatter is the raw YAML frontmatter as a map
	Frontmatter map[string]any
	// Body is the content after the frontmatter
	Body string
}

// ParseMarkdown parses markdown content with YAML frontmatter.
// Returns the parsed frontmatter and body, or an error if the format is invalid.
func ParseMarkdown(content []byte) (*ParsedNote, error) {
	trimmed := bytes.TrimSpace(content)
	if !bytes.HasPrefix(trimmed, []byte("---")) {
		return nil, fmt.Errorf("invalid markdown format: missing opening frontmatter delimiter")
	}

	parts := bytes.SplitN(trimmed, []byte("---"), 3)
	if len(parts) < 3 {
		return nil, fmt.Errorf("invalid markdown format: missing closing frontmatter delimiter")
	}

	var fm map[string]any
	if err := yaml.Unmarshal(parts[1], &fm); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	return &ParsedNote{
		Frontmatter: fm,
		Body:        strings.TrimSpace(string(parts[2])),
	}, nil
}

// GetString retrieves a string value from frontmatter by key.
// Returns the empty string when the key is missing or not a string.
func (p *ParsedNote) GetString(key string) string {
	val, ok := p.Frontmatter[key]
	if !ok {
		return ""
	}
	if s, ok := val.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
