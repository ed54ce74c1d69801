// Package parser provides helpers for the markdown documents agentsync
// handles: frontmatter splitting, name validation and content normalization.
package parser

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// FrontmatterResult contains the parsed frontmatter and remaining content.
type FrontmatterResult struct {
	// Frontmatter contains the raw frontmatter bytes (YAML or JSON)
	Frontmatter []byte
	// Content contains the remaining content after frontmatter
	Content string
	// HasFrontmatter indicates whether frontmatter was found
	HasFrontmatter bool
}

// SplitFrontmatter extracts YAML or JSON frontmatter from content.
// Supports both --- (YAML) and +++ (TOML/alternative) delimiters.
// Returns the frontmatter bytes, remaining content, and whether frontmatter was found.
func SplitFrontmatter(content []byte) FrontmatterResult {
	// Check for YAML frontmatter (---)
	if bytes.HasPrefix(content, []byte("---\n")) || bytes.HasPrefix(content, []byte("---\r\n")) {
		return extractFrontmatter(content, []byte("---"))
	}

	// Check for alternative frontmatter (+++)
	if bytes.HasPrefix(content, []byte("+++\n")) || bytes.HasPrefix(content, []byte("+++\r\n")) {
		return extractFrontmatter(content, []byte("+++"))
	}

	// No frontmatter found
	return FrontmatterResult{
		Frontmatter:    nil,
		Content:        string(content),
		HasFrontmatter: false,
	}
}

// extractFrontmatter extracts frontmatter between delimiters.
func extractFrontmatter(content []byte, delimiter []byte) FrontmatterResult {
	// Skip opening delimiter
	remaining := content[len(delimiter):]

	// Handle both \n and \r\n line endings
	if bytes.HasPrefix(remaining, []byte("\r\n")) {
		remaining = remaining[2:]
	} else if bytes.HasPrefix(remaining, []byte("\n")) {
		remaining = remaining[1:]
	}

	// Find closing delimiter
	// First check if it's right at the start (empty frontmatter case)
	var frontmatter []byte
	var bodyStart int
	delimFound := false

	if bytes.HasPrefix(remaining, delimiter) {
		// Empty frontmatter case: ---\n---\n
		frontmatter = []byte{}
		bodyStart = len(delimiter)
		delimFound = true
	} else {
		// Try to find closing delimiter preceded by newline
		// Try Unix line ending first
		closingDelim := append([]byte("\n"), delimiter...)
		idx := bytes.Index(remaining, closingDelim)
		if idx != -1 {
			frontmatter = remaining[:idx]
			bodyStart = idx + len(closingDelim)
			delimFound = true
		} else {
			// Try Windows line ending
			closingDelim = append([]byte("\r\n"), delimiter...)
			idx = bytes.Index(remaining, closingDelim)
			if idx != -1 {
				frontmatter = remaining[:idx]
				bodyStart = idx + len(closingDelim)
				delimFound = true
			}
		}
	}

	if !delimFound {
		// No closing delimiter found, treat entire content as no frontmatter
		return FrontmatterResult{
			Frontmatter:    nil,
			Content:        string(content),
			HasFrontmatter: false,
		}
	}

	// Normalize frontmatter by removing \r from Windows line endings
	cleanFrontmatter := bytes.ReplaceAll(frontmatter, []byte("\r\n"), []byte("\n"))
	cleanFrontmatter = bytes.TrimRight(cleanFrontmatter, "\r")

	// Skip trailing newline after closing delimiter
	if bodyStart < len(remaining) {
		if bytes.HasPrefix(remaining[bodyStart:], []byte("\r\n")) {
			bodyStart += 2
		} else if bytes.HasPrefix(remaining[bodyStart:], []byte("\n")) {
			bodyStart++
		}
	}

	var body string
	if bodyStart < len(remaining) {
		body = string(remaining[bodyStart:])
	}

	return FrontmatterResult{
		Frontmatter:    cleanFrontmatter,
		Content:        body,
		HasFrontmatter: true,
	}
}

// ParseYAMLFrontmatter parses YAML frontmatter into a map.
func ParseYAMLFrontmatter(frontmatter []byte) (map[string]interface{}, error) {
	if len(frontmatter) == 0 {
		return make(map[string]interface{}), nil
	}

	var result map[string]interface{}
	if err := yaml.Unmarshal(frontmatter, &result); err != nil {
		return nil, fmt.Errorf("failed to parse YAML frontmatter: %w", err)
	}

	return result, nil
}

// ValidateArtifactName checks if an artifact name can be used as a
// reconciliation key. Names are built from file and directory names, so
// most characters are allowed; path separators, control characters and
// surrounding whitespace are not.
func ValidateArtifactName(name string) error {
	if name == "" {
		return fmt.Errorf("artifact name cannot be empty")
	}

	if strings.TrimSpace(name) != name {
		return fmt.Errorf("artifact name cannot have leading/trailing whitespace: %q", name)
	}

	for _, segment := range strings.Split(name, ":") {
		if segment == "" {
			return fmt.Errorf("artifact name has an empty segment: %q", name)
		}
	}

	for _, r := range name {
		if r == '/' || r == '\\' || unicode.IsControl(r) {
			return fmt.Errorf("artifact name contains invalid character %q: %q", r, name)
		}
	}

	return nil
}

// Description returns the frontmatter description of a markdown document,
// or an empty string when there is none.
func Description(content string) string {
	result := SplitFrontmatter([]byte(content))
	if !result.HasFrontmatter {
		return ""
	}
	fm, err := ParseYAMLFrontmatter(result.Frontmatter)
	if err != nil {
		return ""
	}
	if desc, ok := fm["description"].(string); ok {
		return strings.TrimSpace(desc)
	}
	return ""
}

// NormalizeContent trims surrounding whitespace and converts CRLF line
// endings to LF. Two artifacts are equal when their normalized content is.
func NormalizeContent(content string) string {
	// Trim leading/trailing whitespace
	trimmed := strings.TrimSpace(content)

	// Normalize line endings to \n
	normalized := strings.ReplaceAll(trimmed, "\r\n", "\n")

	return normalized
}
