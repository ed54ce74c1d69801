package scanner

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/jsonc"

	"github.com/klauern/agentsync/internal/model"
)

// mcpDocuments accepts MCP server configs written as JSON, JSON with
// comments, or TOML. Documents that do not parse are reported, not synced.
var mcpDocuments = documentKind{
	artifactType: model.TypeMCPConfig,
	extensions:   []string{".json", ".jsonc", ".toml"},
	validate:     validateMCPConfig,
}

func validateMCPConfig(path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var doc map[string]any
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return fmt.Errorf("invalid mcp config: %w", err)
		}
	default:
		stripped := jsonc.ToJSON(data)
		if !json.Valid(stripped) {
			return errors.New("invalid mcp config: malformed JSON")
		}
		var doc map[string]any
		if err := json.Unmarshal(stripped, &doc); err != nil {
			return fmt.Errorf("invalid mcp config: %w", err)
		}
	}
	return nil
}
