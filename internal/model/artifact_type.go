package model

import (
	"fmt"
	"strings"
)

// ArtifactType represents the kind of configuration artifact being synced.
type ArtifactType string

const (
	// TypeCommand is a slash command, invoked by users as /name.
	TypeCommand ArtifactType = "command"

	// TypeAgent is a sub-agent definition.
	TypeAgent ArtifactType = "agent"

	// TypeMCPConfig is an MCP server configuration document.
	TypeMCPConfig ArtifactType = "mcp_config"

	// TypeSkill is a multi-file skill bundle rooted at SKILL.md.
	TypeSkill ArtifactType = "skill"
)

// IsValid returns true if the artifact type is recognized.
func (t ArtifactType) IsValid() bool {
	switch t {
	case TypeCommand, TypeAgent, TypeMCPConfig, TypeSkill:
		return true
	default:
		return false
	}
}

// AllArtifactTypes returns all supported artifact types.
func AllArtifactTypes() []ArtifactType {
	return []ArtifactType{TypeCommand, TypeAgent, TypeMCPConfig, TypeSkill}
}

// String returns the string representation of the artifact type.
func (t ArtifactType) String() string {
	return string(t)
}

// Description returns a human-readable description of the artifact type.
func (t ArtifactType) Description() string {
	switch t {
	case TypeCommand:
		return "Slash command invoked by users"
	case TypeAgent:
		return "Agent definition"
	case TypeMCPConfig:
		return "MCP server configuration"
	case TypeSkill:
		return "Skill bundle with SKILL.md and companion files"
	default:
		return "Unknown artifact type"
	}
}

// ParseArtifactType converts a string to an ArtifactType.
// Returns an error if the type is not recognized.
func ParseArtifactType(s string) (ArtifactType, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))

	t := ArtifactType(normalized)
	if t.IsValid() {
		return t, nil
	}

	switch normalized {
	case "commands", "slash-command", "slashcommand", "prompt":
		return TypeCommand, nil
	case "agents", "subagent":
		return TypeAgent, nil
	case "mcp", "mcp-config", "mcpconfig", "mcp_configs":
		return TypeMCPConfig, nil
	case "skills":
		return TypeSkill, nil
	default:
		return "", fmt.Errorf("unknown artifact type %q (valid: command, agent, mcp_config, skill)", s)
	}
}

// ParseArtifactTypes parses a comma-separated list of artifact types.
// Empty segments are ignored and duplicates are removed, preserving order.
func ParseArtifactTypes(csv string) ([]ArtifactType, error) {
	var types []ArtifactType
	seen := make(map[ArtifactType]bool)
	for _, part := range strings.Split(csv, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		t, err := ParseArtifactType(part)
		if err != nil {
			return nil, err
		}
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	return types, nil
}

// ContainsType reports whether types includes t. An empty filter matches everything.
func ContainsType(types []ArtifactType, t ArtifactType) bool {
	if len(types) == 0 {
		return true
	}
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}
