package scanner

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauern/agentsync/internal/logging"
)

// Subdirectories of a content root, one per artifact category.
const (
	CommandsDir = "commands"
	AgentsDir   = "agents"
	MCPDir      = "mcp"
	SkillsDir   = "skills"
)

// ScanRoot scans one content root for commands, agents, MCP configs and
// skills. Each call uses its own visited set. Missing categories are
// skipped silently. ScanRoot never fails; problems become warnings.
func ScanRoot(root string) Result {
	defer logging.Timer("scan")()

	var acc Result
	visited := NewVisitedSet()

	if dir, ok := categoryDir(root, CommandsDir, &acc); ok {
		walk(dir, commandDocuments, "", visited, &acc)
	}
	if dir, ok := categoryDir(root, AgentsDir, &acc); ok {
		walk(dir, agentDocuments, "", visited, &acc)
	}
	if dir, ok := categoryDir(root, MCPDir, &acc); ok {
		walk(dir, mcpDocuments, "", visited, &acc)
	}
	if dir, ok := categoryDir(root, SkillsDir, &acc); ok {
		packageSkills(dir, visited, &acc)
	}

	logging.Debug("scanned content root",
		logging.Path(root),
		logging.Count(len(acc.Records)),
		"warnings", len(acc.Warnings),
	)

	return acc
}

// ScanRoots scans each root independently and concatenates the results in order.
func ScanRoots(roots ...string) Result {
	var all Result
	for _, root := range roots {
		all.Merge(ScanRoot(root))
	}
	return all
}

// categoryDir returns the category directory below root when it exists.
func categoryDir(root, name string, acc *Result) (string, bool) {
	dir := filepath.Join(root, name)
	if _, err := os.Lstat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logging.Debug("category directory not found", logging.Path(dir))
		} else {
			acc.warn(dir, "cannot stat: "+err.Error())
		}
		return "", false
	}
	if c := Classify(dir); !c.Usable {
		acc.warn(dir, c.Reason)
		return "", false
	}
	info, err := os.Stat(dir)
	if err != nil {
		acc.warn(dir, "cannot stat: "+err.Error())
		return "", false
	}
	if !info.IsDir() {
		acc.warn(dir, "not a directory")
		return "", false
	}
	return dir, true
}
