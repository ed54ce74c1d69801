package util

import (
	"os"
	"path/filepath"
	"strings"
)

// HomeDir returns the user's home directory
func HomeDir() string {
	home, _ := os.UserHomeDir()
	return home
}

// AgentsyncHome returns the agentsync state directory.
// AGENTSYNC_HOME overrides the default of ~/.agentsync.
func AgentsyncHome() string {
	if v := os.Getenv("AGENTSYNC_HOME"); v != "" {
		return v
	}
	return filepath.Join(HomeDir(), ".agentsync")
}

// DefaultStorePath returns the default catalogue database path.
func DefaultStorePath() string {
	return filepath.Join(AgentsyncHome(), "catalogue.db")
}

// DefaultBlobPath returns the default companion blob directory.
func DefaultBlobPath() string {
	return filepath.Join(AgentsyncHome(), "blobs")
}

// DefaultBackupPath returns the default directory for pre-delete snapshots.
func DefaultBackupPath() string {
	return filepath.Join(AgentsyncHome(), "backups")
}

// GlobalConfigRoot returns the user-level agent configuration root.
func GlobalConfigRoot() string {
	return filepath.Join(HomeDir(), ".claude")
}

// ProjectConfigRoot returns the project-level agent configuration root.
func ProjectConfigRoot(projectDir string) string {
	return filepath.Join(projectDir, ".claude")
}

// ExpandPath expands a leading ~ to the home directory and resolves
// relative paths against baseDir. Empty input yields an empty string.
func ExpandPath(path, baseDir string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		return HomeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(HomeDir(), path[2:])
	}
	if filepath.IsAbs(path) || baseDir == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(baseDir, path)
}
