package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauern/agentsync/internal/model"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	if cfg.Server.URL != "" {
		t.Errorf("expected no default server URL, got %q", cfg.Server.URL)
	}
	if cfg.Server.Timeout != 30*time.Second {
		t.Errorf("expected Server.Timeout to be 30s, got %v", cfg.Server.Timeout)
	}
	if cfg.Server.Owner != "local" {
		t.Errorf("expected Server.Owner to be 'local', got %q", cfg.Server.Owner)
	}
	if cfg.Roots.Global != "~/.claude" {
		t.Errorf("expected Roots.Global to be '~/.claude', got %q", cfg.Roots.Global)
	}
	if cfg.Roots.Project != ".claude" {
		t.Errorf("expected Roots.Project to be '.claude', got %q", cfg.Roots.Project)
	}
	if cfg.Output.Color != "auto" {
		t.Errorf("expected Output.Color to be 'auto', got %q", cfg.Output.Color)
	}
	if cfg.Sync.DeepCompare {
		t.Error("expected DeepCompare to be false by default")
	}
	if !cfg.Sync.SecretScan {
		t.Error("expected SecretScan to be true by default")
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg := Default()
	cfg.Server.URL = "https://sync.example.com"
	cfg.Server.Timeout = 2 * time.Minute
	cfg.Server.Tokens = map[string]string{"tok": "alice"}
	cfg.Sync.Types = []string{"command", "skill"}
	cfg.Output.Verbose = true

	if err := cfg.SaveToPath(configPath); err != nil {
		t.Fatalf("SaveToPath failed: %v", err)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected config mode 0600, got %o", info.Mode().Perm())
	}

	loaded, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if loaded.Server.URL != "https://sync.example.com" {
		t.Errorf("expected server URL, got %q", loaded.Server.URL)
	}
	if loaded.Server.Timeout != 2*time.Minute {
		t.Errorf("expected Timeout 2m, got %v", loaded.Server.Timeout)
	}
	if loaded.Server.Tokens["tok"] != "alice" {
		t.Errorf("expected token table to round trip, got %v", loaded.Server.Tokens)
	}
	if !loaded.Output.Verbose {
		t.Error("expected Verbose to be true")
	}
	if len(loaded.Sync.Types) != 2 {
		t.Errorf("expected 2 sync types, got %v", loaded.Sync.Types)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	tests := map[string]struct {
		envKey   string
		envValue string
		check    func(*Config) bool
	}{
		"server url": {
			envKey:   "AGENTSYNC_SERVER_URL",
			envValue: "http://localhost:9000",
			check:    func(c *Config) bool { return c.Server.URL == "http://localhost:9000" },
		},
		"token": {
			envKey:   "AGENTSYNC_TOKEN",
			envValue: "abc",
			check:    func(c *Config) bool { return c.Server.Token == "abc" },
		},
		"owner": {
			envKey:   "AGENTSYNC_OWNER",
			envValue: "alice",
			check:    func(c *Config) bool { return c.Server.Owner == "alice" },
		},
		"server timeout": {
			envKey:   "AGENTSYNC_SERVER_TIMEOUT",
			envValue: "5s",
			check:    func(c *Config) bool { return c.Server.Timeout == 5*time.Second },
		},
		"invalid timeout ignored": {
			envKey:   "AGENTSYNC_SERVER_TIMEOUT",
			envValue: "soon",
			check:    func(c *Config) bool { return c.Server.Timeout == DefaultTimeout },
		},
		"global root": {
			envKey:   "AGENTSYNC_GLOBAL_ROOT",
			envValue: "/etc/agents",
			check:    func(c *Config) bool { return c.Roots.Global == "/etc/agents" },
		},
		"project root": {
			envKey:   "AGENTSYNC_PROJECT_ROOT",
			envValue: ".agents",
			check:    func(c *Config) bool { return c.Roots.Project == ".agents" },
		},
		"store path": {
			envKey:   "AGENTSYNC_STORE_PATH",
			envValue: "/tmp/cat.db",
			check:    func(c *Config) bool { return c.Store.Path == "/tmp/cat.db" },
		},
		"blob path": {
			envKey:   "AGENTSYNC_BLOB_PATH",
			envValue: "/tmp/blobs",
			check:    func(c *Config) bool { return c.Store.BlobPath == "/tmp/blobs" },
		},
		"output verbose": {
			envKey:   "AGENTSYNC_OUTPUT_VERBOSE",
			envValue: "true",
			check:    func(c *Config) bool { return c.Output.Verbose },
		},
		"output color": {
			envKey:   "AGENTSYNC_OUTPUT_COLOR",
			envValue: "never",
			check:    func(c *Config) bool { return c.Output.Color == "never" },
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(tt.envKey, tt.envValue)

			cfg := Default()
			cfg.applyEnvironment()

			if !tt.check(cfg) {
				t.Errorf("environment override for %s did not apply correctly", tt.envKey)
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"on", true},
		{"false", false},
		{"0", false},
		{"no", false},
		{"off", false},
		{"", false},
		{"invalid", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := parseBool(tt.input)
			if result != tt.expected {
				t.Errorf("parseBool(%q) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("AGENTSYNC_HOME", tmpDir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() should not fail for non-existent file: %v", err)
	}

	if cfg.StorePath() != filepath.Join(tmpDir, "catalogue.db") {
		t.Errorf("expected store under AGENTSYNC_HOME, got %q", cfg.StorePath())
	}
	if cfg.BlobPath() != filepath.Join(tmpDir, "blobs") {
		t.Errorf("expected blobs under AGENTSYNC_HOME, got %q", cfg.BlobPath())
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// #nosec G306 - test file permissions are acceptable
	if err := os.WriteFile(configPath, []byte("invalid: yaml: content:"), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	_, err := LoadFromPath(configPath)
	if err == nil {
		t.Error("LoadFromPath should fail for invalid YAML")
	}
}

func TestPartialConfigMerge(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	partialConfig := `
server:
  url: "https://sync.example.com"
  timeout: 10s
`
	// #nosec G306 - test file permissions are acceptable
	if err := os.WriteFile(configPath, []byte(partialConfig), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Server.URL != "https://sync.example.com" {
		t.Errorf("expected server URL from file, got %q", cfg.Server.URL)
	}
	if cfg.Server.Timeout != 10*time.Second {
		t.Errorf("expected Timeout 10s, got %v", cfg.Server.Timeout)
	}

	// Defaults should still be present for non-specified values
	if cfg.Server.Owner != "local" {
		t.Errorf("expected Owner to retain default, got %q", cfg.Server.Owner)
	}
	if cfg.Roots.Project != ".claude" {
		t.Errorf("expected Roots.Project to retain default, got %q", cfg.Roots.Project)
	}
}

func TestExists(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("AGENTSYNC_HOME", tmpDir)

	if Exists() {
		t.Error("Exists() should return false for non-existent config")
	}

	cfg := Default()
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if !Exists() {
		t.Error("Exists() should return true after saving config")
	}
}

func TestRoots(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := map[string]struct {
		global, project string
		wantGlobal      string
		wantProject     string
	}{
		"defaults": {
			global:      "~/.claude",
			project:     ".claude",
			wantGlobal:  filepath.Join(home, ".claude"),
			wantProject: filepath.Join("/work/repo", ".claude"),
		},
		"absolute": {
			global:      "/etc/agents",
			project:     "/srv/agents",
			wantGlobal:  "/etc/agents",
			wantProject: "/srv/agents",
		},
		"empty falls back": {
			wantGlobal:  filepath.Join(home, ".claude"),
			wantProject: filepath.Join("/work/repo", ".claude"),
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			cfg.Roots.Global = tt.global
			cfg.Roots.Project = tt.project

			if got := cfg.GlobalRoot(); got != tt.wantGlobal {
				t.Errorf("GlobalRoot() = %q, want %q", got, tt.wantGlobal)
			}
			if got := cfg.ProjectRoot("/work/repo"); got != tt.wantProject {
				t.Errorf("ProjectRoot() = %q, want %q", got, tt.wantProject)
			}
		})
	}
}

func TestSyncTypes(t *testing.T) {
	cfg := Default()

	types, err := cfg.SyncTypes()
	if err != nil {
		t.Fatalf("SyncTypes() error = %v", err)
	}
	if len(types) != 0 {
		t.Errorf("expected no default type filter, got %v", types)
	}

	cfg.Sync.Types = []string{"commands", "skill", "command"}
	types, err = cfg.SyncTypes()
	if err != nil {
		t.Fatalf("SyncTypes() error = %v", err)
	}
	if len(types) != 2 || types[0] != model.TypeCommand || types[1] != model.TypeSkill {
		t.Errorf("SyncTypes() = %v", types)
	}

	cfg.Sync.Types = []string{"widget"}
	if _, err := cfg.SyncTypes(); err == nil {
		t.Error("SyncTypes() expected error for unknown type")
	}
}

func TestRedacted(t *testing.T) {
	cfg := Default()
	cfg.Server.Token = "super-secret"
	cfg.Server.Tokens = map[string]string{"abcdefgh": "alice"}

	redacted := cfg.Redacted()
	data, err := redacted.YAML()
	if err != nil {
		t.Fatalf("YAML() error = %v", err)
	}
	out := string(data)

	if strings.Contains(out, "super-secret") || strings.Contains(out, "abcdefgh") {
		t.Errorf("redacted output leaks a token:\n%s", out)
	}
	if !strings.Contains(out, "abcd****") {
		t.Errorf("expected masked token table:\n%s", out)
	}
	if cfg.Server.Token != "super-secret" {
		t.Error("Redacted() modified the original config")
	}
}
