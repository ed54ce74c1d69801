// Package config provides configuration management for agentsync.
// It supports YAML configuration files, environment variables, and sensible defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/klauern/agentsync/internal/model"
	"github.com/klauern/agentsync/internal/util"
)

// Config represents the complete agentsync configuration.
type Config struct {
	// Server configures the remote backend and the serve command
	Server ServerConfig `yaml:"server"`

	// Store configures the local catalogue
	Store StoreConfig `yaml:"store"`

	// Roots configures where agent configuration is scanned from
	Roots RootsConfig `yaml:"roots"`

	// Sync configures default synchronization behavior
	Sync SyncConfig `yaml:"sync"`

	// Output configures display preferences
	Output OutputConfig `yaml:"output"`
}

// ServerConfig holds remote backend settings.
type ServerConfig struct {
	// URL is the agentsync server. Empty means sync against the local catalogue.
	URL string `yaml:"url,omitempty"`
	// Token is the bearer token sent to the server
	Token string `yaml:"token,omitempty"`
	// Owner identifies whose artifacts a local sync touches
	Owner string `yaml:"owner"`
	// Timeout bounds each request to the server
	Timeout time.Duration `yaml:"timeout"`
	// Addr is the listen address for the serve command
	Addr string `yaml:"addr"`
	// Tokens maps bearer tokens to owner ids for the serve command
	Tokens map[string]string `yaml:"tokens,omitempty"`
}

// StoreConfig holds local catalogue settings.
type StoreConfig struct {
	// Path is the SQLite catalogue file
	Path string `yaml:"path"`
	// BlobPath is the companion file object directory
	BlobPath string `yaml:"blob_path"`
	// BackupPath holds snapshots of artifacts taken before deletion
	BackupPath string `yaml:"backup_path"`
	// KeepBackups is how many snapshots to retain (0 disables snapshots)
	KeepBackups int `yaml:"keep_backups"`
}

// RootsConfig holds the configuration roots to scan.
type RootsConfig struct {
	// Global is the user-level root. ~ is expanded.
	Global string `yaml:"global"`
	// Project is the project-level root, relative to the working directory unless absolute.
	Project string `yaml:"project"`
}

// SyncConfig holds synchronization defaults.
type SyncConfig struct {
	// Types restricts sync to these artifact types when --types is not given
	Types []string `yaml:"types,omitempty"`
	// DeepCompare compares companion file hashes as well as paths
	DeepCompare bool `yaml:"deep_compare"`
	// SecretScan warns about likely credentials before syncing
	SecretScan bool `yaml:"secret_scan"`
}

// OutputConfig holds display preferences.
type OutputConfig struct {
	// Color controls color output (auto, always, never)
	Color string `yaml:"color"`
	// Verbose enables verbose output
	Verbose bool `yaml:"verbose"`
}

// DefaultTimeout is the default server request timeout.
const DefaultTimeout = 30 * time.Second

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Owner:   "local",
			Timeout: DefaultTimeout,
			Addr:    "127.0.0.1:8420",
		},
		Store: StoreConfig{
			Path:        util.DefaultStorePath(),
			BlobPath:    util.DefaultBlobPath(),
			BackupPath:  util.DefaultBackupPath(),
			KeepBackups: 10,
		},
		Roots: RootsConfig{
			Global:  "~/.claude",
			Project: ".claude",
		},
		Sync: SyncConfig{
			SecretScan: true,
		},
		Output: OutputConfig{
			Color:   "auto",
			Verbose: false,
		},
	}
}

// configFileName is the name of the config file.
const configFileName = "config.yaml"

// FilePath returns the path to the config file.
func FilePath() string {
	return filepath.Join(util.AgentsyncHome(), configFileName)
}

// Load loads the configuration from file, merging with defaults.
// If the config file doesn't exist, returns default configuration.
func Load() (*Config, error) {
	cfg := Default()

	configPath := FilePath()
	// #nosec G304 - configPath is constructed from trusted config directory
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvironment()
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnvironment()
	return cfg, nil
}

// LoadFromPath loads configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	// #nosec G304 - path is provided by caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnvironment()
	return cfg, nil
}

// Save writes the configuration to the config file.
func (c *Config) Save() error {
	return c.SaveToPath(FilePath())
}

// SaveToPath writes the configuration to a specific path.
// The file may hold tokens, so it is written owner-only.
func (c *Config) SaveToPath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	data, err := c.YAML()
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// YAML returns the configuration encoded as YAML.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// Redacted returns a copy with secrets masked, for display.
func (c *Config) Redacted() *Config {
	out := *c
	if out.Server.Token != "" {
		out.Server.Token = "********"
	}
	if len(c.Server.Tokens) > 0 {
		out.Server.Tokens = make(map[string]string, len(c.Server.Tokens))
		for token, owner := range c.Server.Tokens {
			out.Server.Tokens[mask(token)] = owner
		}
	}
	return &out
}

func mask(token string) string {
	if len(token) <= 4 {
		return "****"
	}
	return token[:4] + "****"
}

// applyEnvironment applies environment variable overrides.
// Environment variables follow the pattern AGENTSYNC_<SECTION>_<KEY>.
func (c *Config) applyEnvironment() {
	// Server settings
	if v := os.Getenv("AGENTSYNC_SERVER_URL"); v != "" {
		c.Server.URL = v
	}
	if v := os.Getenv("AGENTSYNC_TOKEN"); v != "" {
		c.Server.Token = v
	}
	if v := os.Getenv("AGENTSYNC_OWNER"); v != "" {
		c.Server.Owner = v
	}
	if v := os.Getenv("AGENTSYNC_SERVER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			c.Server.Timeout = d
		}
	}

	// Roots
	if v := os.Getenv("AGENTSYNC_GLOBAL_ROOT"); v != "" {
		c.Roots.Global = v
	}
	if v := os.Getenv("AGENTSYNC_PROJECT_ROOT"); v != "" {
		c.Roots.Project = v
	}

	// Store settings
	if v := os.Getenv("AGENTSYNC_STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("AGENTSYNC_BLOB_PATH"); v != "" {
		c.Store.BlobPath = v
	}
	if v := os.Getenv("AGENTSYNC_BACKUP_PATH"); v != "" {
		c.Store.BackupPath = v
	}

	// Output settings
	if v := os.Getenv("AGENTSYNC_OUTPUT_COLOR"); v != "" {
		c.Output.Color = v
	}
	if v := os.Getenv("AGENTSYNC_OUTPUT_VERBOSE"); v != "" {
		c.Output.Verbose = parseBool(v)
	}
}

// parseBool parses a boolean from common string representations.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// GlobalRoot returns the expanded global configuration root.
func (c *Config) GlobalRoot() string {
	if c.Roots.Global == "" {
		return util.GlobalConfigRoot()
	}
	return util.ExpandPath(c.Roots.Global, "")
}

// ProjectRoot returns the project configuration root resolved against baseDir.
func (c *Config) ProjectRoot(baseDir string) string {
	if c.Roots.Project == "" {
		return util.ProjectConfigRoot(baseDir)
	}
	return util.ExpandPath(c.Roots.Project, baseDir)
}

// StorePath returns the expanded catalogue path.
func (c *Config) StorePath() string {
	if c.Store.Path == "" {
		return util.DefaultStorePath()
	}
	return util.ExpandPath(c.Store.Path, "")
}

// BlobPath returns the expanded blob directory.
func (c *Config) BlobPath() string {
	if c.Store.BlobPath == "" {
		return util.DefaultBlobPath()
	}
	return util.ExpandPath(c.Store.BlobPath, "")
}

// BackupPath returns the expanded snapshot directory.
func (c *Config) BackupPath() string {
	if c.Store.BackupPath == "" {
		return util.DefaultBackupPath()
	}
	return util.ExpandPath(c.Store.BackupPath, "")
}

// SyncTypes parses the configured default type filter.
func (c *Config) SyncTypes() ([]model.ArtifactType, error) {
	return model.ParseArtifactTypes(strings.Join(c.Sync.Types, ","))
}

// Exists returns true if a config file exists.
func Exists() bool {
	_, err := os.Stat(FilePath())
	return err == nil
}
