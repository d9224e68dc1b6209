package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
	APIBind string `toml:"api_bind"`
}

// Normalization controls how document text becomes a vocabulary set.
type Normalization struct {
	// Policy is "merge" (strip punctuation without a boundary) or "space"
	// (replace punctuation with a word boundary). Default: merge
	Policy         string `toml:"policy"`
	FoldDiacritics bool   `toml:"fold_diacritics"`
}

// Documents contains ingestion limits and duplicate-name handling.
type Documents struct {
	// DuplicateNames is "suffix" (rename later duplicates "name (2)") or
	// "reject" (fail the run). Default: suffix
	DuplicateNames string   `toml:"duplicate_names"`
	MaxBytes       int64    `toml:"max_bytes"`
	Extensions     []string `toml:"extensions"`
	SkipUnreadable bool     `toml:"skip_unreadable"`
}

// Report contains presentation defaults for the compare command.
type Report struct {
	Format   string `toml:"format"`
	Chart    bool   `toml:"chart"`
	Heatmap  bool   `toml:"heatmap"`
	BarWidth int    `toml:"bar_width"`
	// Color is "auto", "always" or "never".
	Color string `toml:"color"`
}

// History contains configuration for the run history database.
type History struct {
	Enabled      bool `toml:"enabled"`
	DefaultLimit int  `toml:"default_limit"`
	// RetentionDays prunes older runs when the server starts. 0 keeps everything.
	RetentionDays int `toml:"retention_days"`
}

// Cache contains configuration for the extracted-text cache.
type Cache struct {
	Entries int `toml:"entries"`
}

// Server contains configuration for the HTTP API.
type Server struct {
	MaxUploadBytes         int64 `toml:"max_upload_bytes"`
	ReadTimeoutSeconds     int   `toml:"read_timeout_seconds"`
	WriteTimeoutSeconds    int   `toml:"write_timeout_seconds"`
	ShutdownTimeoutSeconds int   `toml:"shutdown_timeout_seconds"`
	// Token, when set, is required as "Authorization: Bearer <token>".
	Token string `toml:"token"`
}

// Watch contains configuration for directory watch mode.
type Watch struct {
	DebounceMillis int `toml:"debounce_ms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for docsim.
//
// Configuration sections by subsystem:
//   - Paths: data/log directories and API bind address
//   - Normalization: tokenization policy
//   - Documents: accepted extensions, size limit, duplicate names
//   - Report: output format, chart/heatmap defaults, colors
//   - History: SQLite run history
//   - Cache: extracted-text LRU size
//   - Server: HTTP API limits and timeouts
//   - Watch: directory watch debounce
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Normalization Normalization `toml:"normalization"`
	Documents     Documents     `toml:"documents"`
	Report        Report        `toml:"report"`
	History       History       `toml:"history"`
	Cache         Cache         `toml:"cache"`
	Server        Server        `toml:"server"`
	Watch         Watch         `toml:"watch"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("docsim.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HistoryPath returns the SQLite run history location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.DataDir, "history.db")
}

// LockPath returns the lock file guarding single-instance server execution.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "docsim.lock")
}

// SupportsExtension reports whether a file name carries an accepted extension.
func (c *Config) SupportsExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	for _, allowed := range c.Documents.Extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
