package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"docsim/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "docsim", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "docsim")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.LogDir != filepath.Join(wantData, "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.HistoryPath() != filepath.Join(wantData, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}
	if cfg.Normalization.Policy != "merge" {
		t.Fatalf("expected merge policy by default, got %q", cfg.Normalization.Policy)
	}
	if cfg.Documents.DuplicateNames != "suffix" {
		t.Fatalf("expected suffix duplicate handling by default, got %q", cfg.Documents.DuplicateNames)
	}
	if cfg.Report.Format != "table" {
		t.Fatalf("expected table report format by default, got %q", cfg.Report.Format)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
}

func TestLoadCustomConfig(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := `
[paths]
data_dir = "~/custom-data"

[normalization]
policy = " SPACE "
fold_diacritics = true

[documents]
duplicate_names = "reject"
extensions = ["PDF", ".txt", "pdf"]

[report]
format = "JSON"
heatmap = true

[logging]
level = "DEBUG"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected explicit config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.DataDir != filepath.Join(tempHome, "custom-data") {
		t.Fatalf("unexpected data dir %q", cfg.Paths.DataDir)
	}
	if cfg.Normalization.Policy != "space" || !cfg.Normalization.FoldDiacritics {
		t.Fatalf("unexpected normalization %+v", cfg.Normalization)
	}
	if cfg.Documents.DuplicateNames != "reject" {
		t.Fatalf("unexpected duplicate handling %q", cfg.Documents.DuplicateNames)
	}
	if got := strings.Join(cfg.Documents.Extensions, ","); got != ".pdf,.txt" {
		t.Fatalf("unexpected extensions %q", got)
	}
	if cfg.Report.Format != "json" || !cfg.Report.Heatmap {
		t.Fatalf("unexpected report %+v", cfg.Report)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected log level %q", cfg.Logging.Level)
	}
	if !cfg.SupportsExtension("Essay.PDF") || cfg.SupportsExtension("notes.md") {
		t.Fatal("unexpected SupportsExtension results")
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[paths]\nstaging_dir = \"/tmp\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for unknown config key")
	}
}

func TestLogLevelEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DOCSIM_LOG_LEVEL", "warn")
	t.Chdir(t.TempDir())

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("expected env log level, got %q", cfg.Logging.Level)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"policy", func(c *config.Config) { c.Normalization.Policy = "stem" }, "normalization.policy"},
		{"duplicates", func(c *config.Config) { c.Documents.DuplicateNames = "overwrite" }, "documents.duplicate_names"},
		{"max bytes", func(c *config.Config) { c.Documents.MaxBytes = 0 }, "documents.max_bytes"},
		{"format", func(c *config.Config) { c.Report.Format = "pdf" }, "report.format"},
		{"color", func(c *config.Config) { c.Report.Color = "rainbow" }, "report.color"},
		{"bar width", func(c *config.Config) { c.Report.BarWidth = 2 }, "report.bar_width"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"debounce", func(c *config.Config) { c.Watch.DebounceMillis = 0 }, "watch.debounce_ms"},
		{"cache", func(c *config.Config) { c.Cache.Entries = -1 }, "cache.entries"},
		{"retention", func(c *config.Config) { c.History.RetentionDays = -1 }, "history.retention_days"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestSampleConfigParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var cfg config.Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	def := config.Default()
	if cfg.Normalization.Policy != def.Normalization.Policy {
		t.Fatalf("sample policy %q differs from default %q", cfg.Normalization.Policy, def.Normalization.Policy)
	}
	if cfg.Paths.APIBind != def.Paths.APIBind {
		t.Fatalf("sample api bind %q differs from default %q", cfg.Paths.APIBind, def.Paths.APIBind)
	}
	if cfg.Watch.DebounceMillis != def.Watch.DebounceMillis {
		t.Fatalf("sample debounce %d differs from default %d", cfg.Watch.DebounceMillis, def.Watch.DebounceMillis)
	}
}
