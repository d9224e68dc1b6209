package testsupport

import (
	"path/filepath"
	"testing"

	"docsim/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Report.Color = "never"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithPolicy overrides the normalization policy on the test config.
func WithPolicy(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Normalization.Policy = policy
	}
}

// WithDuplicateNames overrides the duplicate-name policy on the test config.
func WithDuplicateNames(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Documents.DuplicateNames = policy
	}
}

// WithMaxBytes overrides the per-document size limit on the test config.
func WithMaxBytes(limit int64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Documents.MaxBytes = limit
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
