package config

import (
	"errors"
	"fmt"
	"sort"
)

// ReportFormats lists the output formats the report package can render.
var ReportFormats = []string{"table", "csv", "markdown", "html", "json", "yaml"}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateNormalization(); err != nil {
		return err
	}
	if err := c.validateDocuments(); err != nil {
		return err
	}
	if err := c.validateReport(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.History.RetentionDays < 0 {
		return errors.New("history.retention_days must not be negative")
	}
	return ensurePositiveMap(map[string]int{
		"history.default_limit":           c.History.DefaultLimit,
		"cache.entries":                   c.Cache.Entries,
		"server.read_timeout_seconds":     c.Server.ReadTimeoutSeconds,
		"server.write_timeout_seconds":    c.Server.WriteTimeoutSeconds,
		"server.shutdown_timeout_seconds": c.Server.ShutdownTimeoutSeconds,
		"watch.debounce_ms":               c.Watch.DebounceMillis,
	})
}

func (c *Config) validateNormalization() error {
	switch c.Normalization.Policy {
	case "merge", "space":
		return nil
	default:
		return fmt.Errorf("normalization.policy must be merge or space, got %q", c.Normalization.Policy)
	}
}

func (c *Config) validateDocuments() error {
	switch c.Documents.DuplicateNames {
	case "suffix", "reject":
	default:
		return fmt.Errorf("documents.duplicate_names must be suffix or reject, got %q", c.Documents.DuplicateNames)
	}
	if c.Documents.MaxBytes <= 0 {
		return errors.New("documents.max_bytes must be positive")
	}
	if len(c.Documents.Extensions) == 0 {
		return errors.New("documents.extensions must include at least one extension")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return errors.New("server.max_upload_bytes must be positive")
	}
	return nil
}

func (c *Config) validateReport() error {
	if !contains(ReportFormats, c.Report.Format) {
		return fmt.Errorf("report.format must be one of %v, got %q", ReportFormats, c.Report.Format)
	}
	switch c.Report.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("report.color must be auto, always or never, got %q", c.Report.Color)
	}
	if c.Report.BarWidth < 10 || c.Report.BarWidth > 200 {
		return errors.New("report.bar_width must be between 10 and 200")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
