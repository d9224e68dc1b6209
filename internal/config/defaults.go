package config

const (
	defaultConfigPath          = "~/.config/docsim/config.toml"
	defaultDataDir             = "~/.local/share/docsim"
	defaultLogDir              = "~/.local/share/docsim/logs"
	defaultAPIBind             = "127.0.0.1:7490"
	defaultPolicy              = "merge"
	defaultDuplicateNames      = "suffix"
	defaultMaxBytes            = 64 << 20
	defaultReportFormat        = "table"
	defaultBarWidth            = 40
	defaultColor               = "auto"
	defaultHistoryLimit        = 20
	defaultCacheEntries        = 256
	defaultMaxUploadBytes      = 128 << 20
	defaultReadTimeoutSeconds  = 30
	defaultWriteTimeoutSeconds = 60
	defaultShutdownSeconds     = 5
	defaultDebounceMillis      = 500
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

var defaultExtensions = []string{".pdf", ".txt", ".text", ".md"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Normalization: Normalization{
			Policy: defaultPolicy,
		},
		Documents: Documents{
			DuplicateNames: defaultDuplicateNames,
			MaxBytes:       defaultMaxBytes,
			Extensions:     append([]string(nil), defaultExtensions...),
		},
		Report: Report{
			Format:   defaultReportFormat,
			BarWidth: defaultBarWidth,
			Color:    defaultColor,
		},
		History: History{
			Enabled:      true,
			DefaultLimit: defaultHistoryLimit,
		},
		Cache: Cache{
			Entries: defaultCacheEntries,
		},
		Server: Server{
			MaxUploadBytes:         defaultMaxUploadBytes,
			ReadTimeoutSeconds:     defaultReadTimeoutSeconds,
			WriteTimeoutSeconds:    defaultWriteTimeoutSeconds,
			ShutdownTimeoutSeconds: defaultShutdownSeconds,
		},
		Watch: Watch{
			DebounceMillis: defaultDebounceMillis,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
