package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"docsim/internal/api"
	"docsim/internal/config"
	"docsim/internal/logging"
	"docsim/internal/runstore"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if level := c.logLevel(); level != "" {
			cfg.Logging.Level = level
			if err := cfg.Validate(); err != nil {
				c.configErr = fmt.Errorf("--log-level: %w", err)
				return
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) logLevel() string {
	if c.logLevelFlag == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
}

// logger builds a logger for the current command. One-shot commands keep the
// terminal to warnings unless --log-level was given; the log file always
// receives the configured level.
func (c *commandContext) logger(oneShot bool) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	stderrLevel := ""
	if oneShot && c.logLevel() == "" {
		stderrLevel = "warn"
	}
	return logging.NewFromConfig(cfg, stderrLevel)
}

// openService wires an api.Service. The run store is opened only when
// withHistory is set; the returned cleanup closes it.
func (c *commandContext) openService(logger *slog.Logger, withHistory bool) (*api.Service, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {}
	var store api.RunStore
	if withHistory {
		if !cfg.History.Enabled {
			return nil, nil, fmt.Errorf("%w (history.enabled = false)", api.ErrHistoryDisabled)
		}
		opened, err := runstore.Open(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("open run history: %w", err)
		}
		store = opened
		cleanup = func() {
			if err := opened.Close(); err != nil {
				logger.Warn("failed to close run history", logging.Error(err))
			}
		}
	}
	svc, err := api.NewService(cfg, store, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
