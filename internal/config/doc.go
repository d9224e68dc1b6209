// Package config loads, normalizes, and validates docsim configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// DOCSIM_LOG_LEVEL. The Config type centralizes every knob the CLI, the API
// server, and the watcher need: where run history and logs live, which
// normalization policy applies, and how reports are rendered.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical enum values, and clear validation errors.
package config
