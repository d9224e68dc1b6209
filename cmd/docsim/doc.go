// Package main hosts the docsim CLI entrypoint and command graph.
//
// The Cobra command tree compares documents (compare, watch), browses saved
// runs (history), serves the HTTP API (serve) and scaffolds configuration
// (config). Configuration is resolved once per invocation by commandContext;
// the comparison work itself lives in internal/api, internal/similarity and
// internal/report so commands only translate flags into options and render
// results.
package main
