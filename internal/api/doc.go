// Package api exposes document comparison and run history to the CLI and
// over HTTP.
//
// Service is the shared entry point: it collects and extracts files, applies
// configured normalization and duplicate-name policies with per-call
// overrides, runs the similarity pipeline, and persists complete runs in the
// run store. Server wraps a Service in a JSON HTTP API:
//
//	GET    /api/health
//	POST   /api/compare      JSON documents or multipart "files" uploads
//	GET    /api/runs?limit=N
//	GET    /api/runs/{id}
//	DELETE /api/runs/{id}
//
// Each compare request is an independent run; the only shared state is the
// extracted-text cache and the SQLite run store. A file lock in the data
// directory keeps a single server per data directory.
package api
