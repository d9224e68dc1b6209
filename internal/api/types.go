package api

import (
	"docsim/internal/runstore"
	"docsim/internal/similarity"
)

// CompareRequest is the JSON body accepted by POST /api/compare.
type CompareRequest struct {
	Documents      []similarity.Input `json:"documents"`
	Policy         string             `json:"policy,omitempty"`
	Duplicates     string             `json:"duplicates,omitempty"`
	FoldDiacritics *bool              `json:"fold_diacritics,omitempty"`
	Save           *bool              `json:"save,omitempty"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status string `json:"status"`
}

// RunListResponse is returned by GET /api/runs.
type RunListResponse struct {
	Runs []runstore.Summary `json:"runs"`
}

// DeleteResponse is returned by DELETE /api/runs/{id}.
type DeleteResponse struct {
	Deleted string `json:"deleted"`
}

// ErrorResponse carries a failure message.
type ErrorResponse struct {
	Error string `json:"error"`
}
