// Package runstore keeps a SQLite history of completed comparison runs.
//
// Each run is stored as a header row plus its documents and pairwise scores,
// written in one transaction. Matrices are not stored; Get rebuilds them from
// the pairs and document names, which yields the same labels and values the
// run originally produced. Waiting runs are never persisted.
//
// Schema changes are appended as new files under migrations/; applied
// versions are tracked in schema_migrations.
package runstore
