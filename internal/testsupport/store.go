package testsupport

import (
	"context"
	"testing"

	"docsim/internal/config"
	"docsim/internal/runstore"
	"docsim/internal/similarity"
)

// MustOpenStore opens a runstore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *runstore.Store {
	t.Helper()

	store, err := runstore.Open(cfg)
	if err != nil {
		t.Fatalf("runstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustAnalyze runs the comparison pipeline over name/text pairs given as
// alternating arguments and fails the test on error.
func MustAnalyze(t testing.TB, nameText ...string) *similarity.Analysis {
	t.Helper()

	if len(nameText)%2 != 0 {
		t.Fatalf("MustAnalyze: odd number of arguments")
	}
	inputs := make([]similarity.Input, 0, len(nameText)/2)
	for i := 0; i < len(nameText); i += 2 {
		inputs = append(inputs, similarity.Input{Name: nameText[i], Text: nameText[i+1]})
	}
	analysis, err := similarity.Analyze(context.Background(), inputs, similarity.Options{})
	if err != nil {
		t.Fatalf("similarity.Analyze: %v", err)
	}
	return analysis
}
