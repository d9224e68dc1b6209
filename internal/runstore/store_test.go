package runstore_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"docsim/internal/runstore"
	"docsim/internal/similarity"
	"docsim/internal/testsupport"
)

func TestOpenAppliesMigrations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	if store.Path() != cfg.HistoryPath() {
		t.Fatalf("Path = %q, want %q", store.Path(), cfg.HistoryPath())
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	runs, err := reopened.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List after reopen: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected empty history, got %d runs", len(runs))
	}
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	analysis := testsupport.MustAnalyze(t,
		"docA", "the cat sat",
		"docB", "the cat ran",
		"docC", "dogs bark",
	)
	if err := store.Save(ctx, analysis); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Get(ctx, analysis.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if loaded.ID != analysis.ID || loaded.Status != similarity.StatusComplete || loaded.Policy != analysis.Policy {
		t.Fatalf("unexpected header %+v", loaded)
	}
	if !loaded.CreatedAt.Equal(analysis.CreatedAt) {
		t.Fatalf("CreatedAt = %v, want %v", loaded.CreatedAt, analysis.CreatedAt)
	}
	if !reflect.DeepEqual(loaded.Documents, analysis.Documents) {
		t.Fatalf("documents = %+v, want %+v", loaded.Documents, analysis.Documents)
	}
	if !reflect.DeepEqual(loaded.Pairs, analysis.Pairs) {
		t.Fatalf("pairs = %+v, want %+v", loaded.Pairs, analysis.Pairs)
	}
	if !reflect.DeepEqual(loaded.Matrix.Labels, analysis.Matrix.Labels) || !reflect.DeepEqual(loaded.Matrix.Values, analysis.Matrix.Values) {
		t.Fatalf("matrix = %+v, want %+v", loaded.Matrix, analysis.Matrix)
	}
}

func TestGetByPrefix(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	analysis := testsupport.MustAnalyze(t, "a", "one two", "b", "two three")
	if err := store.Save(ctx, analysis); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := store.Get(ctx, analysis.ID[:8])
	if err != nil {
		t.Fatalf("Get by prefix: %v", err)
	}
	if loaded.ID != analysis.ID {
		t.Fatalf("Get by prefix returned %q, want %q", loaded.ID, analysis.ID)
	}
}

func TestGetAmbiguousPrefix(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	for _, id := range []string{"abc-1", "abc-2"} {
		analysis := testsupport.MustAnalyze(t, "a", "x", "b", "y")
		analysis.ID = id
		if err := store.Save(ctx, analysis); err != nil {
			t.Fatalf("Save %s: %v", id, err)
		}
	}
	if _, err := store.Get(ctx, "abc"); !errors.Is(err, runstore.ErrAmbiguousID) {
		t.Fatalf("expected ErrAmbiguousID, got %v", err)
	}
}

func TestGetMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	for _, id := range []string{"nope", ""} {
		if _, err := store.Get(context.Background(), id); !errors.Is(err, runstore.ErrNotFound) {
			t.Fatalf("Get(%q): expected ErrNotFound, got %v", id, err)
		}
	}
}

func TestSaveRejectsWaitingRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	waiting := testsupport.MustAnalyze(t, "only", "text")
	if err := store.Save(context.Background(), waiting); !errors.Is(err, runstore.ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
}

func TestSaveDuplicateIDFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	analysis := testsupport.MustAnalyze(t, "a", "x", "b", "y")
	if err := store.Save(ctx, analysis); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, analysis); err == nil {
		t.Fatal("expected error saving the same run twice")
	}
	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected one run, got %d", len(runs))
	}
}

func TestListNewestFirstWithLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	ids := []string{"run-old", "run-mid", "run-new"}
	for i, id := range ids {
		analysis := testsupport.MustAnalyze(t, "a", "the cat sat", "b", "the cat ran")
		analysis.ID = id
		analysis.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		if err := store.Save(ctx, analysis); err != nil {
			t.Fatalf("Save %s: %v", id, err)
		}
	}

	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-new" || runs[1].ID != "run-mid" {
		t.Fatalf("unexpected order %+v", runs)
	}
	if runs[0].DocumentCount != 2 || runs[0].PairCount != 1 || runs[0].MaxScore != 50 {
		t.Fatalf("unexpected summary %+v", runs[0])
	}

	all, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}
}

func TestDeleteCascades(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	analysis := testsupport.MustAnalyze(t, "a", "x y", "b", "y z")
	if err := store.Save(ctx, analysis); err != nil {
		t.Fatalf("Save: %v", err)
	}
	removed, err := store.Delete(ctx, analysis.ID[:6])
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if removed != analysis.ID {
		t.Fatalf("Delete returned %q, want %q", removed, analysis.ID)
	}
	if _, err := store.Get(ctx, analysis.ID); !errors.Is(err, runstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := store.Delete(ctx, analysis.ID); !errors.Is(err, runstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	// Reusing the id succeeds only if child rows were removed with the run.
	if err := store.Save(ctx, analysis); err != nil {
		t.Fatalf("Save after delete: %v", err)
	}
}

func TestPruneRemovesOldRuns(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	now := time.Date(2026, 6, 10, 8, 0, 0, 0, time.UTC)
	for i, age := range []time.Duration{72 * time.Hour, 48 * time.Hour, time.Hour} {
		analysis := testsupport.MustAnalyze(t, "a", "x", "b", "y")
		analysis.ID = fmt.Sprintf("run-%d", i)
		analysis.CreatedAt = now.Add(-age)
		if err := store.Save(ctx, analysis); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	removed, err := store.Prune(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 2 {
		t.Fatalf("Prune removed %d runs, want 2", removed)
	}
	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Fatalf("Count = %d, want 1", count)
	}
	if _, err := store.Get(ctx, "run-2"); err != nil {
		t.Fatalf("expected newest run to survive: %v", err)
	}
}
