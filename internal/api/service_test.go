package api

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"docsim/internal/logging"
	"docsim/internal/similarity"
	"docsim/internal/testsupport"
	"docsim/internal/textutil"
)

func TestCollectFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	svc, err := NewService(cfg, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	dir := t.TempDir()
	testsupport.WriteText(t, filepath.Join(dir, "b.txt"), "b")
	testsupport.WritePDF(t, filepath.Join(dir, "a.pdf"), []string{"a"})
	testsupport.WriteText(t, filepath.Join(dir, "notes.docx"), "ignored")
	if err := os.Mkdir(filepath.Join(dir, "nested.txt"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	explicit := filepath.Join(t.TempDir(), "explicit.md")
	testsupport.WriteText(t, explicit, "c")

	got, err := svc.CollectFiles([]string{explicit, dir})
	if err != nil {
		t.Fatalf("CollectFiles: %v", err)
	}
	want := []string{explicit, filepath.Join(dir, "a.pdf"), filepath.Join(dir, "b.txt")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CollectFiles = %v, want %v", got, want)
	}

	if _, err := svc.CollectFiles([]string{filepath.Join(dir, "missing")}); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestLoadFilesSkipUnreadable(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	svc, err := NewService(cfg, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	bad := filepath.Join(dir, "bad.pdf")
	testsupport.WriteText(t, good, "the cat")
	testsupport.WriteBytes(t, bad, []byte("garbage"))

	if _, err := svc.LoadFiles(context.Background(), []string{good, bad}, false); err == nil {
		t.Fatal("expected extraction error without skip")
	}

	inputs, err := svc.LoadFiles(context.Background(), []string{good, bad}, true)
	if err != nil {
		t.Fatalf("LoadFiles: %v", err)
	}
	want := []similarity.Input{{Name: "good.txt", Text: "the cat"}}
	if !reflect.DeepEqual(inputs, want) {
		t.Fatalf("LoadFiles = %+v, want %+v", inputs, want)
	}
}

func TestCompareOverrides(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithPolicy("merge"))
	svc, err := NewService(cfg, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	inputs := []similarity.Input{
		{Name: "a", Text: "Hello,World!123"},
		{Name: "b", Text: "hello world"},
	}

	merged, err := svc.Compare(context.Background(), inputs, CompareOptions{})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if merged.Policy != textutil.PolicyMerge || merged.Pairs[0].Score != 0 {
		t.Fatalf("unexpected merge result %+v", merged.Pairs)
	}

	spaced, err := svc.Compare(context.Background(), inputs, CompareOptions{Policy: "space"})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if spaced.Policy != textutil.PolicySpace || spaced.Pairs[0].Score != 100 {
		t.Fatalf("unexpected space result %+v", spaced.Pairs)
	}

	fold := true
	folded, err := svc.Compare(context.Background(), []similarity.Input{
		{Name: "a", Text: "café"},
		{Name: "b", Text: "cafe"},
	}, CompareOptions{FoldDiacritics: &fold})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if !folded.FoldDiacritics || folded.Pairs[0].Score != 100 {
		t.Fatalf("unexpected folded result %+v", folded)
	}

	if _, err := svc.Compare(context.Background(), inputs, CompareOptions{Duplicates: "merge"}); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption, got %v", err)
	}
}

func TestCompareSaveRequiresHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	svc, err := NewService(cfg, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	inputs := []similarity.Input{{Name: "a", Text: "x"}, {Name: "b", Text: "y"}}
	if _, err := svc.Compare(context.Background(), inputs, CompareOptions{Save: true}); !errors.Is(err, ErrHistoryDisabled) {
		t.Fatalf("expected ErrHistoryDisabled, got %v", err)
	}
	if _, err := svc.Runs(context.Background(), 0); !errors.Is(err, ErrHistoryDisabled) {
		t.Fatalf("expected ErrHistoryDisabled from Runs, got %v", err)
	}
}

func TestCompareSavesToStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	svc, err := NewService(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	analysis, err := svc.Compare(context.Background(), []similarity.Input{
		{Name: "a", Text: "x y"},
		{Name: "b", Text: "y z"},
	}, CompareOptions{Save: true})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	runs, err := svc.Runs(context.Background(), 0)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != analysis.ID || runs[0].MaxScore != 33.33 {
		t.Fatalf("unexpected runs %+v", runs)
	}
	loaded, err := svc.Run(context.Background(), analysis.ID)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if score, ok := loaded.Matrix.Score("a", "b"); !ok || score != 33.33 {
		t.Fatalf("unexpected stored matrix score %v %v", score, ok)
	}
	if _, err := svc.DeleteRun(context.Background(), analysis.ID); err != nil {
		t.Fatalf("DeleteRun: %v", err)
	}
}

func TestPruneRuns(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	svc, err := NewService(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	ctx := context.Background()

	old := testsupport.MustAnalyze(t, "a", "x", "b", "y")
	old.CreatedAt = time.Now().UTC().AddDate(0, 0, -10)
	if err := store.Save(ctx, old); err != nil {
		t.Fatalf("Save: %v", err)
	}
	fresh, err := svc.Compare(ctx, []similarity.Input{{Name: "a", Text: "x"}, {Name: "b", Text: "x"}}, CompareOptions{Save: true})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	if _, err := svc.PruneRuns(ctx, 0); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption for zero days, got %v", err)
	}
	removed, err := svc.PruneRuns(ctx, 5)
	if err != nil {
		t.Fatalf("PruneRuns: %v", err)
	}
	if removed != 1 {
		t.Fatalf("PruneRuns removed %d, want 1", removed)
	}
	runs, err := svc.Runs(ctx, 0)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != fresh.ID {
		t.Fatalf("unexpected remaining runs %+v", runs)
	}
}
