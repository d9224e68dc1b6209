package similarity

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"docsim/internal/logging"
	"docsim/internal/textutil"
)

func fixedOptions() Options {
	return Options{
		Now:   func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
		NewID: func() string { return "run-1" },
	}
}

func TestAnalyzeWaitingForInput(t *testing.T) {
	for _, inputs := range [][]Input{nil, {{Name: "only.pdf", Text: "hello"}}} {
		analysis, err := Analyze(context.Background(), inputs, fixedOptions())
		if err != nil {
			t.Fatalf("Analyze returned error: %v", err)
		}
		if analysis.Status != StatusWaiting || analysis.Complete() {
			t.Fatalf("expected waiting status, got %q", analysis.Status)
		}
		if analysis.Message != WaitingMessage {
			t.Fatalf("unexpected message %q", analysis.Message)
		}
		if len(analysis.Pairs) != 0 || analysis.Matrix != nil {
			t.Fatalf("expected no computation, got %+v", analysis)
		}
	}
}

func TestAnalyzeCompleteRun(t *testing.T) {
	inputs := []Input{
		{Name: "docB", Text: "The cat ran."},
		{Name: "docA", Text: "the CAT sat"},
		{Name: "docC", Text: "Dogs bark"},
	}
	analysis, err := Analyze(context.Background(), inputs, fixedOptions())
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if analysis.ID != "run-1" || !analysis.CreatedAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Fatalf("unexpected identity %q %v", analysis.ID, analysis.CreatedAt)
	}
	if analysis.Status != StatusComplete || analysis.Policy != textutil.PolicyMerge {
		t.Fatalf("unexpected status/policy %q %q", analysis.Status, analysis.Policy)
	}
	wantPairs := []PairwiseResult{
		{DocumentA: "docB", DocumentB: "docA", Score: 50},
		{DocumentA: "docB", DocumentB: "docC", Score: 0},
		{DocumentA: "docA", DocumentB: "docC", Score: 0},
	}
	if !reflect.DeepEqual(analysis.Pairs, wantPairs) {
		t.Fatalf("pairs = %+v, want %+v", analysis.Pairs, wantPairs)
	}
	if !reflect.DeepEqual(analysis.Names(), []string{"docB", "docA", "docC"}) {
		t.Fatalf("names = %v", analysis.Names())
	}
	if analysis.Documents[0].Tokens != 3 {
		t.Fatalf("expected 3 tokens for docB, got %d", analysis.Documents[0].Tokens)
	}
	if !reflect.DeepEqual(analysis.Matrix.Labels, []string{"docA", "docB", "docC"}) {
		t.Fatalf("matrix labels = %v", analysis.Matrix.Labels)
	}
	if got, _ := analysis.Matrix.Score("docA", "docB"); got != 50 {
		t.Fatalf("matrix docA/docB = %v", got)
	}
	for i := range analysis.Matrix.Labels {
		if analysis.Matrix.Values[i][i] != 100 {
			t.Fatalf("diagonal %d = %v", i, analysis.Matrix.Values[i][i])
		}
	}
}

func TestAnalyzeSpacePolicy(t *testing.T) {
	inputs := []Input{
		{Name: "a", Text: "Hello,World!123"},
		{Name: "b", Text: "hello world"},
	}
	opts := fixedOptions()

	merged, err := Analyze(context.Background(), inputs, opts)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if merged.Pairs[0].Score != 0 {
		t.Fatalf("merge policy score = %v, want 0", merged.Pairs[0].Score)
	}

	opts.Normalizer = textutil.Normalizer{Policy: textutil.PolicySpace}
	spaced, err := Analyze(context.Background(), inputs, opts)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if spaced.Pairs[0].Score != 100 {
		t.Fatalf("space policy score = %v, want 100", spaced.Pairs[0].Score)
	}
}

func TestAnalyzeSeparatedWordsMatchUnderBothPolicies(t *testing.T) {
	inputs := []Input{
		{Name: "a", Text: "Hello, World! 123"},
		{Name: "b", Text: "hello world"},
	}
	for _, policy := range []textutil.Policy{textutil.PolicyMerge, textutil.PolicySpace} {
		opts := fixedOptions()
		opts.Normalizer = textutil.Normalizer{Policy: policy}
		analysis, err := Analyze(context.Background(), inputs, opts)
		if err != nil {
			t.Fatalf("Analyze(%s) returned error: %v", policy, err)
		}
		if analysis.Pairs[0].Score != 100 {
			t.Fatalf("%s policy score = %v, want 100", policy, analysis.Pairs[0].Score)
		}
	}
}

func TestAnalyzeDuplicateNames(t *testing.T) {
	inputs := []Input{
		{Name: "report.pdf", Text: "alpha beta"},
		{Name: "report.pdf", Text: "alpha gamma"},
	}

	opts := fixedOptions()
	opts.Duplicates = DuplicateReject
	if _, err := Analyze(context.Background(), inputs, opts); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}

	opts.Duplicates = DuplicateSuffix
	analysis, err := Analyze(context.Background(), inputs, opts)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if !reflect.DeepEqual(analysis.Names(), []string{"report.pdf", "report.pdf (2)"}) {
		t.Fatalf("names = %v", analysis.Names())
	}
	if analysis.Pairs[0].Score != 33.33 {
		t.Fatalf("score = %v, want 33.33", analysis.Pairs[0].Score)
	}
}

func TestResolveNamesAvoidsExistingSuffix(t *testing.T) {
	inputs := []Input{{Name: "a"}, {Name: "a"}, {Name: "a (2)"}}
	names, err := ResolveNames(inputs, DuplicateSuffix)
	if err != nil {
		t.Fatalf("ResolveNames returned error: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"a", "a (3)", "a (2)"}) {
		t.Fatalf("names = %v", names)
	}
}

func TestResolveNamesRejectsEmpty(t *testing.T) {
	if _, err := ResolveNames([]Input{{Name: "a"}, {Name: "  "}}, DuplicateSuffix); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestAnalyzeHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Analyze(ctx, []Input{{Name: "a", Text: "x"}, {Name: "b", Text: "y"}}, fixedOptions())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParseDuplicatePolicy(t *testing.T) {
	if p, err := ParseDuplicatePolicy(""); err != nil || p != DuplicateSuffix {
		t.Fatalf("ParseDuplicatePolicy(\"\") = %q, %v", p, err)
	}
	if p, err := ParseDuplicatePolicy("Reject"); err != nil || p != DuplicateReject {
		t.Fatalf("ParseDuplicatePolicy(Reject) = %q, %v", p, err)
	}
	if _, err := ParseDuplicatePolicy("overwrite"); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}

func TestAnalyzeLogsMaxScore(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "analyze.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	opts := fixedOptions()
	opts.Logger = logger

	analysis, err := Analyze(context.Background(), []Input{
		{Name: "a", Text: "the cat sat"},
		{Name: "b", Text: "the cat ran"},
		{Name: "c", Text: "dogs bark"},
	}, opts)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if got := analysis.MaxScore(); got != 50 {
		t.Fatalf("MaxScore = %v, want 50", got)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(content), "comparison complete") || !strings.Contains(string(content), "max_score=50") {
		t.Fatalf("summary line missing max_score: %q", content)
	}
}

func TestMaxScoreWithoutPairs(t *testing.T) {
	var nilAnalysis *Analysis
	if got := nilAnalysis.MaxScore(); got != 0 {
		t.Fatalf("nil MaxScore = %v", got)
	}
	if got := (&Analysis{}).MaxScore(); got != 0 {
		t.Fatalf("empty MaxScore = %v", got)
	}
}
