package similarity

import (
	"fmt"
	"testing"

	"docsim/internal/textutil"
)

func TestAllPairsScenario(t *testing.T) {
	docs := []Document{
		{Name: "docA", Tokens: textutil.NewTokenSet("the", "cat", "sat")},
		{Name: "docB", Tokens: textutil.NewTokenSet("the", "cat", "ran")},
	}
	pairs := AllPairs(docs)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	want := PairwiseResult{DocumentA: "docA", DocumentB: "docB", Score: 50.0}
	if pairs[0] != want {
		t.Fatalf("pair = %+v, want %+v", pairs[0], want)
	}
}

func TestAllPairsOrderAndCount(t *testing.T) {
	for n := 0; n <= 7; n++ {
		docs := make([]Document, n)
		for i := range docs {
			docs[i] = Document{Name: fmt.Sprintf("d%d", i+1), Tokens: textutil.NewTokenSet(fmt.Sprintf("w%d", i))}
		}
		pairs := AllPairs(docs)
		if want := n * (n - 1) / 2; len(pairs) != want {
			t.Fatalf("n=%d: got %d pairs, want %d", n, len(pairs), want)
		}
		seen := map[[2]string]bool{}
		for _, p := range pairs {
			if p.DocumentA == p.DocumentB {
				t.Fatalf("n=%d: self pair %+v", n, p)
			}
			key := [2]string{p.DocumentA, p.DocumentB}
			rev := [2]string{p.DocumentB, p.DocumentA}
			if seen[key] || seen[rev] {
				t.Fatalf("n=%d: duplicate pair %+v", n, p)
			}
			seen[key] = true
		}
	}

	docs := []Document{{Name: "d1"}, {Name: "d2"}, {Name: "d3"}}
	pairs := AllPairs(docs)
	wantOrder := [][2]string{{"d1", "d2"}, {"d1", "d3"}, {"d2", "d3"}}
	for i, p := range pairs {
		if p.DocumentA != wantOrder[i][0] || p.DocumentB != wantOrder[i][1] {
			t.Fatalf("pair %d = (%s,%s), want %v", i, p.DocumentA, p.DocumentB, wantOrder[i])
		}
	}
}

func TestAllPairsEmptySetsScoreZero(t *testing.T) {
	pairs := AllPairs([]Document{{Name: "a", Tokens: textutil.TokenSet{}}, {Name: "b", Tokens: textutil.TokenSet{}}})
	if pairs[0].Score != 0 {
		t.Fatalf("expected 0 for two empty documents, got %v", pairs[0].Score)
	}
}

func TestAllPairsDoesNotMutateInputs(t *testing.T) {
	a := textutil.NewTokenSet("alpha", "beta")
	b := textutil.NewTokenSet("beta", "gamma")
	AllPairs([]Document{{Name: "a", Tokens: a}, {Name: "b", Tokens: b}})
	if a.Len() != 2 || b.Len() != 2 || !a.Contains("alpha") || !b.Contains("gamma") {
		t.Fatalf("inputs mutated: %v %v", a.Sorted(), b.Sorted())
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{100.0 / 3.0, 33.33},
		{200.0 / 3.0, 66.67},
		{50, 50},
		{0, 0},
		{100, 100},
		{12.344999, 12.34},
		{99.999, 100},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if got := Percent(1.0 / 3.0); got != 33.33 {
		t.Fatalf("Percent(1/3) = %v, want 33.33", got)
	}
}
