package similarity

import (
	"strconv"

	"docsim/internal/textutil"
)

// Document is a named, normalized input.
type Document struct {
	Name   string
	Tokens textutil.TokenSet
}

// PairwiseResult is the score for one unordered document pair.
type PairwiseResult struct {
	DocumentA string  `json:"document_a" yaml:"document_a"`
	DocumentB string  `json:"document_b" yaml:"document_b"`
	Score     float64 `json:"score" yaml:"score"`
}

// AllPairs scores every unordered pair of docs in input order. It returns
// len(docs)*(len(docs)-1)/2 results and never compares a document with itself.
func AllPairs(docs []Document) []PairwiseResult {
	if len(docs) < 2 {
		return nil
	}
	results := make([]PairwiseResult, 0, len(docs)*(len(docs)-1)/2)
	for i := 0; i < len(docs)-1; i++ {
		for j := i + 1; j < len(docs); j++ {
			results = append(results, PairwiseResult{
				DocumentA: docs[i].Name,
				DocumentB: docs[j].Name,
				Score:     Percent(textutil.Jaccard(docs[i].Tokens, docs[j].Tokens)),
			})
		}
	}
	return results
}

// Percent converts a ratio in [0,1] to a percentage rounded to two decimals.
func Percent(ratio float64) float64 {
	return Round2(ratio * 100)
}

// Round2 rounds to two decimal places using the shortest correctly rounded
// decimal form, so 100/3 becomes 33.33 and exact binary halves round to even.
func Round2(value float64) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(value, 'f', 2, 64), 64)
	if err != nil {
		return value
	}
	return rounded
}
