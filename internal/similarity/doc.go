// Package similarity scores every pair of documents in a run and folds the
// scores into a symmetric matrix.
//
// A run takes explicit inputs (display name plus extracted text), normalizes
// each one into a textutil.TokenSet, and compares every unordered pair once in
// input order: for [d1, d2, d3] the pairs are (d1,d2), (d1,d3), (d2,d3). Scores
// are Jaccard similarities expressed as percentages rounded to two decimals.
//
// BuildMatrix turns those pairs into a square matrix whose rows and columns are
// the lexicographically sorted document names, with every diagonal cell fixed
// at 100. Analyze wires the whole pipeline together and reports a waiting
// outcome instead of computing anything when fewer than two documents arrive.
//
// Nothing in this package keeps state between runs; callers serving concurrent
// requests simply call Analyze once per request.
package similarity
