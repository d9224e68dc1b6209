// Package textutil turns raw document text into vocabulary sets and compares
// them.
//
// The primary use cases are:
//   - Normalizing extracted text into a TokenSet of lowercase alphabetic words
//   - Computing the Jaccard similarity between two TokenSets
//
// Normalization lowercases text, removes every rune outside a-z and whitespace,
// and splits on whitespace. How removed runes affect word boundaries is chosen
// by a Policy: PolicyMerge deletes them outright so "word,word" becomes a single
// token, PolicySpace replaces them with a space so the words stay apart.
package textutil
