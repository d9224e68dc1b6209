package textutil

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Policy controls how runes removed during normalization affect token boundaries.
type Policy string

const (
	// PolicyMerge deletes non-letter runes without inserting a boundary, so
	// "hello,world" normalizes to the single token "helloworld".
	PolicyMerge Policy = "merge"
	// PolicySpace replaces non-letter runes with a space, so "hello,world"
	// normalizes to "hello" and "world".
	PolicySpace Policy = "space"
)

// ParsePolicy resolves a policy name. An empty value selects PolicyMerge.
func ParsePolicy(value string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(value))) {
	case "", PolicyMerge:
		return PolicyMerge, nil
	case PolicySpace:
		return PolicySpace, nil
	default:
		return "", fmt.Errorf("normalization policy: unsupported value %q", value)
	}
}

// TokenSet is an unordered set of normalized words.
type TokenSet map[string]struct{}

// NewTokenSet builds a set from the provided words, skipping empty strings.
func NewTokenSet(words ...string) TokenSet {
	set := make(TokenSet, len(words))
	for _, word := range words {
		if word == "" {
			continue
		}
		set[word] = struct{}{}
	}
	return set
}

// Len returns the number of distinct tokens.
func (s TokenSet) Len() int {
	return len(s)
}

// Contains reports whether token is in the set.
func (s TokenSet) Contains(token string) bool {
	_, ok := s[token]
	return ok
}

// Sorted returns the tokens in lexicographic order.
func (s TokenSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for token := range s {
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}

// Normalizer converts raw text into a TokenSet. The zero value uses PolicyMerge.
type Normalizer struct {
	Policy Policy
	// FoldDiacritics strips combining marks before filtering so accented
	// letters survive as their base letter instead of being removed.
	FoldDiacritics bool
}

// Normalize lowercases text, removes runes outside a-z and whitespace
// according to the policy, and splits the remainder into a TokenSet.
func (n Normalizer) Normalize(text string) TokenSet {
	if text == "" {
		return TokenSet{}
	}
	if n.FoldDiacritics {
		text = foldDiacritics(text)
	}
	// cases.Caser is stateful; build one per call.
	lowered := cases.Lower(language.Und).String(text)

	replacement := n.Policy == PolicySpace
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(r)
		case replacement:
			b.WriteByte(' ')
		}
	}
	return NewTokenSet(strings.Fields(b.String())...)
}

// Normalize applies the default merge policy.
func Normalize(text string) TokenSet {
	return Normalizer{Policy: PolicyMerge}.Normalize(text)
}

func foldDiacritics(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return folded
}
