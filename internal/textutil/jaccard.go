package textutil

// Jaccard computes |a ∩ b| / |a ∪ b|. Returns 0 when both sets are empty.
func Jaccard(a, b TokenSet) float64 {
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	intersection := 0
	for token := range small {
		if _, ok := large[token]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
