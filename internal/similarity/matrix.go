package similarity

import "sort"

// SelfScore is the fixed diagonal value of every similarity matrix.
const SelfScore = 100.0

// Matrix is a symmetric, name-indexed table of pairwise scores.
type Matrix struct {
	Labels []string    `json:"labels" yaml:"labels"`
	Values [][]float64 `json:"values" yaml:"values"`

	index map[string]int
}

// BuildMatrix folds pairs into a matrix whose labels are the sorted union of
// names and every name referenced by pairs. Cells without a pair stay 0 and
// the diagonal is SelfScore.
func BuildMatrix(pairs []PairwiseResult, names []string) *Matrix {
	seen := make(map[string]struct{}, len(names)+len(pairs))
	labels := make([]string, 0, len(names))
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		labels = append(labels, name)
	}
	for _, name := range names {
		add(name)
	}
	for _, pair := range pairs {
		add(pair.DocumentA)
		add(pair.DocumentB)
	}
	sort.Strings(labels)

	m := &Matrix{
		Labels: labels,
		Values: make([][]float64, len(labels)),
		index:  make(map[string]int, len(labels)),
	}
	for i, label := range labels {
		m.index[label] = i
		m.Values[i] = make([]float64, len(labels))
		m.Values[i][i] = SelfScore
	}
	for _, pair := range pairs {
		a, b := m.index[pair.DocumentA], m.index[pair.DocumentB]
		if a == b {
			continue
		}
		m.Values[a][b] = pair.Score
		m.Values[b][a] = pair.Score
	}
	return m
}

// Size returns the number of rows (and columns).
func (m *Matrix) Size() int {
	if m == nil {
		return 0
	}
	return len(m.Labels)
}

// Index returns the row/column position of name.
func (m *Matrix) Index(name string) (int, bool) {
	if m == nil {
		return 0, false
	}
	if m.index != nil {
		i, ok := m.index[name]
		return i, ok
	}
	// Matrices decoded from JSON or storage carry no lookup table.
	for i, label := range m.Labels {
		if label == name {
			return i, true
		}
	}
	return 0, false
}

// Score returns the cell for (a, b).
func (m *Matrix) Score(a, b string) (float64, bool) {
	i, ok := m.Index(a)
	if !ok {
		return 0, false
	}
	j, ok := m.Index(b)
	if !ok {
		return 0, false
	}
	return m.Values[i][j], true
}
