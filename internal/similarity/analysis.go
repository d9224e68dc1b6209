package similarity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"docsim/internal/logging"
	"docsim/internal/textutil"
)

// MinDocuments is the smallest batch that triggers a comparison.
const MinDocuments = 2

// WaitingMessage is reported when a run receives fewer than MinDocuments inputs.
const WaitingMessage = "Please provide at least two documents."

var (
	// ErrDuplicateName is returned when two inputs share a display name and
	// the duplicate policy is DuplicateReject.
	ErrDuplicateName = errors.New("duplicate document name")
	// ErrEmptyName is returned for inputs without a display name.
	ErrEmptyName = errors.New("document name is empty")
)

// DuplicatePolicy decides what happens when two inputs share a display name.
type DuplicatePolicy string

const (
	// DuplicateSuffix keeps the first name and renames later ones "name (2)", "name (3)".
	DuplicateSuffix DuplicatePolicy = "suffix"
	// DuplicateReject fails the run with ErrDuplicateName.
	DuplicateReject DuplicatePolicy = "reject"
)

// ParseDuplicatePolicy resolves a policy name. An empty value selects DuplicateSuffix.
func ParseDuplicatePolicy(value string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", DuplicateSuffix:
		return DuplicateSuffix, nil
	case DuplicateReject:
		return DuplicateReject, nil
	default:
		return "", fmt.Errorf("duplicate name policy: unsupported value %q", value)
	}
}

// Status describes the outcome of a run.
type Status string

const (
	StatusComplete Status = "complete"
	StatusWaiting  Status = "waiting"
)

// Input is one document handed to the pipeline after text extraction.
type Input struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// DocumentSummary describes a normalized document in a finished run.
type DocumentSummary struct {
	Name   string `json:"name" yaml:"name"`
	Tokens int    `json:"tokens" yaml:"tokens"`
}

// Analysis is the result of one comparison run.
type Analysis struct {
	ID             string            `json:"id" yaml:"id"`
	CreatedAt      time.Time         `json:"created_at" yaml:"created_at"`
	Status         Status            `json:"status" yaml:"status"`
	Message        string            `json:"message,omitempty" yaml:"message,omitempty"`
	Policy         textutil.Policy   `json:"policy" yaml:"policy"`
	FoldDiacritics bool              `json:"fold_diacritics" yaml:"fold_diacritics"`
	Documents      []DocumentSummary `json:"documents" yaml:"documents"`
	Pairs          []PairwiseResult  `json:"pairs" yaml:"pairs"`
	Matrix         *Matrix           `json:"matrix,omitempty" yaml:"matrix,omitempty"`
}

// Complete reports whether the run produced scores.
func (a *Analysis) Complete() bool {
	return a != nil && a.Status == StatusComplete
}

// Names returns document names in input order.
func (a *Analysis) Names() []string {
	if a == nil {
		return nil
	}
	names := make([]string, len(a.Documents))
	for i, doc := range a.Documents {
		names[i] = doc.Name
	}
	return names
}

// Options configures Analyze.
type Options struct {
	Normalizer textutil.Normalizer
	Duplicates DuplicatePolicy
	Logger     *slog.Logger
	// Now and NewID are overridable for deterministic tests.
	Now   func() time.Time
	NewID func() string
}

// Analyze runs the full pipeline over inputs: name resolution, normalization,
// pairwise scoring, and matrix assembly. With fewer than MinDocuments inputs it
// returns a StatusWaiting analysis and computes nothing.
func Analyze(ctx context.Context, inputs []Input, opts Options) (*Analysis, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	newID := uuid.NewString
	if opts.NewID != nil {
		newID = opts.NewID
	}
	policy := opts.Normalizer.Policy
	if policy == "" {
		policy = textutil.PolicyMerge
	}
	normalizer := textutil.Normalizer{Policy: policy, FoldDiacritics: opts.Normalizer.FoldDiacritics}

	analysis := &Analysis{
		ID:             newID(),
		CreatedAt:      now().UTC(),
		Policy:         policy,
		FoldDiacritics: normalizer.FoldDiacritics,
	}
	ctx = logging.WithRunID(ctx, analysis.ID)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(opts.Logger, "similarity"))

	if len(inputs) < MinDocuments {
		analysis.Status = StatusWaiting
		analysis.Message = WaitingMessage
		analysis.Documents = []DocumentSummary{}
		analysis.Pairs = []PairwiseResult{}
		logger.Info("waiting for more documents", logging.Int("documents", len(inputs)))
		return analysis, nil
	}

	names, err := ResolveNames(inputs, opts.Duplicates)
	if err != nil {
		return nil, err
	}

	docs := make([]Document, len(inputs))
	analysis.Documents = make([]DocumentSummary, len(inputs))
	for i, input := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tokens := normalizer.Normalize(input.Text)
		docs[i] = Document{Name: names[i], Tokens: tokens}
		analysis.Documents[i] = DocumentSummary{Name: names[i], Tokens: tokens.Len()}
		if tokens.Len() == 0 {
			logger.Warn("document has no tokens after normalization",
				logging.String(logging.FieldDocument, names[i]),
				logging.String(logging.FieldEventType, "empty_token_set"),
			)
		}
		logger.Debug("document normalized",
			logging.String(logging.FieldDocument, names[i]),
			logging.Int("tokens", tokens.Len()),
		)
	}

	analysis.Pairs = AllPairs(docs)
	analysis.Matrix = BuildMatrix(analysis.Pairs, names)
	analysis.Status = StatusComplete

	logger.Info("comparison complete",
		logging.Int("documents", len(docs)),
		logging.Int("pairs", len(analysis.Pairs)),
		logging.String("policy", string(policy)),
		logging.Float64("max_score", analysis.MaxScore()),
	)
	return analysis, nil
}

// MaxScore returns the highest pairwise score, or 0 when there are no pairs.
func (a *Analysis) MaxScore() float64 {
	if a == nil {
		return 0
	}
	var best float64
	for _, pair := range a.Pairs {
		best = max(best, pair.Score)
	}
	return best
}

// ResolveNames returns one unique display name per input, in input order.
func ResolveNames(inputs []Input, policy DuplicatePolicy) ([]string, error) {
	if policy == "" {
		policy = DuplicateSuffix
	}
	original := make(map[string]struct{}, len(inputs))
	for i, input := range inputs {
		name := strings.TrimSpace(input.Name)
		if name == "" {
			return nil, fmt.Errorf("input %d: %w", i+1, ErrEmptyName)
		}
		original[name] = struct{}{}
	}

	used := make(map[string]struct{}, len(inputs))
	names := make([]string, len(inputs))
	for i, input := range inputs {
		name := strings.TrimSpace(input.Name)
		if _, taken := used[name]; taken {
			if policy == DuplicateReject {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
			}
			base := name
			for n := 2; ; n++ {
				candidate := fmt.Sprintf("%s (%d)", base, n)
				_, inUse := used[candidate]
				_, isOriginal := original[candidate]
				if !inUse && !isOriginal {
					name = candidate
					break
				}
			}
		}
		used[name] = struct{}{}
		names[i] = name
	}
	return names, nil
}
