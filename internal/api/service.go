package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"docsim/internal/config"
	"docsim/internal/extract"
	"docsim/internal/logging"
	"docsim/internal/runstore"
	"docsim/internal/similarity"
	"docsim/internal/textutil"
)

var (
	// ErrHistoryDisabled is returned by history operations when no run store
	// is configured.
	ErrHistoryDisabled = errors.New("run history is disabled")
	// ErrInvalidOption wraps unparseable per-call overrides.
	ErrInvalidOption = errors.New("invalid option")
)

// RunStore abstracts run persistence.
type RunStore interface {
	Save(ctx context.Context, analysis *similarity.Analysis) error
	Get(ctx context.Context, id string) (*similarity.Analysis, error)
	List(ctx context.Context, limit int) ([]runstore.Summary, error)
	Delete(ctx context.Context, id string) (string, error)
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// CompareOptions overrides configured defaults for one run. Empty strings and
// nil pointers keep the configured value.
type CompareOptions struct {
	Policy         string
	Duplicates     string
	FoldDiacritics *bool
	Save           bool
}

// Service runs comparisons and serves run history.
type Service struct {
	cfg       *config.Config
	store     RunStore
	extractor *extract.Extractor
	loader    extract.Loader
	logger    *slog.Logger
}

// NewService builds a Service. store may be nil when history is disabled.
func NewService(cfg *config.Config, store RunStore, logger *slog.Logger) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("api: config is nil")
	}
	extractor := extract.New(cfg.Documents.MaxBytes)
	var loader extract.Loader = extractor
	if cfg.Cache.Entries > 0 {
		cache, err := extract.NewCache(extractor, cfg.Cache.Entries)
		if err != nil {
			return nil, err
		}
		loader = cache
	}
	return &Service{
		cfg:       cfg,
		store:     store,
		extractor: extractor,
		loader:    loader,
		logger:    logging.NewComponentLogger(logger, "api"),
	}, nil
}

// HistoryEnabled reports whether runs can be saved and queried.
func (s *Service) HistoryEnabled() bool {
	return s != nil && s.store != nil
}

// CollectFiles expands directories into their supported files (sorted by
// name, not recursive) and keeps explicitly named files as given.
func (s *Service) CollectFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", path, err)
		}
		var found []string
		for _, entry := range entries {
			if entry.IsDir() || !s.cfg.SupportsExtension(entry.Name()) {
				continue
			}
			found = append(found, filepath.Join(path, entry.Name()))
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

// LoadFiles extracts text from each path in order. When skipUnreadable is
// set, extraction failures are logged and the file is left out; otherwise the
// first failure is returned.
func (s *Service) LoadFiles(ctx context.Context, paths []string, skipUnreadable bool) ([]similarity.Input, error) {
	inputs := make([]similarity.Input, 0, len(paths))
	for _, path := range paths {
		src, err := s.loader.Load(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !skipUnreadable {
				return nil, err
			}
			s.logger.Warn("skipping unreadable document",
				logging.String(logging.FieldDocument, path),
				logging.String(logging.FieldEventType, "document_skipped"),
				logging.Error(err),
			)
			continue
		}
		inputs = append(inputs, similarity.Input{Name: src.Name, Text: src.Text})
	}
	return inputs, nil
}

// ExtractUpload extracts text from an uploaded document.
func (s *Service) ExtractUpload(ctx context.Context, name string, data []byte) (similarity.Input, error) {
	src, err := s.extractor.FromBytes(ctx, filepath.Base(name), data)
	if err != nil {
		return similarity.Input{}, err
	}
	return similarity.Input{Name: src.Name, Text: src.Text}, nil
}

// Compare runs the similarity pipeline over inputs and, when requested,
// saves a complete run to history.
func (s *Service) Compare(ctx context.Context, inputs []similarity.Input, opts CompareOptions) (*similarity.Analysis, error) {
	analyzeOpts, err := s.analyzeOptions(opts)
	if err != nil {
		return nil, err
	}
	analysis, err := similarity.Analyze(ctx, inputs, analyzeOpts)
	if err != nil {
		return nil, err
	}
	if opts.Save && analysis.Complete() {
		if s.store == nil {
			return nil, ErrHistoryDisabled
		}
		if err := s.store.Save(ctx, analysis); err != nil {
			return nil, fmt.Errorf("save run: %w", err)
		}
		s.logger.Info("run saved", logging.String(logging.FieldRunID, analysis.ID))
	}
	return analysis, nil
}

// Runs lists stored runs, newest first. A limit <= 0 uses the configured default.
func (s *Service) Runs(ctx context.Context, limit int) ([]runstore.Summary, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}
	if limit <= 0 {
		limit = s.cfg.History.DefaultLimit
	}
	return s.store.List(ctx, limit)
}

// Run loads a stored run by id or unique id prefix.
func (s *Service) Run(ctx context.Context, id string) (*similarity.Analysis, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}
	return s.store.Get(ctx, id)
}

// DeleteRun removes a stored run and returns its full id.
func (s *Service) DeleteRun(ctx context.Context, id string) (string, error) {
	if s.store == nil {
		return "", ErrHistoryDisabled
	}
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return "", err
	}
	s.logger.Info("run deleted", logging.String(logging.FieldRunID, deleted))
	return deleted, nil
}

// PruneRuns deletes runs older than days.
func (s *Service) PruneRuns(ctx context.Context, days int) (int64, error) {
	if s.store == nil {
		return 0, ErrHistoryDisabled
	}
	if days <= 0 {
		return 0, fmt.Errorf("%w: retention days must be positive, got %d", ErrInvalidOption, days)
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	removed, err := s.store.Prune(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("runs pruned",
			logging.Int64("removed", removed),
			logging.Int("retention_days", days),
		)
	}
	return removed, nil
}

func (s *Service) analyzeOptions(opts CompareOptions) (similarity.Options, error) {
	policyName := s.cfg.Normalization.Policy
	if opts.Policy != "" {
		policyName = opts.Policy
	}
	policy, err := textutil.ParsePolicy(policyName)
	if err != nil {
		return similarity.Options{}, fmt.Errorf("%w: %v", ErrInvalidOption, err)
	}

	duplicatesName := s.cfg.Documents.DuplicateNames
	if opts.Duplicates != "" {
		duplicatesName = opts.Duplicates
	}
	duplicates, err := similarity.ParseDuplicatePolicy(duplicatesName)
	if err != nil {
		return similarity.Options{}, fmt.Errorf("%w: %v", ErrInvalidOption, err)
	}

	fold := s.cfg.Normalization.FoldDiacritics
	if opts.FoldDiacritics != nil {
		fold = *opts.FoldDiacritics
	}

	return similarity.Options{
		Normalizer: textutil.Normalizer{Policy: policy, FoldDiacritics: fold},
		Duplicates: duplicates,
		Logger:     s.logger,
	}, nil
}
