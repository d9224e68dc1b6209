package runstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"docsim/internal/config"
	"docsim/internal/similarity"
	"docsim/internal/textutil"
)

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var (
	// ErrNotFound is returned when no run matches an identifier.
	ErrNotFound = errors.New("run not found")
	// ErrAmbiguousID is returned when an identifier prefix matches several runs.
	ErrAmbiguousID = errors.New("run id prefix is ambiguous")
	// ErrIncomplete is returned when saving an analysis that has no scores.
	ErrIncomplete = errors.New("only complete runs can be saved")
)

// Store persists comparison runs in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Summary is the list view of a stored run.
type Summary struct {
	ID            string          `json:"id" yaml:"id"`
	CreatedAt     time.Time       `json:"created_at" yaml:"created_at"`
	Policy        textutil.Policy `json:"policy" yaml:"policy"`
	DocumentCount int             `json:"document_count" yaml:"document_count"`
	PairCount     int             `json:"pair_count" yaml:"pair_count"`
	MaxScore      float64         `json:"max_score" yaml:"max_score"`
}

// Open initializes or connects to the history database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("runstore: config is nil")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.HistoryPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// Pragmas are per connection; keep a single one so foreign keys stay on.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save writes a complete analysis with its documents and pairs.
func (s *Store) Save(ctx context.Context, analysis *similarity.Analysis) error {
	if !analysis.Complete() {
		return ErrIncomplete
	}
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		return s.save(ctx, analysis)
	})
}

func (s *Store) save(ctx context.Context, analysis *similarity.Analysis) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, status, policy, fold_diacritics, document_count, pair_count)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		analysis.ID,
		formatTime(analysis.CreatedAt),
		string(analysis.Status),
		string(analysis.Policy),
		boolToInt(analysis.FoldDiacritics),
		len(analysis.Documents),
		len(analysis.Pairs),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, doc := range analysis.Documents {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_documents (run_id, position, name, tokens) VALUES (?, ?, ?, ?)`,
			analysis.ID, i, doc.Name, doc.Tokens,
		); err != nil {
			return fmt.Errorf("insert document %q: %w", doc.Name, err)
		}
	}
	for i, pair := range analysis.Pairs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_pairs (run_id, position, document_a, document_b, score) VALUES (?, ?, ?, ?, ?)`,
			analysis.ID, i, pair.DocumentA, pair.DocumentB, pair.Score,
		); err != nil {
			return fmt.Errorf("insert pair %q/%q: %w", pair.DocumentA, pair.DocumentB, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// Get loads a run by id. A unique id prefix is accepted as well.
func (s *Store) Get(ctx context.Context, id string) (*similarity.Analysis, error) {
	ctx = ensureContext(ctx)
	fullID, err := s.resolveID(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		createdRaw string
		status     string
		policy     string
		fold       int
	)
	err = s.db.QueryRowContext(ctx,
		`SELECT created_at, status, policy, fold_diacritics FROM runs WHERE id = ?`, fullID,
	).Scan(&createdRaw, &status, &policy, &fold)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	analysis := &similarity.Analysis{
		ID:             fullID,
		Status:         similarity.Status(status),
		Policy:         textutil.Policy(policy),
		FoldDiacritics: fold != 0,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		analysis.CreatedAt = created
	}

	if analysis.Documents, err = s.loadDocuments(ctx, fullID); err != nil {
		return nil, err
	}
	if analysis.Pairs, err = s.loadPairs(ctx, fullID); err != nil {
		return nil, err
	}
	analysis.Matrix = similarity.BuildMatrix(analysis.Pairs, analysis.Names())
	return analysis, nil
}

// List returns the most recent runs first. A limit <= 0 returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]Summary, error) {
	ctx = ensureContext(ctx)
	query := `SELECT r.id, r.created_at, r.policy, r.document_count, r.pair_count,
                     COALESCE((SELECT MAX(p.score) FROM run_pairs p WHERE p.run_id = r.id), 0)
              FROM runs r
              ORDER BY r.created_at DESC, r.id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var (
			summary    Summary
			createdRaw string
			policy     string
		)
		if err := rows.Scan(&summary.ID, &createdRaw, &policy, &summary.DocumentCount, &summary.PairCount, &summary.MaxScore); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		summary.Policy = textutil.Policy(policy)
		if created, err := parseTimeString(createdRaw); err == nil {
			summary.CreatedAt = created
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return summaries, nil
}

// Delete removes a run and its documents and pairs. A unique id prefix is
// accepted as well. It returns the full id of the removed run.
func (s *Store) Delete(ctx context.Context, id string) (string, error) {
	ctx = ensureContext(ctx)
	fullID, err := s.resolveID(ctx, id)
	if err != nil {
		return "", err
	}
	var affected int64
	err = retryOnBusy(ctx, func() error {
		res, execErr := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, fullID)
		if execErr != nil {
			return execErr
		}
		affected, execErr = res.RowsAffected()
		return execErr
	})
	if err != nil {
		return "", fmt.Errorf("delete run: %w", err)
	}
	if affected == 0 {
		return "", fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return fullID, nil
}

func (s *Store) resolveID(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("empty id: %w", ErrNotFound)
	}
	var exact int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM runs WHERE id = ?`, id).Scan(&exact); err != nil {
		return "", fmt.Errorf("lookup run: %w", err)
	}
	if exact > 0 {
		return id, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM runs WHERE substr(id, 1, ?) = ? LIMIT 2`, len(id), id)
	if err != nil {
		return "", fmt.Errorf("lookup run prefix: %w", err)
	}
	defer rows.Close()
	var matches []string
	for rows.Next() {
		var match string
		if err := rows.Scan(&match); err != nil {
			return "", fmt.Errorf("scan run id: %w", err)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate run ids: %w", err)
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s: %w", id, ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s: %w", id, ErrAmbiguousID)
	}
}

func (s *Store) loadDocuments(ctx context.Context, id string) ([]similarity.DocumentSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, tokens FROM run_documents WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	defer rows.Close()

	docs := []similarity.DocumentSummary{}
	for rows.Next() {
		var doc similarity.DocumentSummary
		if err := rows.Scan(&doc.Name, &doc.Tokens); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func (s *Store) loadPairs(ctx context.Context, id string) ([]similarity.PairwiseResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT document_a, document_b, score FROM run_pairs WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("load pairs: %w", err)
	}
	defer rows.Close()

	pairs := []similarity.PairwiseResult{}
	for rows.Next() {
		var pair similarity.PairwiseResult
		if err := rows.Scan(&pair.DocumentA, &pair.DocumentB, &pair.Score); err != nil {
			return nil, fmt.Errorf("scan pair: %w", err)
		}
		pairs = append(pairs, pair)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pairs: %w", err)
	}
	return pairs, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
