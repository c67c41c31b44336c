package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/issuescope/issuescope/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/issuescope/issuescope/internal/core/domain"
	"github.com/issuescope/issuescope/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.IssueStore = (*Store)(nil)

// Store is the SQLite-backed issue store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite store under the specified data directory.
// If dataDir is empty, defaults to ~/.issuescope/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".issuescope", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "issues.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// Upsert inserts or updates an issue keyed by (repo, number). The record
// row and its full-text index entry are written in one transaction.
func (s *Store) Upsert(ctx context.Context, issue *domain.Issue) error {
	data, err := json.Marshal(issue)
	if err != nil {
		return fmt.Errorf("marshalling issue: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapBusy(fmt.Errorf("beginning transaction: %w", err))
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO issues (repo, number, data, indexed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(repo, number) DO UPDATE SET
			data = excluded.data,
			indexed_at = excluded.indexed_at
	`, issue.Repo, issue.Number, string(data), time.Now().UTC())
	if err != nil {
		return wrapBusy(fmt.Errorf("saving issue: %w", err))
	}

	// FTS5 external-content-less table: replace the row wholesale.
	_, err = tx.ExecContext(ctx,
		"DELETE FROM issues_fts WHERE repo = ? AND number = ?",
		issue.Repo, issue.Number)
	if err != nil {
		return wrapBusy(fmt.Errorf("clearing index entry: %w", err))
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO issues_fts (title, body, comment_text, repo, number)
		VALUES (?, ?, ?, ?, ?)
	`, issue.Title, issue.Body, commentText(issue), issue.Repo, issue.Number)
	if err != nil {
		return wrapBusy(fmt.Errorf("indexing issue: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return wrapBusy(fmt.Errorf("committing transaction: %w", err))
	}
	return nil
}

// Get retrieves an issue by identity.
func (s *Store) Get(ctx context.Context, repo string, number int) (*domain.Issue, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT data FROM issues WHERE repo = ? AND number = ?", repo, number)

	var data string
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning issue: %w", err)
	}

	var issue domain.Issue
	if err := json.Unmarshal([]byte(data), &issue); err != nil {
		return nil, fmt.Errorf("unmarshaling issue: %w", err)
	}
	return &issue, nil
}

// List returns all issues for a repository.
func (s *Store) List(ctx context.Context, repo string) ([]domain.Issue, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT data FROM issues WHERE repo = ? ORDER BY number", repo)
	if err != nil {
		return nil, fmt.Errorf("querying issues: %w", err)
	}
	defer rows.Close()

	return scanIssues(rows)
}

// Recent returns up to limit issues ordered by most recently indexed.
func (s *Store) Recent(ctx context.Context, repo string, limit int) ([]domain.Issue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT data FROM issues WHERE repo = ?
		ORDER BY indexed_at DESC, number DESC
		LIMIT ?
	`, repo, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent issues: %w", err)
	}
	defer rows.Close()

	return scanIssues(rows)
}

// SearchText runs a relevance-ranked full-text query. The query is
// treated as a phrase so FTS5 operator syntax in user input is inert.
func (s *Store) SearchText(ctx context.Context, repo, query string, limit int) ([]driven.TextHit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT repo, number, bm25(issues_fts) AS rank
		FROM issues_fts
		WHERE issues_fts MATCH ? AND repo = ?
		ORDER BY rank
		LIMIT ?
	`, ftsPhrase(query), repo, limit)
	if err != nil {
		return nil, fmt.Errorf("querying full-text index: %w", err)
	}
	defer rows.Close()

	var hits []driven.TextHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		var hit driven.TextHit
		var rank float64
		if err := rows.Scan(&hit.Repo, &hit.Number, &rank); err != nil {
			return nil, fmt.Errorf("scanning hit: %w", err)
		}
		// bm25() returns lower-is-better; flip so higher is better.
		hit.Score = -rank
		hits = append(hits, hit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating hits: %w", err)
	}
	return hits, nil
}

// BatchFingerprint returns the aggregate fingerprint from the previous
// sync run, or "" if none exists.
func (s *Store) BatchFingerprint(ctx context.Context, repo string) (string, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT batch_fingerprint FROM sync_meta WHERE repo = ?", repo)

	var fingerprint string
	if err := row.Scan(&fingerprint); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("scanning batch fingerprint: %w", err)
	}
	return fingerprint, nil
}

// SaveBatchFingerprint records the aggregate fingerprint for a run.
func (s *Store) SaveBatchFingerprint(ctx context.Context, repo, fingerprint string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_meta (repo, batch_fingerprint, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(repo) DO UPDATE SET
			batch_fingerprint = excluded.batch_fingerprint,
			updated_at = excluded.updated_at
	`, repo, fingerprint, time.Now().UTC())
	if err != nil {
		return wrapBusy(fmt.Errorf("saving batch fingerprint: %w", err))
	}
	return nil
}

// ExportSnapshot writes all of a repository's issues as a JSON array.
func (s *Store) ExportSnapshot(ctx context.Context, repo string, w io.Writer) error {
	issues, err := s.List(ctx, repo)
	if err != nil {
		return err
	}
	if issues == nil {
		issues = []domain.Issue{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(issues); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}

// ImportSnapshot upserts issues from a JSON snapshot and returns how
// many records were imported. Idempotent.
func (s *Store) ImportSnapshot(ctx context.Context, r io.Reader) (int, error) {
	var issues []domain.Issue
	if err := json.NewDecoder(r).Decode(&issues); err != nil {
		return 0, fmt.Errorf("decoding snapshot: %w", err)
	}

	for i := range issues {
		if err := s.Upsert(ctx, &issues[i]); err != nil {
			return i, fmt.Errorf("importing %s: %w", issues[i].Key(), err)
		}
	}
	return len(issues), nil
}

// commentText joins comment bodies for the full-text index.
func commentText(issue *domain.Issue) string {
	if len(issue.Comments) == 0 {
		return ""
	}
	parts := make([]string, len(issue.Comments))
	for i, c := range issue.Comments {
		parts[i] = c.Body
	}
	return strings.Join(parts, "\n")
}

// ftsPhrase quotes a user query as an FTS5 phrase literal.
func ftsPhrase(query string) string {
	return `"` + strings.ReplaceAll(query, `"`, `""`) + `"`
}

// scanIssues decodes issue JSON rows.
func scanIssues(rows *sql.Rows) ([]domain.Issue, error) {
	var issues []domain.Issue //nolint:prealloc // size unknown from query
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning issue: %w", err)
		}
		var issue domain.Issue
		if err := json.Unmarshal([]byte(data), &issue); err != nil {
			return nil, fmt.Errorf("unmarshaling issue: %w", err)
		}
		issues = append(issues, issue)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating issues: %w", err)
	}
	return issues, nil
}

// wrapBusy maps SQLite lock contention onto domain.ErrStorageBusy so
// callers can retry.
func wrapBusy(err error) error {
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		switch sqErr.Code() {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return fmt.Errorf("%w: %v", domain.ErrStorageBusy, err)
		}
	}
	return err
}
