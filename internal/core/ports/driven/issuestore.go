package driven

import (
	"context"
	"io"

	"github.com/issuescope/issuescope/internal/core/domain"
)

// TextHit is a full-text search result from the store's index.
type TextHit struct {
	// Repo and Number identify the matched issue.
	Repo   string
	Number int

	// Score is the relevance score (higher is better).
	Score float64
}

// IssueStore persists issue records and exposes the indexed full-text
// search the hybrid engine builds on. Backed by SQLite with an FTS index
// over title, body and comment bodies.
type IssueStore interface {
	// Upsert inserts or updates an issue keyed by (repo, number).
	// The operation is atomic per issue.
	Upsert(ctx context.Context, issue *domain.Issue) error

	// Get retrieves an issue by identity. Returns domain.ErrNotFound if
	// the issue has never been synced.
	Get(ctx context.Context, repo string, number int) (*domain.Issue, error)

	// List returns all issues for a repository.
	List(ctx context.Context, repo string) ([]domain.Issue, error)

	// Recent returns up to limit issues ordered by most recently indexed.
	// This bounds the working set of the approximate search pass.
	Recent(ctx context.Context, repo string, limit int) ([]domain.Issue, error)

	// SearchText runs a relevance-ranked full-text query over title, body
	// and comment bodies, returning up to limit hits by descending score.
	SearchText(ctx context.Context, repo, query string, limit int) ([]TextHit, error)

	// BatchFingerprint returns the aggregate content fingerprint recorded
	// by the previous sync run, or "" if none exists.
	BatchFingerprint(ctx context.Context, repo string) (string, error)

	// SaveBatchFingerprint records the aggregate fingerprint for a run.
	SaveBatchFingerprint(ctx context.Context, repo, fingerprint string) error

	// ExportSnapshot writes all issues as a portable JSON snapshot.
	ExportSnapshot(ctx context.Context, repo string, w io.Writer) error

	// ImportSnapshot upserts issues from a JSON snapshot. Idempotent.
	ImportSnapshot(ctx context.Context, r io.Reader) (int, error)

	// Close releases resources.
	Close() error
}
