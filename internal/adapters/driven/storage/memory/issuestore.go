// Package memory provides in-memory implementations of the storage
// ports, used by tests and as a lightweight fallback.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/issuescope/issuescope/internal/core/domain"
	"github.com/issuescope/issuescope/internal/core/ports/driven"
)

// Ensure IssueStore implements the interface.
var _ driven.IssueStore = (*IssueStore)(nil)

// IssueStore is an in-memory implementation of driven.IssueStore. Its
// text search is a naive substring scan over title, body and comments,
// ordered by activity score; good enough for tests.
type IssueStore struct {
	mu           sync.RWMutex
	issues       map[string]domain.Issue
	order        []string // insertion/update order, most recent last
	fingerprints map[string]string
}

// NewIssueStore creates a new in-memory issue store.
func NewIssueStore() *IssueStore {
	return &IssueStore{
		issues:       make(map[string]domain.Issue),
		fingerprints: make(map[string]string),
	}
}

// Upsert stores or updates an issue.
func (s *IssueStore) Upsert(_ context.Context, issue *domain.Issue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := issue.Key()
	if _, exists := s.issues[key]; exists {
		for i, k := range s.order {
			if k == key {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.issues[key] = *issue
	s.order = append(s.order, key)
	return nil
}

// Get retrieves an issue by identity.
func (s *IssueStore) Get(_ context.Context, repo string, number int) (*domain.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	issue, ok := s.issues[fmt.Sprintf("%s#%d", repo, number)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &issue, nil
}

// List returns all issues for a repository, ordered by number.
func (s *IssueStore) List(_ context.Context, repo string) ([]domain.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var issues []domain.Issue //nolint:prealloc // filtered by repo
	for _, issue := range s.issues {
		if issue.Repo == repo {
			issues = append(issues, issue)
		}
	}
	sort.Slice(issues, func(i, j int) bool {
		return issues[i].Number < issues[j].Number
	})
	return issues, nil
}

// Recent returns up to limit issues, most recently upserted first.
func (s *IssueStore) Recent(_ context.Context, repo string, limit int) ([]domain.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var issues []domain.Issue //nolint:prealloc // filtered by repo
	for i := len(s.order) - 1; i >= 0 && len(issues) < limit; i-- {
		issue := s.issues[s.order[i]]
		if issue.Repo == repo {
			issues = append(issues, issue)
		}
	}
	return issues, nil
}

// SearchText matches the query as a case-insensitive substring of title,
// body or any comment body.
func (s *IssueStore) SearchText(_ context.Context, repo, query string, limit int) ([]driven.TextHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(query)

	var matched []domain.Issue //nolint:prealloc // filtered by match
	for _, issue := range s.issues {
		if issue.Repo == repo && matchesSubstring(&issue, needle) {
			matched = append(matched, issue)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].ActivityScore != matched[j].ActivityScore {
			return matched[i].ActivityScore > matched[j].ActivityScore
		}
		return matched[i].Number < matched[j].Number
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}

	hits := make([]driven.TextHit, len(matched))
	for i, issue := range matched {
		hits[i] = driven.TextHit{
			Repo:   issue.Repo,
			Number: issue.Number,
			Score:  float64(issue.ActivityScore),
		}
	}
	return hits, nil
}

// BatchFingerprint returns the recorded aggregate fingerprint.
func (s *IssueStore) BatchFingerprint(_ context.Context, repo string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fingerprints[repo], nil
}

// SaveBatchFingerprint records the aggregate fingerprint for a run.
func (s *IssueStore) SaveBatchFingerprint(_ context.Context, repo, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fingerprints[repo] = fingerprint
	return nil
}

// ExportSnapshot writes all of a repository's issues as a JSON array.
func (s *IssueStore) ExportSnapshot(ctx context.Context, repo string, w io.Writer) error {
	issues, err := s.List(ctx, repo)
	if err != nil {
		return err
	}
	if issues == nil {
		issues = []domain.Issue{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(issues)
}

// ImportSnapshot upserts issues from a JSON snapshot.
func (s *IssueStore) ImportSnapshot(ctx context.Context, r io.Reader) (int, error) {
	var issues []domain.Issue
	if err := json.NewDecoder(r).Decode(&issues); err != nil {
		return 0, fmt.Errorf("decoding snapshot: %w", err)
	}

	for i := range issues {
		if err := s.Upsert(ctx, &issues[i]); err != nil {
			return i, err
		}
	}
	return len(issues), nil
}

// Close is a no-op.
func (s *IssueStore) Close() error {
	return nil
}

func matchesSubstring(issue *domain.Issue, needle string) bool {
	if strings.Contains(strings.ToLower(issue.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(issue.Body), needle) {
		return true
	}
	for _, c := range issue.Comments {
		if strings.Contains(strings.ToLower(c.Body), needle) {
			return true
		}
	}
	return false
}
