package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/issuescope/issuescope/internal/core/domain"
	"github.com/issuescope/issuescope/internal/core/ports/driven"
	"github.com/issuescope/issuescope/internal/core/ports/driving"
	"github.com/issuescope/issuescope/internal/logger"
)

// Ensure HybridSearch implements the interface.
var _ driving.SearchService = (*HybridSearch)(nil)

// Search tuning. The approximate pass only fires when the exact pass is
// sparse, and it scans a bounded working set of recently indexed issues.
const (
	maxResults       = 50
	exactThreshold   = 10
	fuzzyPoolSize    = 1000
	fuzzyMaxDistance = 3
	fuzzyMaxHits     = 10
)

// HybridSearch answers queries with an exact full-text pass, falling back
// to an edit-distance pass when exact results are sparse.
type HybridSearch struct {
	store driven.IssueStore
	repo  string
}

// NewHybridSearch creates a search service over the persisted issues of
// one repository.
func NewHybridSearch(store driven.IssueStore, repo string) *HybridSearch {
	return &HybridSearch{store: store, repo: repo}
}

// Search implements driving.SearchService.
func (s *HybridSearch) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidQuery
	}

	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	results, err := s.exactSearch(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("exact search: %w", err)
	}
	logger.Debug("Exact pass: %d hits", len(results))

	if len(results) < exactThreshold {
		fuzzy, err := s.approximateSearch(ctx, query, results)
		if err != nil {
			return nil, fmt.Errorf("approximate search: %w", err)
		}
		logger.Debug("Approximate pass: %d additional hits", len(fuzzy))
		results = append(results, fuzzy...)
	}

	if len(results) > maxResults {
		results = results[:maxResults]
	}

	logger.Info("Search %q: %d results", query, len(results))
	return results, nil
}

// exactSearch runs the index-backed full-text pass and hydrates the hits.
func (s *HybridSearch) exactSearch(ctx context.Context, query string) ([]domain.SearchResult, error) {
	hits, err := s.store.SearchText(ctx, s.repo, query, maxResults)
	if err != nil {
		return nil, err
	}

	results := make([]domain.SearchResult, 0, len(hits))
	for _, hit := range hits {
		issue, err := s.store.Get(ctx, hit.Repo, hit.Number)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Deleted between index lookup and hydration.
				continue
			}
			return nil, err
		}
		results = append(results, domain.SearchResult{
			Issue: *issue,
			Match: domain.MatchExact,
			Score: hit.Score,
		})
	}

	return results, nil
}

// approximateSearch scans a bounded working set of recently indexed issues
// and keeps those whose minimum edit distance to the query is within
// fuzzyMaxDistance, ascending by distance. Issues already present in the
// exact results are excluded by identity.
func (s *HybridSearch) approximateSearch(
	ctx context.Context, query string, exact []domain.SearchResult,
) ([]domain.SearchResult, error) {
	seen := make(map[string]bool, len(exact))
	for i := range exact {
		seen[exact[i].Issue.Key()] = true
	}

	pool, err := s.store.Recent(ctx, s.repo, fuzzyPoolSize)
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.SearchResult, 0, fuzzyMaxHits)
	for i := range pool {
		issue := &pool[i]
		if seen[issue.Key()] {
			continue
		}

		dist := minEditDistance(query, issue)
		if dist > fuzzyMaxDistance {
			continue
		}
		candidates = append(candidates, domain.SearchResult{
			Issue:    *issue,
			Match:    domain.MatchApproximate,
			Distance: dist,
		})
	}

	// Stable: ties keep retrieval order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})

	if len(candidates) > fuzzyMaxHits {
		candidates = candidates[:fuzzyMaxHits]
	}
	return candidates, nil
}

// minEditDistance computes the minimum Levenshtein distance between the
// query and each of the issue's text fields: title, body and the joined
// comment bodies.
func minEditDistance(query string, issue *domain.Issue) int {
	min := levenshtein.ComputeDistance(query, issue.Title)

	if d := levenshtein.ComputeDistance(query, issue.Body); d < min {
		min = d
	}

	if len(issue.Comments) > 0 {
		parts := make([]string, len(issue.Comments))
		for i, c := range issue.Comments {
			parts[i] = c.Body
		}
		if d := levenshtein.ComputeDistance(query, strings.Join(parts, " ")); d < min {
			min = d
		}
	}

	return min
}
