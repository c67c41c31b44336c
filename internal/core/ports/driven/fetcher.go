// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/issuescope/issuescope/internal/core/domain"
)

// IssueFetcher retrieves issues and comments from the remote forge API.
// Implementations own pagination within a call, rate-limit accounting and
// the bounded retry policy for quota exhaustion; any non-rate-limit error
// propagates unchanged to the caller.
type IssueFetcher interface {
	// Repo returns the "owner/name" identifier of the target repository.
	Repo() string

	// FetchPage returns one page of issues (all states, most recently
	// updated first) without comments attached, and whether more pages
	// remain. The slice may be empty on a page that held only items the
	// fetcher filters out.
	FetchPage(ctx context.Context, page, perPage int) ([]domain.Issue, bool, error)

	// FetchComments returns every comment for an issue, exhausting
	// pagination internally.
	FetchComments(ctx context.Context, number int) ([]domain.Comment, error)
}
