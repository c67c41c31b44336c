package driving

import (
	"context"

	"github.com/issuescope/issuescope/internal/core/domain"
)

// SearchService answers free-text queries over the persisted issues.
type SearchService interface {
	// Search returns a ranked result list: exact full-text hits first,
	// then approximate (edit-distance) hits, capped at 50 with no
	// duplicate identities. An empty query fails with
	// domain.ErrInvalidQuery; a query matching nothing returns an empty
	// list.
	Search(ctx context.Context, query string) ([]domain.SearchResult, error)
}
