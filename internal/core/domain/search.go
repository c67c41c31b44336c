package domain

// MatchKind distinguishes how a search result was found.
type MatchKind string

// Match kinds.
const (
	// MatchExact means the issue was found by the full-text index.
	MatchExact MatchKind = "exact"

	// MatchApproximate means the issue was found by the edit-distance
	// fallback pass.
	MatchApproximate MatchKind = "approximate"
)

// SearchResult is a single ranked search hit.
type SearchResult struct {
	// Issue is the matched issue record.
	Issue Issue `json:"issue"`

	// Match records which pass produced the hit.
	Match MatchKind `json:"match"`

	// Score is the full-text relevance score. Meaningful for exact hits.
	Score float64 `json:"score"`

	// Distance is the minimum edit distance between the query and the
	// issue's text fields. Meaningful for approximate hits.
	Distance int `json:"distance,omitempty"`
}
