package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/issuescope/issuescope/internal/adapters/driven/storage/memory"
	"github.com/issuescope/issuescope/internal/core/domain"
)

const searchRepo = "acme/widgets"

func seedIssue(t *testing.T, store *memory.IssueStore, number int, title string) {
	t.Helper()
	issue := &domain.Issue{
		Repo:   searchRepo,
		Number: number,
		Title:  title,
	}
	require.NoError(t, store.Upsert(context.Background(), issue))
}

func TestHybridSearch_EmptyQuery(t *testing.T) {
	search := NewHybridSearch(memory.NewIssueStore(), searchRepo)

	for _, query := range []string{"", "   ", "\t\n"} {
		_, err := search.Search(context.Background(), query)
		assert.ErrorIs(t, err, domain.ErrInvalidQuery)
	}
}

func TestHybridSearch_NoMatches(t *testing.T) {
	store := memory.NewIssueStore()
	seedIssue(t, store, 1, "payment gateway timeout")
	search := NewHybridSearch(store, searchRepo)

	results, err := search.Search(context.Background(), "zzzzzzzzzzzzzzzzzzzzzz")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestHybridSearch_ExactOnlyWhenPlentiful(t *testing.T) {
	store := memory.NewIssueStore()
	for i := 1; i <= 12; i++ {
		seedIssue(t, store, i, fmt.Sprintf("payment failure case %d", i))
	}
	// Near miss that would qualify for the fuzzy pass.
	seedIssue(t, store, 100, "paymen")

	search := NewHybridSearch(store, searchRepo)
	results, err := search.Search(context.Background(), "payment")
	require.NoError(t, err)

	assert.Len(t, results, 12)
	for _, r := range results {
		assert.Equal(t, domain.MatchExact, r.Match)
	}
}

func TestHybridSearch_FuzzySupplementsSparseExact(t *testing.T) {
	store := memory.NewIssueStore()
	seedIssue(t, store, 1, "the aaaaaaaaaa widget")  // exact substring hit
	seedIssue(t, store, 2, "aaaaaaaaab")             // distance 1
	seedIssue(t, store, 3, "zzzzzzzzzz")             // far away
	search := NewHybridSearch(store, searchRepo)

	results, err := search.Search(context.Background(), "aaaaaaaaaa")
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, domain.MatchExact, results[0].Match)
	assert.Equal(t, 1, results[0].Issue.Number)
	assert.Equal(t, domain.MatchApproximate, results[1].Match)
	assert.Equal(t, 2, results[1].Issue.Number)
	assert.Equal(t, 1, results[1].Distance)
}

func TestHybridSearch_FuzzyOrderedByDistance(t *testing.T) {
	store := memory.NewIssueStore()
	seedIssue(t, store, 3, "abbb") // distance 3
	seedIssue(t, store, 1, "aaab") // distance 1
	seedIssue(t, store, 2, "aabb") // distance 2
	seedIssue(t, store, 4, "bbbb") // distance 4: excluded
	search := NewHybridSearch(store, searchRepo)

	results, err := search.Search(context.Background(), "aaaa")
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{
		results[0].Issue.Number,
		results[1].Issue.Number,
		results[2].Issue.Number,
	})
	assert.Equal(t, []int{1, 2, 3}, []int{
		results[0].Distance,
		results[1].Distance,
		results[2].Distance,
	})
}

func TestHybridSearch_FuzzyDeduplicatesExactHits(t *testing.T) {
	store := memory.NewIssueStore()
	// Contains the query as a substring (exact) and is within edit
	// distance 1 of it (fuzzy-eligible): must appear exactly once.
	seedIssue(t, store, 1, "aaaa!")
	search := NewHybridSearch(store, searchRepo)

	results, err := search.Search(context.Background(), "aaaa")
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, domain.MatchExact, results[0].Match)
}

func TestHybridSearch_FuzzyCappedAtTen(t *testing.T) {
	store := memory.NewIssueStore()
	for i := 1; i <= 15; i++ {
		// All at distance 1 from the query.
		seedIssue(t, store, i, fmt.Sprintf("aaa%c", 'a'+rune(i)))
	}
	search := NewHybridSearch(store, searchRepo)

	results, err := search.Search(context.Background(), "aaaa")
	require.NoError(t, err)

	assert.Len(t, results, 10)
	for _, r := range results {
		assert.Equal(t, domain.MatchApproximate, r.Match)
		assert.Equal(t, 1, r.Distance)
	}
}

func TestHybridSearch_UsesBodyAndComments(t *testing.T) {
	store := memory.NewIssueStore()
	issue := &domain.Issue{
		Repo:   searchRepo,
		Number: 1,
		Title:  "unrelated",
		Body:   "zzzz",
		Comments: []domain.Comment{
			{Body: "aaab"}, // distance 1 from the query
		},
	}
	require.NoError(t, store.Upsert(context.Background(), issue))
	search := NewHybridSearch(store, searchRepo)

	results, err := search.Search(context.Background(), "aaaa")
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, domain.MatchApproximate, results[0].Match)
	assert.Equal(t, 1, results[0].Distance)
}
