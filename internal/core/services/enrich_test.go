package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/issuescope/issuescope/internal/core/domain"
	"github.com/issuescope/issuescope/internal/core/ports/driven"
)

// fakeSummarizer implements driven.Summarizer for testing.
type fakeSummarizer struct {
	mu    sync.Mutex
	calls []driven.Register
	err   error
}

func (f *fakeSummarizer) GenerateRegister(
	_ context.Context, register driven.Register, req driven.SummaryRequest,
) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, register)
	f.mu.Unlock()

	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("%s summary of %s", register, req.Title), nil
}

func (f *fakeSummarizer) ModelName() string { return "fake-model" }
func (f *fakeSummarizer) Close() error      { return nil }

func (f *fakeSummarizer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

var enrichNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestEnricher(summarizer driven.Summarizer) *Enricher {
	e := NewEnricher(summarizer)
	e.now = func() time.Time { return enrichNow }
	return e
}

// englishIssue builds an issue whose text qualifies for summarisation.
func englishIssue(number int) *domain.Issue {
	issue := &domain.Issue{
		Repo:   "acme/widgets",
		Number: number,
		Title:  "Application crashes when saving large files",
		Body:   "Steps to reproduce: open a file larger than 2GB and press save.",
	}
	issue.Fingerprint = domain.Fingerprint(issue)
	return issue
}

func TestEnrich_GeneratesAllRegisters(t *testing.T) {
	summarizer := &fakeSummarizer{}
	enricher := newTestEnricher(summarizer)

	issue := englishIssue(42)
	outcome := enricher.Enrich(context.Background(), issue, nil)

	assert.Equal(t, EnrichGenerated, outcome)
	require.NotNil(t, issue.Summary)
	assert.Contains(t, issue.Summary.Ja.Short, "short summary")
	assert.Contains(t, issue.Summary.Ja.Full, "full summary")
	assert.Contains(t, issue.Summary.Ja.Technical, "technical summary")
	assert.Contains(t, issue.Summary.Ja.General, "general summary")
	assert.Equal(t, enrichNow, issue.Summary.Ja.GeneratedAt)
	assert.Equal(t, 4, summarizer.callCount())
}

func TestEnrich_ReusesUnchangedSummaryVerbatim(t *testing.T) {
	summarizer := &fakeSummarizer{}
	enricher := newTestEnricher(summarizer)

	generatedAt := enrichNow.AddDate(0, 0, -30)
	prior := englishIssue(42)
	prior.Summary = &domain.Summary{Ja: domain.SummaryRegisters{
		Short:       "以前の要約",
		GeneratedAt: generatedAt,
	}}

	issue := englishIssue(42)
	outcome := enricher.Enrich(context.Background(), issue, prior)

	assert.Equal(t, EnrichReused, outcome)
	require.NotNil(t, issue.Summary)
	assert.Equal(t, "以前の要約", issue.Summary.Ja.Short)
	assert.Equal(t, generatedAt, issue.Summary.Ja.GeneratedAt, "reuse must preserve the original generation time")
	assert.Zero(t, summarizer.callCount(), "unchanged content must not pay for a second call")
}

func TestEnrich_RegeneratesOnContentChange(t *testing.T) {
	summarizer := &fakeSummarizer{}
	enricher := newTestEnricher(summarizer)

	prior := englishIssue(42)
	prior.Summary = &domain.Summary{Ja: domain.SummaryRegisters{Short: "古い要約"}}

	issue := englishIssue(42)
	issue.Comments = []domain.Comment{{Body: "I can reproduce this too"}}
	issue.Fingerprint = domain.Fingerprint(issue)

	outcome := enricher.Enrich(context.Background(), issue, prior)

	assert.Equal(t, EnrichGenerated, outcome)
	require.NotNil(t, issue.Summary)
	assert.NotEqual(t, "古い要約", issue.Summary.Ja.Short)
	assert.Equal(t, 4, summarizer.callCount())
}

func TestEnrich_SkipsNonForeignText(t *testing.T) {
	summarizer := &fakeSummarizer{}
	enricher := newTestEnricher(summarizer)

	issue := &domain.Issue{
		Repo:   "acme/widgets",
		Number: 7,
		Title:  "保存時にクラッシュする",
		Body:   "大きいファイルを保存すると落ちます。",
	}
	issue.Fingerprint = domain.Fingerprint(issue)

	outcome := enricher.Enrich(context.Background(), issue, nil)

	assert.Equal(t, EnrichSkipped, outcome)
	assert.Nil(t, issue.Summary)
	assert.Zero(t, summarizer.callCount())
}

func TestEnrich_CarriesPriorSummaryWhenIneligible(t *testing.T) {
	enricher := newTestEnricher(&fakeSummarizer{})

	prior := &domain.Issue{Repo: "acme/widgets", Number: 7, Title: "日本語タイトル"}
	prior.Fingerprint = domain.Fingerprint(prior)
	prior.Summary = &domain.Summary{Ja: domain.SummaryRegisters{Short: "既存の要約"}}

	// Content changed, but the new text is not eligible.
	issue := &domain.Issue{Repo: "acme/widgets", Number: 7, Title: "日本語タイトル（更新）"}
	issue.Fingerprint = domain.Fingerprint(issue)

	outcome := enricher.Enrich(context.Background(), issue, prior)

	assert.Equal(t, EnrichSkipped, outcome)
	require.NotNil(t, issue.Summary)
	assert.Equal(t, "既存の要約", issue.Summary.Ja.Short)
}

func TestEnrich_NilSummarizerSkips(t *testing.T) {
	enricher := newTestEnricher(nil)

	issue := englishIssue(1)
	outcome := enricher.Enrich(context.Background(), issue, nil)

	assert.Equal(t, EnrichSkipped, outcome)
	assert.Nil(t, issue.Summary)
}

func TestEnrich_FailureKeepsPriorSummary(t *testing.T) {
	summarizer := &fakeSummarizer{err: errors.New("service unavailable")}
	enricher := newTestEnricher(summarizer)

	prior := englishIssue(42)
	prior.Summary = &domain.Summary{Ja: domain.SummaryRegisters{Short: "以前の要約"}}

	issue := englishIssue(42)
	issue.Body += " now with more detail"
	issue.Fingerprint = domain.Fingerprint(issue)

	outcome := enricher.Enrich(context.Background(), issue, prior)

	assert.Equal(t, EnrichFailed, outcome)
	require.NotNil(t, issue.Summary)
	assert.Equal(t, "以前の要約", issue.Summary.Ja.Short)
}
