package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/issuescope/issuescope/internal/core/domain"
	"github.com/issuescope/issuescope/internal/core/ports/driven"
	"github.com/issuescope/issuescope/internal/logger"
)

// registerConcurrency caps the number of in-flight text-generation calls
// per issue. One call per register.
const registerConcurrency = 4

// EnrichOutcome records what the enricher did for one issue.
type EnrichOutcome int

// Enrichment outcomes.
const (
	// EnrichSkipped means the issue was not eligible (or no summarizer is
	// configured); any prior summary is carried forward unchanged.
	EnrichSkipped EnrichOutcome = iota

	// EnrichReused means the content fingerprint was unchanged and the
	// prior summary was reused verbatim, including its generation time.
	EnrichReused

	// EnrichGenerated means a new summary was generated.
	EnrichGenerated

	// EnrichFailed means the text-generation call failed; the prior
	// summary (possibly none) is kept and the run continues.
	EnrichFailed
)

// Enricher decides whether an issue needs (re-)summarisation and calls the
// text-generation service when it does. The decision is driven by the
// content fingerprint so unchanged issues never pay for a second call.
type Enricher struct {
	summarizer driven.Summarizer
	now        func() time.Time
}

// NewEnricher creates an enricher. The summarizer may be nil, in which
// case every issue is skipped.
func NewEnricher(summarizer driven.Summarizer) *Enricher {
	return &Enricher{
		summarizer: summarizer,
		now:        time.Now,
	}
}

// Enrich applies the change-detection table to one issue. The issue's
// Fingerprint must already be computed; prior is the previously persisted
// record, or nil on first sync.
//
// Unchanged fingerprint + prior summary  -> reuse verbatim.
// Otherwise                              -> generate, if the text is
// predominantly foreign-language; a prior summary is always carried
// forward rather than dropped.
func (e *Enricher) Enrich(ctx context.Context, issue *domain.Issue, prior *domain.Issue) EnrichOutcome {
	if prior != nil {
		if prior.Fingerprint == issue.Fingerprint && prior.Summary != nil {
			issue.Summary = prior.Summary
			return EnrichReused
		}
		// Content changed (or was never summarised): keep whatever summary
		// existed until a replacement is generated.
		issue.Summary = prior.Summary
	}

	if !domain.IsForeignLanguage(issue.Title + " " + issue.Body) {
		return EnrichSkipped
	}
	if e.summarizer == nil {
		return EnrichSkipped
	}

	registers, err := e.generate(ctx, issue)
	if err != nil {
		logger.Warn("Summarisation failed for %s: %v", issue.Key(), err)
		return EnrichFailed
	}

	registers.GeneratedAt = e.now()
	issue.Summary = &domain.Summary{Ja: *registers}
	return EnrichGenerated
}

// generate produces the four summary registers concurrently.
func (e *Enricher) generate(ctx context.Context, issue *domain.Issue) (*domain.SummaryRegisters, error) {
	req := driven.SummaryRequest{
		Title:    issue.Title,
		Body:     issue.Body,
		Comments: make([]string, len(issue.Comments)),
	}
	for i, c := range issue.Comments {
		req.Comments[i] = c.Body
	}

	var (
		mu      sync.Mutex
		results = make(map[driven.Register]string, len(driven.AllRegisters))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(registerConcurrency)

	for _, register := range driven.AllRegisters {
		g.Go(func() error {
			text, err := e.summarizer.GenerateRegister(gctx, register, req)
			if err != nil {
				return err
			}
			mu.Lock()
			results[register] = text
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.SummaryRegisters{
		Short:     results[driven.RegisterShort],
		Full:      results[driven.RegisterFull],
		Technical: results[driven.RegisterTechnical],
		General:   results[driven.RegisterGeneral],
	}, nil
}
