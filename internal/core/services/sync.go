package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/issuescope/issuescope/internal/core/domain"
	"github.com/issuescope/issuescope/internal/core/ports/driven"
	"github.com/issuescope/issuescope/internal/core/ports/driving"
	"github.com/issuescope/issuescope/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncOrchestrator = (*SyncOrchestrator)(nil)

const (
	defaultPageSize       = 100
	defaultCommentWorkers = 5

	// Persistence retry policy for transient lock contention.
	upsertRetries    = 3
	upsertRetryDelay = 5 * time.Second
)

// SyncOptions tunes one orchestrator instance.
type SyncOptions struct {
	// PageSize is the number of issues requested per page. Defaults to 100.
	PageSize int

	// PageDelay is an optional pause between page fetches, to stay polite
	// on large repositories. Zero disables it.
	PageDelay time.Duration

	// CommentWorkers caps concurrent comment fetches per page. Defaults to 5.
	CommentWorkers int
}

// SyncOrchestrator coordinates one repository's ingestion pipeline:
// fetch, transform, score, diff, enrich, persist.
type SyncOrchestrator struct {
	fetcher  driven.IssueFetcher
	store    driven.IssueStore
	enricher *Enricher
	opts     SyncOptions

	// Injected for tests.
	now   func() time.Time
	sleep func(time.Duration)

	// Status tracking
	mu      sync.RWMutex
	running bool
	status  driving.SyncStatus
}

// NewSyncOrchestrator creates a sync orchestrator. The enricher may be
// backed by a nil summarizer, in which case enrichment is a no-op.
func NewSyncOrchestrator(
	fetcher driven.IssueFetcher,
	store driven.IssueStore,
	enricher *Enricher,
	opts SyncOptions,
) *SyncOrchestrator {
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.CommentWorkers <= 0 {
		opts.CommentWorkers = defaultCommentWorkers
	}
	return &SyncOrchestrator{
		fetcher:  fetcher,
		store:    store,
		enricher: enricher,
		opts:     opts,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Run executes one full sync pass.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (o *SyncOrchestrator) Run(ctx context.Context) (*driving.SyncReport, error) {
	repo := o.fetcher.Repo()

	// 1. Acquire the run lock: one active sync per orchestrator.
	if !o.begin(repo) {
		return nil, fmt.Errorf("%w: %s", domain.ErrSyncInProgress, repo)
	}
	defer o.end()

	report := &driving.SyncReport{
		RunID:   uuid.NewString(),
		Repo:    repo,
		Started: o.now(),
	}

	logger.Section("Sync Run")
	logger.Info("Starting sync %s for %s", report.RunID, repo)

	// 2. Fetch every page, attaching comments as we go.
	o.setStage("fetching")
	issues, err := o.fetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", repo, err)
	}
	logger.Info("Fetched %d issues", len(issues))

	// 3. Derive per-issue fields and fingerprints.
	o.setStage("scoring")
	now := o.now()
	for i := range issues {
		issue := &issues[i]
		issue.Participants = domain.Participants(issue.Author, issue.Comments)
		issue.TotalReplies = domain.TotalReplies(issue.Comments)
		issue.ActivityScore = domain.ScoreIssue(issue, now)
		issue.Fingerprint = domain.Fingerprint(issue)
	}

	// 4. Compare the aggregate fingerprint against the previous run. The
	// per-issue diff below still runs either way; an unchanged batch just
	// means every eligible issue will reuse its prior summary.
	batchFP := domain.BatchFingerprint(issues)
	priorBatchFP, err := o.store.BatchFingerprint(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("load batch fingerprint: %w", err)
	}
	if priorBatchFP != "" && priorBatchFP == batchFP {
		logger.Info("Content unchanged since last run")
	}

	// 5. Diff, enrich and persist each issue.
	o.setStage("enriching")
	for i := range issues {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		issue := &issues[i]

		prior, err := o.store.Get(ctx, repo, issue.Number)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("load %s: %w", issue.Key(), err)
		}
		o.mergePrior(issue, prior, now)

		switch o.enricher.Enrich(ctx, issue, prior) {
		case EnrichGenerated:
			report.Enriched++
			o.bumpEnriched()
		case EnrichReused:
			report.SummariesReused++
		case EnrichFailed:
			report.Errors++
			o.bumpErrors()
		case EnrichSkipped:
		}

		if err := o.upsertWithRetry(ctx, issue); err != nil {
			if errors.Is(err, domain.ErrStorageBusy) {
				// Retries exhausted: fatal for this issue, not for the run.
				logger.Error("Persisting %s failed after retries: %v", issue.Key(), err)
				report.Errors++
				o.bumpErrors()
				continue
			}
			return nil, fmt.Errorf("persist %s: %w", issue.Key(), err)
		}
		report.Issues++
		o.bumpProcessed()
	}

	// 6. Record the aggregate fingerprint for the next run.
	if err := o.store.SaveBatchFingerprint(ctx, repo, batchFP); err != nil {
		return nil, fmt.Errorf("save batch fingerprint: %w", err)
	}

	report.Finished = o.now()
	logger.Info("Sync complete: %d issues, %d enriched, %d reused, %d errors",
		report.Issues, report.Enriched, report.SummariesReused, report.Errors)
	return report, nil
}

// Status returns a copy of the current sync status.
func (o *SyncOrchestrator) Status() driving.SyncStatus {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.status
}

// fetchAll walks the paginated issue listing until an empty page, loading
// comments for each page with a bounded worker pool.
func (o *SyncOrchestrator) fetchAll(ctx context.Context) ([]domain.Issue, error) {
	var issues []domain.Issue

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batch, more, err := o.fetcher.FetchPage(ctx, page, o.opts.PageSize)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		logger.Debug("Page %d: %d issues", page, len(batch))

		if err := o.attachComments(ctx, batch); err != nil {
			return nil, err
		}
		issues = append(issues, batch...)

		if !more {
			break
		}
		if o.opts.PageDelay > 0 {
			o.sleep(o.opts.PageDelay)
		}
	}

	return issues, nil
}

// attachComments fetches comments for every issue on a page concurrently.
func (o *SyncOrchestrator) attachComments(ctx context.Context, batch []domain.Issue) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.CommentWorkers)

	for i := range batch {
		issue := &batch[i]
		if issue.CommentCount == 0 {
			continue
		}
		g.Go(func() error {
			comments, err := o.fetcher.FetchComments(gctx, issue.Number)
			if err != nil {
				return fmt.Errorf("comments for #%d: %w", issue.Number, err)
			}
			issue.Comments = comments
			return nil
		})
	}

	return g.Wait()
}

// mergePrior carries forward the fields a sync must not clobber and
// appends this run's engagement snapshot to the history.
func (o *SyncOrchestrator) mergePrior(issue *domain.Issue, prior *domain.Issue, now time.Time) {
	if prior != nil {
		issue.History = prior.History
		issue.PriorityScore = prior.PriorityScore
		issue.ImplementationStatus = prior.ImplementationStatus
		issue.Engagement = prior.Engagement
		issue.Related = prior.Related
	}

	issue.History = append(issue.History, domain.HistoryEntry{
		Date:          now,
		Comments:      issue.CommentCount,
		Replies:       issue.TotalReplies,
		Reactions:     issue.Reactions,
		ActivityScore: issue.ActivityScore,
	})
}

// upsertWithRetry persists one issue, retrying on transient lock
// contention with a fixed delay. Any other error fails immediately.
func (o *SyncOrchestrator) upsertWithRetry(ctx context.Context, issue *domain.Issue) error {
	var err error
	for attempt := 0; attempt <= upsertRetries; attempt++ {
		if attempt > 0 {
			logger.Warn("Store busy, retry %d/%d for %s", attempt, upsertRetries, issue.Key())
			o.sleep(upsertRetryDelay)
		}
		err = o.store.Upsert(ctx, issue)
		if err == nil || !errors.Is(err, domain.ErrStorageBusy) {
			return err
		}
	}
	return err
}

func (o *SyncOrchestrator) begin(repo string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return false
	}
	o.running = true
	o.status = driving.SyncStatus{Repo: repo, Running: true, Stage: "starting"}
	return true
}

func (o *SyncOrchestrator) end() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.running = false
	o.status.Running = false
	o.status.Stage = ""
}

func (o *SyncOrchestrator) setStage(stage string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status.Stage = stage
}

func (o *SyncOrchestrator) bumpProcessed() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status.IssuesProcessed++
}

func (o *SyncOrchestrator) bumpEnriched() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status.Enriched++
}

func (o *SyncOrchestrator) bumpErrors() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status.ErrorCount++
}
