// Package driving provides interfaces for primary (inbound) adapters such
// as the CLI and the HTTP query surface.
package driving

import (
	"context"
	"time"
)

// SyncStatus is a point-in-time view of a running or idle sync.
type SyncStatus struct {
	Repo            string
	Running         bool
	Stage           string
	IssuesProcessed int
	Enriched        int
	ErrorCount      int
}

// SyncReport summarises one completed sync run.
type SyncReport struct {
	RunID           string
	Repo            string
	Issues          int
	Enriched        int
	SummariesReused int
	Errors          int
	Started         time.Time
	Finished        time.Time
}

// SyncOrchestrator drives the ingestion pipeline end to end:
// fetch, transform, score, diff, enrich, persist.
type SyncOrchestrator interface {
	// Run executes one full sync pass. At most one run may be active per
	// repository; a concurrent call fails with domain.ErrSyncInProgress.
	Run(ctx context.Context) (*SyncReport, error)

	// Status returns the current sync status.
	Status() SyncStatus
}
