package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidQuery indicates a search query failed validation.
	// This is a client-facing error and is never retried.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrSyncInProgress indicates a sync run is already active for the
	// repository. Runs are strictly serialised.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrRateLimited indicates the forge API quota was exhausted and all
	// bounded retries have been spent.
	ErrRateLimited = errors.New("rate limited")

	// ErrStorageBusy indicates a transient storage failure. Callers retry
	// with a bounded fixed backoff before treating it as fatal.
	ErrStorageBusy = errors.New("storage busy")

	// ErrSummarizerUnavailable indicates no text-generation service is
	// configured. Enrichment is disabled; everything else still works.
	ErrSummarizerUnavailable = errors.New("summarizer unavailable")
)
