package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/issuescope/issuescope/internal/core/ports/driving"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch, enrich and index the repository's issues",
	Long: `Runs one full sync pass: fetches every issue and comment, computes
activity scores, generates summaries where the content changed, and
persists the results.`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if err := setupServices(true); err != nil {
		return err
	}
	defer closeServices()

	if syncOrchestrator == nil {
		return errors.New("sync service not configured")
	}

	cmd.Printf("Synchronising %s...\n", cfg.GitHub.Repo)

	report, err := syncWithProgress(context.Background(), cmd, syncOrchestrator)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	cmd.Printf("Sync complete: %d issues, %d summarised, %d reused, %d errors.\n",
		report.Issues, report.Enriched, report.SummariesReused, report.Errors)
	return nil
}

// syncWithProgress runs sync while displaying progress updates.
func syncWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	syncOrch driving.SyncOrchestrator,
) (*driving.SyncReport, error) {
	type result struct {
		report *driving.SyncReport
		err    error
	}

	// Start sync in goroutine
	resCh := make(chan result, 1)
	go func() {
		report, err := syncOrch.Run(ctx)
		resCh <- result{report, err}
	}()

	// Poll status every 500ms
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastCount := 0
	for {
		select {
		case res := <-resCh:
			if lastCount > 0 {
				cmd.Println()
			}
			return res.report, res.err
		case <-ticker.C:
			status := syncOrch.Status()
			if status.IssuesProcessed > lastCount {
				cmd.Printf("\rProcessing... %d issues", status.IssuesProcessed)
				lastCount = status.IssuesProcessed
			}
		}
	}
}
