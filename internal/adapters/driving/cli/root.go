// Package cli implements the cobra command tree that drives the core
// services.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	configfile "github.com/issuescope/issuescope/internal/adapters/driven/config/file"
	"github.com/issuescope/issuescope/internal/adapters/driven/llm"
	"github.com/issuescope/issuescope/internal/adapters/driven/storage/sqlite"
	"github.com/issuescope/issuescope/internal/connectors/github"
	"github.com/issuescope/issuescope/internal/core/ports/driven"
	"github.com/issuescope/issuescope/internal/core/ports/driving"
	"github.com/issuescope/issuescope/internal/core/services"
	"github.com/issuescope/issuescope/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Wired services, shared by the subcommands. Populated by setupServices;
// tests substitute fakes directly.
var (
	cfg              *configfile.Config
	issueStore       driven.IssueStore
	syncOrchestrator driving.SyncOrchestrator
	searchService    driving.SearchService
	scheduler        *services.Scheduler
)

var (
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "issuescope",
	Short: "Track, enrich and search a repository's issues",
	Long: `issuescope ingests a repository's issues and comments, scores their
activity, generates Japanese summaries for foreign-language issues, and
answers free-text queries with hybrid exact + fuzzy search.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.issuescope/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setupServices wires the adapters and core services from configuration.
// Commands that only read persisted data pass needFetcher=false so they
// work without an API token.
func setupServices(needFetcher bool) error {
	if cfg != nil {
		return nil // Already wired (or substituted by a test).
	}

	path := flagConfig
	if path == "" {
		var err error
		path, err = configfile.DefaultPath()
		if err != nil {
			return fmt.Errorf("resolving config path: %w", err)
		}
	}

	loaded, err := configfile.Load(path)
	if err != nil {
		return err
	}

	store, err := sqlite.NewStore(loaded.Data.Dir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	cfg = loaded
	issueStore = store
	searchService = services.NewHybridSearch(store, loaded.GitHub.Repo)

	if !needFetcher {
		return nil
	}

	if loaded.GitHub.Token == "" {
		return fmt.Errorf("no API token configured: set github.token or $GITHUB_TOKEN")
	}

	client := github.NewClient(context.Background(), loaded.GitHub.Token)
	fetcher, err := github.NewFetcher(client, loaded.GitHub.Repo)
	if err != nil {
		return err
	}

	summarizer, err := llm.CreateAndValidateSummarizer(llm.Settings{
		Provider: loaded.LLM.Provider,
		APIKey:   loaded.LLM.APIKey,
		Model:    loaded.LLM.Model,
	})
	if err != nil {
		return err
	}
	if summarizer != nil {
		logger.Info("Summarization enabled via %s", summarizer.ModelName())
	} else {
		logger.Info("Summarization disabled: no provider configured")
	}

	orchestrator := services.NewSyncOrchestrator(
		fetcher,
		store,
		services.NewEnricher(summarizer),
		services.SyncOptions{
			PageSize:       loaded.Sync.PageSize,
			PageDelay:      time.Duration(loaded.Sync.PageDelayMs) * time.Millisecond,
			CommentWorkers: loaded.Sync.CommentWorkers,
		},
	)
	syncOrchestrator = orchestrator
	scheduler = services.NewScheduler(
		time.Duration(loaded.Sync.IntervalMinutes)*time.Minute, orchestrator)

	return nil
}

// closeServices releases wired resources. Best effort.
func closeServices() {
	if issueStore != nil {
		issueStore.Close() //nolint:errcheck
	}
}
