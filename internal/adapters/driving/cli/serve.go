package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/issuescope/issuescope/internal/adapters/driving/httpapi"
	"github.com/issuescope/issuescope/internal/logger"
)

var (
	serveAddr   string
	serveNoSync bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP query API with periodic background syncs",
	Long: `Starts the HTTP query API. Unless --no-sync is given (or no API token
is configured), a background scheduler re-syncs the repository on the
configured interval. If server.snapshot is set, the snapshot file is
loaded on startup and reloaded whenever it changes.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().BoolVar(&serveNoSync, "no-sync", false, "serve existing data without background syncs")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := setupServices(!serveNoSync); err != nil {
		return err
	}
	defer closeServices()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if scheduler != nil {
		go func() {
			if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Scheduler stopped: %v", err)
			}
		}()
		defer scheduler.Stop() //nolint:errcheck
	}

	if cfg.Server.Snapshot != "" {
		watcher, err := httpapi.NewSnapshotWatcher(issueStore, cfg.Server.Snapshot)
		if err != nil {
			return err
		}
		go func() {
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Snapshot watcher stopped: %v", err)
			}
		}()
	}

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	api := httpapi.NewServer(searchService, issueStore, syncOrchestrator, cfg.GitHub.Repo)
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	cmd.Printf("Serving %s on http://%s\n", cfg.GitHub.Repo, addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
