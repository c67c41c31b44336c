package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/issuescope/issuescope/internal/core/domain"
	"github.com/issuescope/issuescope/internal/core/ports/driving"
	"github.com/issuescope/issuescope/internal/logger"
)

// Scheduler runs periodic sync passes in the background.
// It is a pure core service with no external control API.
type Scheduler struct {
	interval time.Duration
	syncOrch driving.SyncOrchestrator

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler that triggers a sync every interval.
func NewScheduler(interval time.Duration, syncOrch driving.SyncOrchestrator) *Scheduler {
	return &Scheduler{
		interval: interval,
		syncOrch: syncOrch,
	}
}

// Start begins the scheduler loop. This method blocks until Stop is
// called or the context is cancelled. The first sync runs immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// Stop gracefully shuts down the scheduler and waits for an in-flight
// sync to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// runOnce triggers one sync pass in the background. A pass that overlaps
// a still-running one is skipped, not queued.
func (s *Scheduler) runOnce(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		report, err := s.syncOrch.Run(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrSyncInProgress) {
				logger.Debug("Scheduled sync skipped: previous run still active")
				return
			}
			logger.Error("Scheduled sync failed: %v", err)
			return
		}
		logger.Info("Scheduled sync %s finished: %d issues", report.RunID, report.Issues)
	}()
}
