package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/tunecrate/auth/internal/auth/store"
)

// SweeperService periodically deletes unconfirmed accounts whose confirmation
// grace period has elapsed, so abandoned registrations do not accumulate.
//
// The confirmed filter lives inside the delete statement, so a confirmation
// that commits just before a sweep can never be undone by it.
type SweeperService struct {
	Store       store.Store
	Logger      *slog.Logger
	Interval    time.Duration
	GracePeriod time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewSweeperService creates a sweeper. Interval defaults to 30 minutes and
// the grace period to 1 hour when unset.
func NewSweeperService(st store.Store, logger *slog.Logger, interval, gracePeriod time.Duration) *SweeperService {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	if gracePeriod <= 0 {
		gracePeriod = 1 * time.Hour
	}

	return &SweeperService{
		Store:       st,
		Logger:      logger,
		Interval:    interval,
		GracePeriod: gracePeriod,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut the
// worker down deterministically.
func (s *SweeperService) Start() {
	go s.run()
	s.Logger.Info("sweeper started", "interval", s.Interval, "grace_period", s.GracePeriod)
}

// Stop shuts down the background worker, blocking until any in-progress
// sweep has finished.
func (s *SweeperService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("sweeper stopped")
}

func (s *SweeperService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Sweep immediately on startup
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *SweeperService) sweep() {
	if _, err := s.SweepStaleAccounts(context.Background()); err != nil {
		s.Logger.Error("sweep failed", "error", err)
	}
}

// SweepStaleAccounts runs one sweep: every account still unconfirmed past the
// grace period is deleted. Idempotent and safe to run concurrently with
// registration and confirmation.
func (s *SweeperService) SweepStaleAccounts(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.GracePeriod)

	deleted, err := s.Store.Accounts().DeleteUnconfirmedCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		s.Logger.Info("stale accounts swept", "deleted", deleted)
	} else {
		s.Logger.Debug("sweep found nothing to delete")
	}

	return deleted, nil
}
