package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/crm/internal/auth/store"
)

// SweepRecorder counts swept rows for metrics. It may be nil.
type SweepRecorder interface {
	Swept(n int64)
}

// HousekeepingService periodically deletes expired invitations. Expired
// rows are already invisible to lookups; this only bounds table growth.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Metrics  SweepRecorder
	Now      func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service with the given
// interval. If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		Now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the background sweeper. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop signals the sweeper and blocks until an in-progress sweep finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Sweep immediately on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), s.Interval)
	defer cancel()

	if _, err := s.Sweep(ctx); err != nil {
		s.Logger.Error("failed to delete expired invitations", "error", err)
	}
}

// Sweep deletes every invitation expired at the current time and returns
// how many rows went.
func (s *HousekeepingService) Sweep(ctx context.Context) (int64, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	n, err := s.Store.Invitations().DeleteExpiredInvitations(ctx, now())
	if err != nil {
		return 0, err
	}
	if s.Metrics != nil {
		s.Metrics.Swept(n)
	}
	s.Logger.Info("housekeeping sweep completed", "expired_invitations_deleted", n)
	return n, nil
}
