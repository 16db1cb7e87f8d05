package core

// scheduler.go keeps the sheets fresh in the background.
//
// Each cycle refreshes every sheet and then prunes old snapshots so each
// sheet keeps at most SnapshotKeep copies. A failed cycle is logged; the last
// good result stays in place until the next one succeeds.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultRefreshInterval is used when RefreshConfig.Interval is zero.
const DefaultRefreshInterval = 5 * time.Minute

// RefreshConfig holds configuration for the refresh scheduler.
type RefreshConfig struct {
	Interval     time.Duration // How often to refresh (default: 5m)
	SnapshotKeep int           // Snapshots kept per sheet; <= 0 disables pruning
}

// StartRefreshScheduler refreshes immediately, then every Interval, until
// ctx is cancelled.
func (s *Service) StartRefreshScheduler(ctx context.Context, cfg RefreshConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultRefreshInterval
	}

	slog.Info("refresh scheduler started",
		"interval", cfg.Interval.String(),
		"snapshot_keep", cfg.SnapshotKeep,
		"sheets", s.registry.Len(),
	)

	s.runRefreshJob(ContextWithTrigger(ctx, TriggerStartup), cfg)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("refresh scheduler stopped")
			return
		case <-ticker.C:
			s.runRefreshJob(ContextWithTrigger(ctx, TriggerScheduler), cfg)
		}
	}
}

// runRefreshJob performs one refresh + prune cycle.
func (s *Service) runRefreshJob(ctx context.Context, cfg RefreshConfig) {
	start := time.Now()

	if _, err := s.Refresh(ctx); err != nil {
		// Refresh already logged the failure.
		return
	}

	if cfg.SnapshotKeep <= 0 || s.snapshots == nil {
		return
	}

	pruned, err := s.PruneSnapshots(ctx, cfg.SnapshotKeep)
	if err != nil {
		slog.Error("snapshot prune failed", "error", err)
		return
	}
	slog.Debug("refresh job completed",
		"snapshots_pruned", pruned,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
