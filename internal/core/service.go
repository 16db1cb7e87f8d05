package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/proker/internal/csvparse"
	"github.com/JonMunkholm/proker/internal/store"
	"github.com/JonMunkholm/proker/internal/telemetry"
)

// RefreshTimeout bounds one full refresh of every sheet.
var RefreshTimeout = 2 * time.Minute

// ServiceOptions configures a Service. Zero values use defaults.
type ServiceOptions struct {
	MaxConcurrentFetches int
	FetchWait            time.Duration

	// Snapshots enables fallback to the last good copy of a sheet. Nil
	// disables snapshots.
	Snapshots store.SnapshotStore

	// Metrics records refresh and download metrics. Nil records nothing.
	Metrics *telemetry.Instruments
}

// Service loads the configured sheets and answers queries about the most
// recent successful refresh.
type Service struct {
	registry  *Registry
	fetcher   Fetcher
	snapshots store.SnapshotStore
	limiter   *FetchLimiter
	metrics   *telemetry.Instruments
	now       func() time.Time

	refreshMu sync.Mutex // one refresh at a time

	mu         sync.RWMutex
	result     *RefreshResult
	lastErr    error
	refreshing bool
}

// NewService creates a service over the sheets in registry.
func NewService(registry *Registry, fetcher Fetcher, opts ServiceOptions) *Service {
	return &Service{
		registry:  registry,
		fetcher:   fetcher,
		snapshots: opts.Snapshots,
		limiter:   NewFetchLimiter(opts.MaxConcurrentFetches, opts.FetchWait),
		metrics:   opts.Metrics,
		now:       time.Now,
	}
}

// Sheets returns the configured sheets in tab order.
func (s *Service) Sheets() []Sheet {
	return s.registry.All()
}

// Refresh fetches and parses every sheet in parallel. If any sheet fails and
// has no snapshot to fall back on, the refresh fails with that sheet's error
// and the previous result stays in place.
func (s *Service) Refresh(ctx context.Context) (*RefreshResult, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	s.setRefreshing(true)
	defer s.setRefreshing(false)

	ctx, cancel := context.WithTimeout(ctx, RefreshTimeout)
	defer cancel()

	start := s.now()
	sheets := s.registry.All()
	loaded := make([]SheetData, len(sheets))

	g, gctx := errgroup.WithContext(ctx)
	for i, sheet := range sheets {
		g.Go(func() error {
			data, err := s.loadSheet(gctx, sheet)
			if err != nil {
				return err
			}
			loaded[i] = data
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// A caller that cancelled (shutdown, closed request) is not a
		// failed refresh.
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return nil, err
		}

		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()

		s.metrics.RecordRefresh(ctx, TriggerFromContext(ctx), time.Since(start), err)
		slog.Error("refresh failed",
			"trigger", TriggerFromContext(ctx),
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	result := &RefreshResult{
		Sheets:      loaded,
		CompletedAt: s.now(),
		Duration:    time.Since(start),
	}

	s.mu.Lock()
	s.result = result
	s.lastErr = nil
	s.mu.Unlock()

	s.metrics.RecordRefresh(ctx, TriggerFromContext(ctx), result.Duration, nil)

	slog.Info("refresh completed",
		"trigger", TriggerFromContext(ctx),
		"sheets", len(loaded),
		"stale", result.StaleCount(),
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

func (s *Service) setRefreshing(v bool) {
	s.mu.Lock()
	s.refreshing = v
	s.mu.Unlock()
}

// loadSheet fetches one sheet, records a snapshot and falls back to the
// latest snapshot when the fetch fails.
func (s *Service) loadSheet(ctx context.Context, sheet Sheet) (SheetData, error) {
	body, err := s.fetch(ctx, sheet)
	if err != nil {
		return s.fallback(ctx, sheet, err)
	}

	data := NewSheetData(sheet, csvparse.Parse(body), s.now())

	if s.snapshots != nil {
		snap, err := s.snapshots.Save(ctx, store.Snapshot{
			Sheet:     sheet.Name,
			GID:       sheet.GID,
			Body:      body,
			RowCount:  len(data.DataRows),
			FetchedAt: data.FetchedAt,
		})
		if err != nil {
			slog.Warn("snapshot save failed", "sheet", sheet.Name, "error", err)
		} else {
			data.SnapshotID = snap.ID.String()
		}
	}

	slog.Debug("sheet loaded", "sheet", sheet.Name, "rows", len(data.DataRows))
	return data, nil
}

func (s *Service) fetch(ctx context.Context, sheet Sheet) (string, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", sheet.Name, err)
	}
	defer s.limiter.Release()

	start := time.Now()
	body, err := s.fetcher.Fetch(ctx, sheet)
	s.metrics.RecordFetch(ctx, sheet.Name, time.Since(start), err)
	return body, err
}

func (s *Service) fallback(ctx context.Context, sheet Sheet, fetchErr error) (SheetData, error) {
	if s.snapshots == nil {
		return SheetData{}, fetchErr
	}

	snap, err := s.snapshots.Latest(ctx, sheet.Name)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Warn("snapshot lookup failed", "sheet", sheet.Name, "error", err)
		}
		return SheetData{}, fetchErr
	}

	data := NewSheetData(sheet, csvparse.Parse(snap.Body), snap.FetchedAt)
	data.Stale = true
	data.SnapshotID = snap.ID.String()
	s.metrics.RecordFallback(ctx, sheet.Name)

	slog.Warn("serving sheet from snapshot",
		"sheet", sheet.Name,
		"snapshot_id", data.SnapshotID,
		"fetched_at", snap.FetchedAt,
		"error", fetchErr,
	)
	return data, nil
}

// Result returns the latest successful refresh (nil before the first one)
// and the error of the most recent refresh, if it failed.
func (s *Service) Result() (*RefreshResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result, s.lastErr
}

// ViewState builds the page state for activeTab.
func (s *Service) ViewState(activeTab int) ViewState {
	result, err := s.Result()
	return NewViewState(result, err, activeTab)
}

// Refreshing reports whether a refresh is in progress.
func (s *Service) Refreshing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshing
}

// Summaries lists the loaded sheets.
func (s *Service) Summaries() ([]SheetSummary, error) {
	result, _ := s.Result()
	if result == nil {
		return nil, ErrNotLoaded
	}

	out := make([]SheetSummary, len(result.Sheets))
	for i, d := range result.Sheets {
		out[i] = SheetSummary{
			Index:      i,
			Name:       d.Name,
			GID:        d.GID,
			RowCount:   len(d.DataRows),
			Programs:   len(d.DataRows),
			FetchedAt:  d.FetchedAt,
			Stale:      d.Stale,
			SnapshotID: d.SnapshotID,
		}
	}
	return out, nil
}

// SheetAt returns the loaded sheet at tab.
func (s *Service) SheetAt(tab int) (SheetData, error) {
	result, _ := s.Result()
	if result == nil {
		return SheetData{}, ErrNotLoaded
	}
	if tab < 0 || tab >= len(result.Sheets) {
		return SheetData{}, fmt.Errorf("%w: %d", ErrTabOutOfRange, tab)
	}
	return result.Sheets[tab], nil
}

// Programs returns the program cards of the sheet at tab.
func (s *Service) Programs(tab int) ([]Program, error) {
	data, err := s.SheetAt(tab)
	if err != nil {
		return nil, err
	}
	return ExtractPrograms(data), nil
}

// History lists stored snapshots of the sheet at tab, newest first.
func (s *Service) History(ctx context.Context, tab, limit int) ([]store.Snapshot, error) {
	if s.snapshots == nil {
		return nil, ErrNoSnapshotStore
	}
	sheets := s.registry.All()
	if tab < 0 || tab >= len(sheets) {
		return nil, fmt.Errorf("%w: %d", ErrTabOutOfRange, tab)
	}
	return s.snapshots.History(ctx, sheets[tab].Name, limit)
}

// PruneSnapshots keeps the newest keep snapshots of every sheet.
func (s *Service) PruneSnapshots(ctx context.Context, keep int) (int64, error) {
	if s.snapshots == nil {
		return 0, nil
	}

	var total int64
	for _, sheet := range s.registry.All() {
		n, err := s.snapshots.Prune(ctx, sheet.Name, keep)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// FetchLimiterStatus returns the state of the fetch limiter.
func (s *Service) FetchLimiterStatus() FetchLimiterStatus {
	return s.limiter.Status()
}

// WaitForFetches blocks until in-flight fetches finish or ctx is done.
func (s *Service) WaitForFetches(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
