package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/JonMunkholm/proker/internal/store"
	"github.com/JonMunkholm/proker/internal/telemetry"
)

// fakeFetcher serves fixed bodies per sheet name.
type fakeFetcher struct {
	mu     sync.Mutex
	bodies map[string]string
	errs   map[string]error
	calls  atomic.Int32
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{bodies: make(map[string]string), errs: make(map[string]error)}
}

func (f *fakeFetcher) set(name, body string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[name] = body
	if err != nil {
		f.errs[name] = err
	} else {
		delete(f.errs, name)
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, sheet Sheet) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[sheet.Name]; err != nil {
		return "", err
	}
	return f.bodies[sheet.Name], nil
}

var testSheets = []Sheet{
	{Name: "Interdisipliner", GID: "1"},
	{Name: "Kluster Medika", GID: "2"},
}

func newTestService(t *testing.T, f Fetcher, snapshots store.SnapshotStore) *Service {
	t.Helper()
	r, err := NewRegistry(testSheets...)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return NewService(r, f, ServiceOptions{MaxConcurrentFetches: 2, Snapshots: snapshots})
}

func TestService_Refresh(t *testing.T) {
	f := newFakeFetcher()
	f.set("Interdisipliner", "Judul,Tujuan\nBank Sampah,Mengurangi sampah\nPosyandu,-\n", nil)
	f.set("Kluster Medika", "Judul\n", nil)

	s := newTestService(t, f, nil)

	if _, err := s.Summaries(); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Summaries() before refresh error = %v, want ErrNotLoaded", err)
	}
	if v := s.ViewState(0); !v.Loading {
		t.Error("ViewState before refresh should be loading")
	}

	result, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if len(result.Sheets) != 2 {
		t.Fatalf("len(Sheets) = %d, want 2", len(result.Sheets))
	}
	if result.Sheets[0].Name != "Interdisipliner" || result.Sheets[1].Name != "Kluster Medika" {
		t.Errorf("sheet order = %s, %s", result.Sheets[0].Name, result.Sheets[1].Name)
	}
	if got := len(result.Sheets[0].DataRows); got != 2 {
		t.Errorf("data rows = %d, want 2", got)
	}
	if f.calls.Load() != 2 {
		t.Errorf("fetch calls = %d, want 2", f.calls.Load())
	}

	summaries, err := s.Summaries()
	if err != nil {
		t.Fatalf("Summaries() error = %v", err)
	}
	if summaries[0].RowCount != 2 || summaries[1].RowCount != 0 {
		t.Errorf("summaries = %+v", summaries)
	}

	programs, err := s.Programs(0)
	if err != nil {
		t.Fatalf("Programs() error = %v", err)
	}
	if len(programs) != 2 || programs[0].Title != "Bank Sampah" {
		t.Errorf("programs = %+v", programs)
	}

	programs, err = s.Programs(1)
	if err != nil || programs != nil {
		t.Errorf("Programs(header only) = %v, %v, want nil, nil", programs, err)
	}

	if _, err := s.Programs(7); !errors.Is(err, ErrTabOutOfRange) {
		t.Errorf("Programs(7) error = %v, want ErrTabOutOfRange", err)
	}

	v := s.ViewState(1)
	if v.Loading || v.Err != nil || v.ActiveTab != 1 {
		t.Errorf("ViewState = %+v", v)
	}
}

func TestService_RefreshAllOrNothing(t *testing.T) {
	f := newFakeFetcher()
	f.set("Interdisipliner", "Judul\nA\n", nil)
	f.set("Kluster Medika", "Judul\nB\n", nil)

	s := newTestService(t, f, nil)
	first, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	fetchErr := errors.New("failed to fetch Kluster Medika: 500 Internal Server Error")
	f.set("Kluster Medika", "", fetchErr)

	if _, err := s.Refresh(context.Background()); !errors.Is(err, fetchErr) {
		t.Fatalf("Refresh() error = %v, want %v", err, fetchErr)
	}

	result, lastErr := s.Result()
	if result != first {
		t.Error("failed refresh replaced the previous result")
	}
	if !errors.Is(lastErr, fetchErr) {
		t.Errorf("Result() error = %v", lastErr)
	}

	v := s.ViewState(0)
	if v.Err == nil || !v.HasData() || v.Loading {
		t.Errorf("ViewState after failure = %+v", v)
	}
	if v.ErrorMessage() != fetchErr.Error() {
		t.Errorf("ErrorMessage() = %q", v.ErrorMessage())
	}

	f.set("Kluster Medika", "Judul\nC\n", nil)
	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() after recovery error = %v", err)
	}
	if _, lastErr := s.Result(); lastErr != nil {
		t.Errorf("error not cleared after success: %v", lastErr)
	}
}

func TestService_SnapshotFallback(t *testing.T) {
	snapshots := store.NewMemory()
	f := newFakeFetcher()
	f.set("Interdisipliner", "Judul\nA\n", nil)
	f.set("Kluster Medika", "Judul\nB\nC\n", nil)

	s := newTestService(t, f, snapshots)
	ctx := context.Background()

	first, err := s.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if first.Sheets[1].SnapshotID == "" {
		t.Error("successful fetch did not record a snapshot")
	}

	f.set("Kluster Medika", "", fmt.Errorf("failed to fetch Kluster Medika: %w", context.DeadlineExceeded))

	result, err := s.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh() with fallback error = %v", err)
	}
	medika := result.Sheets[1]
	if !medika.Stale {
		t.Error("fallback sheet not marked stale")
	}
	if medika.SnapshotID != first.Sheets[1].SnapshotID {
		t.Errorf("SnapshotID = %q, want %q", medika.SnapshotID, first.Sheets[1].SnapshotID)
	}
	if len(medika.DataRows) != 2 {
		t.Errorf("fallback rows = %d, want 2", len(medika.DataRows))
	}
	if result.Sheets[0].Stale {
		t.Error("healthy sheet marked stale")
	}
	if result.StaleCount() != 1 {
		t.Errorf("StaleCount() = %d, want 1", result.StaleCount())
	}

	history, err := s.History(ctx, 0, 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 {
		t.Errorf("Interdisipliner history = %d, want 2", len(history))
	}

	pruned, err := s.PruneSnapshots(ctx, 1)
	if err != nil {
		t.Fatalf("PruneSnapshots() error = %v", err)
	}
	if pruned != 1 {
		t.Errorf("pruned = %d, want 1", pruned)
	}
}

func TestService_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := telemetry.New(mp.Meter("test"))
	if err != nil {
		t.Fatalf("telemetry.New() error = %v", err)
	}

	r, err := NewRegistry(testSheets...)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	f := newFakeFetcher()
	f.set("Interdisipliner", "Judul\nA\n", nil)
	f.set("Kluster Medika", "Judul\nB\n", nil)
	s := NewService(r, f, ServiceOptions{Snapshots: store.NewMemory(), Metrics: metrics})

	ctx := ContextWithTrigger(context.Background(), TriggerStartup)
	if _, err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	f.set("Kluster Medika", "", errors.New("failed to fetch Kluster Medika: 500 Internal Server Error"))
	if _, err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() with fallback error = %v", err)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	totals := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					totals[m.Name] += dp.Value
				}
			}
		}
	}

	want := map[string]int64{
		"proker.refresh.count":      2,
		"proker.fetch.count":        4,
		"proker.snapshot.fallbacks": 1,
	}
	for name, n := range want {
		if totals[name] != n {
			t.Errorf("%s = %d, want %d", name, totals[name], n)
		}
	}
}

func TestService_NoSnapshotFallsThrough(t *testing.T) {
	f := newFakeFetcher()
	fetchErr := errors.New("failed to fetch Interdisipliner: 404 Not Found")
	f.set("Interdisipliner", "", fetchErr)
	f.set("Kluster Medika", "Judul\n", nil)

	s := newTestService(t, f, store.NewMemory())

	if _, err := s.Refresh(context.Background()); !errors.Is(err, fetchErr) {
		t.Errorf("Refresh() error = %v, want %v", err, fetchErr)
	}

	v := s.ViewState(0)
	if v.Loading || v.Err == nil || v.HasData() {
		t.Errorf("ViewState = %+v, want error without data", v)
	}
}

func TestService_HistoryWithoutStore(t *testing.T) {
	s := newTestService(t, newFakeFetcher(), nil)

	if _, err := s.History(context.Background(), 0, 10); !errors.Is(err, ErrNoSnapshotStore) {
		t.Errorf("History() error = %v, want ErrNoSnapshotStore", err)
	}
	if n, err := s.PruneSnapshots(context.Background(), 1); n != 0 || err != nil {
		t.Errorf("PruneSnapshots() = %d, %v", n, err)
	}
}

func TestService_HistoryBadTab(t *testing.T) {
	s := newTestService(t, newFakeFetcher(), store.NewMemory())

	if _, err := s.History(context.Background(), 9, 10); !errors.Is(err, ErrTabOutOfRange) {
		t.Errorf("History() error = %v, want ErrTabOutOfRange", err)
	}
}

// blockingFetcher holds every fetch until release is closed.
type blockingFetcher struct {
	active  atomic.Int32
	max     atomic.Int32
	release chan struct{}
}

func (f *blockingFetcher) Fetch(ctx context.Context, sheet Sheet) (string, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		old := f.max.Load()
		if n <= old || f.max.CompareAndSwap(old, n) {
			break
		}
	}
	select {
	case <-f.release:
		return "Judul\n" + sheet.Name + "\n", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestService_RefreshBoundedConcurrency(t *testing.T) {
	sheets := make([]Sheet, 6)
	for i := range sheets {
		sheets[i] = Sheet{Name: fmt.Sprintf("Sheet %d", i)}
	}
	r, err := NewRegistry(sheets...)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	f := &blockingFetcher{release: make(chan struct{})}
	s := NewService(r, f, ServiceOptions{MaxConcurrentFetches: 2, FetchWait: 5 * time.Second})

	done := make(chan error, 1)
	go func() {
		_, err := s.Refresh(context.Background())
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	if !s.Refreshing() {
		t.Error("Refreshing() = false during refresh")
	}
	close(f.release)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Refresh() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Refresh() did not finish")
	}

	if got := f.max.Load(); got > 2 {
		t.Errorf("max concurrent fetches = %d, want <= 2", got)
	}
	if s.Refreshing() {
		t.Error("Refreshing() = true after refresh")
	}
	if status := s.FetchLimiterStatus(); status.Active != 0 {
		t.Errorf("limiter active = %d after refresh", status.Active)
	}
}
