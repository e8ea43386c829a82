package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	stdsync "sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// defaultRefreshWorkers bounds concurrent collection refreshes in
// RefreshAll.
const defaultRefreshWorkers = 4

// Member is the type-erased view of a Collection the hub manages.
type Member interface {
	Key() string
	State() State
	LoadCached(ctx context.Context) error
	Refresh(ctx context.Context, force bool) error
}

// CollectionError pairs a failed collection with its error.
type CollectionError struct {
	Key string
	Err error
}

// Report summarizes one RefreshAll pass.
type Report struct {
	Refreshed int
	Failed    int
	Skipped   int
	Duration  time.Duration
	Errors    []CollectionError
}

// Summary renders a one-line human-readable result.
func (r *Report) Summary() string {
	s := fmt.Sprintf("%d refreshed, %d failed", r.Refreshed, r.Failed)
	if r.Skipped > 0 {
		s += fmt.Sprintf(", %d skipped", r.Skipped)
	}

	return s + fmt.Sprintf(" in %s", r.Duration.Round(time.Millisecond))
}

// Hub coordinates the full set of registered collections: cache warming at
// startup and fan-out refreshes. A failure in one collection never blocks
// the others.
type Hub struct {
	logger  *slog.Logger
	workers int

	mu      stdsync.Mutex
	members []Member
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{logger: logger, workers: defaultRefreshWorkers}
}

// Add registers a collection. Not safe to call concurrently with
// WarmAll/RefreshAll; register everything up front.
func (h *Hub) Add(m Member) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.members = append(h.members, m)
}

// Members returns the registered collections in registration order.
func (h *Hub) Members() []Member {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Member, len(h.members))
	copy(out, h.members)

	return out
}

// WarmAll loads every collection's cached snapshot sequentially. Individual
// failures are collected and joined, but never stop the remaining loads: a
// broken cache entry must not take cold-start down with it.
func (h *Hub) WarmAll(ctx context.Context) error {
	var errs []error

	for _, m := range h.Members() {
		if err := m.LoadCached(ctx); err != nil {
			h.logger.Warn("cache warm failed",
				slog.String("collection", m.Key()),
				slog.String("error", err.Error()))

			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// RefreshAll refreshes every collection across a bounded worker pool and
// reports the outcome. Collections already refreshing are skipped unless
// force is set. Workers always return nil to the group so one failing
// collection cannot cancel its siblings; errors land in the report instead.
func (h *Hub) RefreshAll(ctx context.Context, force bool) *Report {
	start := time.Now()

	report := &Report{}

	var reportMu stdsync.Mutex

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(h.workers)

	for _, m := range h.Members() {
		group.Go(func() error {
			if !force && m.State() == StateRefreshing {
				reportMu.Lock()
				report.Skipped++
				reportMu.Unlock()

				return nil
			}

			err := m.Refresh(gctx, force)

			reportMu.Lock()
			defer reportMu.Unlock()

			if err != nil {
				report.Failed++
				report.Errors = append(report.Errors, CollectionError{Key: m.Key(), Err: err})

				return nil
			}

			report.Refreshed++

			return nil
		})
	}

	_ = group.Wait()

	report.Duration = time.Since(start)

	h.logger.Info("refresh pass complete",
		slog.Int("refreshed", report.Refreshed),
		slog.Int("failed", report.Failed),
		slog.Int("skipped", report.Skipped),
		slog.Duration("duration", report.Duration))

	return report
}
