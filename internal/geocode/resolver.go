package geocode

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/motortrack/motortrack-go/internal/api"
)

// Address states a report can carry before resolution finishes.
const (
	// Placeholder is shown while an address lookup is pending.
	Placeholder = "Resolving..."

	// FallbackAddress is stored in the snapshot when resolution fails.
	// Never written back to the server; a later run retries.
	FallbackAddress = "Address unavailable"
)

// DefaultWorkers bounds concurrent geocoding lookups.
const DefaultWorkers = 4

// Geocoder resolves one coordinate pair. *Client satisfies this.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}

// AddressUpdater pushes a resolved address back to the backend. nil
// disables write-back (e.g. when not logged in).
type AddressUpdater interface {
	UpdateAddress(ctx context.Context, reportID, address string) error
}

// Resolver fills in missing traffic report addresses. Resolved addresses
// are memoized per report id, so repeated resolve passes over the same
// snapshot hit the API once per report.
type Resolver struct {
	geocoder Geocoder
	updater  AddressUpdater
	logger   *slog.Logger
	workers  int

	mu   sync.Mutex
	memo map[string]string
}

// NewResolver creates a resolver with the given worker bound. workers <= 0
// falls back to DefaultWorkers.
func NewResolver(geocoder Geocoder, updater AddressUpdater, workers int, logger *slog.Logger) *Resolver {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	return &Resolver{
		geocoder: geocoder,
		updater:  updater,
		logger:   logger,
		workers:  workers,
		memo:     make(map[string]string),
	}
}

// NeedsResolution reports whether a report address still requires a
// lookup. The fallback string counts as unresolved so a persisted failure
// is retried on the next pass.
func NeedsResolution(address string) bool {
	return address == "" || address == Placeholder || address == FallbackAddress
}

// ResolveAll resolves every report whose address is empty or the pending
// placeholder, returning an updated copy of the slice and the number of
// addresses resolved. Lookups run across a bounded pool. Failures leave the
// fallback string in the snapshot; successes are memoized and pushed to the
// backend best-effort, with push failures logged and ignored.
func (r *Resolver) ResolveAll(ctx context.Context, reports []api.TrafficReport) ([]api.TrafficReport, int, error) {
	resolved := make([]api.TrafficReport, len(reports))
	copy(resolved, reports)

	var (
		group, gctx = errgroup.WithContext(ctx)
		mu          sync.Mutex
		count       int
	)

	group.SetLimit(r.workers)

	for i := range resolved {
		if !NeedsResolution(resolved[i].Address) {
			continue
		}

		group.Go(func() error {
			address, ok := r.resolveOne(gctx, &resolved[i])

			mu.Lock()
			if ok {
				count++
				resolved[i].Address = address
			} else {
				resolved[i].Address = FallbackAddress
			}
			mu.Unlock()

			return nil
		})
	}

	// Workers never return errors, so Wait only reflects ctx cancellation.
	_ = group.Wait()

	if err := ctx.Err(); err != nil {
		return resolved, count, err
	}

	return resolved, count, nil
}

// resolveOne returns the address for a single report, consulting the memo
// first. The bool result is false when the lookup failed.
func (r *Resolver) resolveOne(ctx context.Context, report *api.TrafficReport) (string, bool) {
	r.mu.Lock()
	address, hit := r.memo[report.ID]
	r.mu.Unlock()

	if hit {
		return address, true
	}

	address, err := r.geocoder.ReverseGeocode(ctx, report.Location.Latitude, report.Location.Longitude)
	if err != nil {
		r.logger.Warn("address resolution failed",
			slog.String("report_id", report.ID),
			slog.String("error", err.Error()))

		return "", false
	}

	if address == "" {
		return "", false
	}

	r.mu.Lock()
	r.memo[report.ID] = address
	r.mu.Unlock()

	r.pushAddress(ctx, report.ID, address)

	return address, true
}

// pushAddress writes a resolved address back to the backend. Fire and
// forget: the snapshot already has the address, so a failed push only means
// the next client resolves it again.
func (r *Resolver) pushAddress(ctx context.Context, reportID, address string) {
	if r.updater == nil {
		return
	}

	if err := r.updater.UpdateAddress(ctx, reportID, address); err != nil {
		r.logger.Debug("address write-back failed",
			slog.String("report_id", reportID),
			slog.String("error", err.Error()))
	}
}
