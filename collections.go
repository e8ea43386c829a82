package main

import (
	"context"

	"github.com/motortrack/motortrack-go/internal/api"
	"github.com/motortrack/motortrack-go/internal/cache"
	"github.com/motortrack/motortrack-go/internal/sync"
)

// collectionSet bundles every cache-first collection the CLI serves. Built
// once per command from a Session; fetch closures go through s.online() so
// an offline refresh fails per-collection instead of panicking.
type collectionSet struct {
	Motors       *sync.Collection[api.Motor]
	Trips        *sync.Collection[api.Trip]
	Destinations *sync.Collection[api.SavedDestination]
	FuelLogs     *sync.Collection[api.FuelLogEntry]
	Maintenance  *sync.Collection[api.MaintenanceRecord]
	Stations     *sync.Collection[api.GasStation]
	Reports      *sync.Collection[api.TrafficReport]
}

func newCollectionSet(s *Session) *collectionSet {
	return &collectionSet{
		Motors:       motorsCollection(s),
		Trips:        tripsCollection(s),
		Destinations: destinationsCollection(s),
		FuelLogs:     fuelLogsCollection(s),
		Maintenance:  maintenanceCollection(s),
		Stations:     stationsCollection(s),
		Reports:      reportsCollection(s),
	}
}

// hub returns a Hub with every collection registered, for sync and watch.
func (cs *collectionSet) hub(s *Session) *sync.Hub {
	h := sync.NewHub(s.Logger)
	h.Add(cs.Motors)
	h.Add(cs.Trips)
	h.Add(cs.Destinations)
	h.Add(cs.FuelLogs)
	h.Add(cs.Maintenance)
	h.Add(cs.Stations)
	h.Add(cs.Reports)

	return h
}

func motorsCollection(s *Session) *sync.Collection[api.Motor] {
	return sync.NewCollection(cache.Key(cache.KindMotors, s.UserID), s.Cache,
		func(ctx context.Context) ([]api.Motor, error) {
			client, err := s.online()
			if err != nil {
				return nil, err
			}

			return client.ListMotors(ctx, s.UserID)
		}, s.Logger)
}

func tripsCollection(s *Session) *sync.Collection[api.Trip] {
	return sync.NewCollection(cache.Key(cache.KindTrips, s.UserID), s.Cache,
		func(ctx context.Context) ([]api.Trip, error) {
			client, err := s.online()
			if err != nil {
				return nil, err
			}

			return client.ListTrips(ctx, s.UserID)
		}, s.Logger)
}

func destinationsCollection(s *Session) *sync.Collection[api.SavedDestination] {
	return sync.NewCollection(cache.Key(cache.KindDestinations, s.UserID), s.Cache,
		func(ctx context.Context) ([]api.SavedDestination, error) {
			client, err := s.online()
			if err != nil {
				return nil, err
			}

			return client.ListSavedDestinations(ctx, s.UserID)
		}, s.Logger)
}

func fuelLogsCollection(s *Session) *sync.Collection[api.FuelLogEntry] {
	return sync.NewCollection(cache.Key(cache.KindFuelLogs, s.UserID), s.Cache,
		func(ctx context.Context) ([]api.FuelLogEntry, error) {
			client, err := s.online()
			if err != nil {
				return nil, err
			}

			return client.ListFuelLogs(ctx, s.UserID)
		}, s.Logger)
}

func maintenanceCollection(s *Session) *sync.Collection[api.MaintenanceRecord] {
	return sync.NewCollection(cache.Key(cache.KindMaintenance, s.UserID), s.Cache,
		func(ctx context.Context) ([]api.MaintenanceRecord, error) {
			client, err := s.online()
			if err != nil {
				return nil, err
			}

			return client.ListMaintenanceRecords(ctx, s.UserID)
		}, s.Logger)
}

// stationsCollection is user-keyed even though the listing is global; the
// backend filters stations by proximity to the user's recent activity.
func stationsCollection(s *Session) *sync.Collection[api.GasStation] {
	return sync.NewCollection(cache.Key(cache.KindGasStations, s.UserID), s.Cache,
		func(ctx context.Context) ([]api.GasStation, error) {
			client, err := s.online()
			if err != nil {
				return nil, err
			}

			return client.ListGasStations(ctx)
		}, s.Logger)
}

// reportsCollection uses the global key: traffic reports are community-wide.
func reportsCollection(s *Session) *sync.Collection[api.TrafficReport] {
	return sync.NewCollection(cache.KeyReports, s.Cache,
		func(ctx context.Context) ([]api.TrafficReport, error) {
			client, err := s.online()
			if err != nil {
				return nil, err
			}

			return client.ListReports(ctx)
		}, s.Logger)
}

// loadCollection is the cache-first read path shared by the listing
// commands: serve the cached snapshot instantly, fetch only when asked to
// refresh or when nothing is cached yet. A failed refresh falls back to the
// cached snapshot with a status note; failing with no cache at all is the
// only hard error.
func loadCollection[T any](ctx context.Context, s *Session, col *sync.Collection[T], refresh bool) ([]T, error) {
	if err := col.LoadCached(ctx); err != nil {
		return nil, err
	}

	_, hasCache := col.Current()

	if refresh || !hasCache {
		if err := col.Refresh(ctx, false); err != nil {
			if !hasCache {
				return nil, err
			}

			s.Logger.Warn("refresh failed, serving cached snapshot",
				"collection", col.Key(), "err", err)
			statusf("Refresh failed; showing cached data.\n")
		}
	}

	items, _ := col.Current()

	return items, nil
}
