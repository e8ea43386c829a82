package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/motortrack/motortrack-go/internal/api"
	"github.com/motortrack/motortrack-go/internal/cache"
)

// maxRecentLocations caps the recently-used locations list. The cache has
// no eviction, so bounded growth is enforced here at the write site.
const maxRecentLocations = 10

// recentLocation is one entry in the recently-used locations list, newest
// first. Refuels and maintenance records push their location here so the
// next entry can suggest it.
type recentLocation struct {
	Address   string       `json:"address,omitempty"`
	Location  api.Location `json:"location"`
	Timestamp time.Time    `json:"timestamp"`
}

// pushRecentLocation prepends loc to the recent-locations list and trims it
// to the cap. Cache failures are logged and swallowed; the record that
// produced the location has already been accepted by the backend.
func pushRecentLocation(ctx context.Context, s *Session, loc recentLocation) {
	existing := loadRecentLocations(ctx, s)

	updated := make([]recentLocation, 0, len(existing)+1)
	updated = append(updated, loc)
	updated = append(updated, existing...)

	if len(updated) > maxRecentLocations {
		updated = updated[:maxRecentLocations]
	}

	data, err := json.Marshal(updated)
	if err != nil {
		return
	}

	if err := s.Cache.Set(ctx, cache.KeyRecentLocations, data); err != nil {
		s.Logger.Warn("saving recent locations", "err", err)
	}
}

// loadRecentLocations reads the stored list. Missing or malformed entries
// coerce to empty rather than failing the caller.
func loadRecentLocations(ctx context.Context, s *Session) []recentLocation {
	data, err := s.Cache.Get(ctx, cache.KeyRecentLocations)
	if err != nil || data == nil {
		return nil
	}

	var locs []recentLocation
	if err := json.Unmarshal(data, &locs); err != nil {
		s.Logger.Warn("recent locations unreadable, resetting", "err", err)

		return nil
	}

	return locs
}
