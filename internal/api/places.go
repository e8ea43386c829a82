package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
)

// ListTrips fetches a user's trip history.
func (c *Client) ListTrips(ctx context.Context, userID string) ([]Trip, error) {
	c.logger.Debug("fetching trips", slog.String("user_id", userID))

	var wires []tripWire

	path := fmt.Sprintf("/api/trips/user/%s", url.PathEscape(userID))
	if err := c.get(ctx, path, &wires); err != nil {
		return nil, err
	}

	trips := make([]Trip, 0, len(wires))

	for i := range wires {
		trips = append(trips, wires[i].toTrip(c.logger))
	}

	return trips, nil
}

// ListSavedDestinations fetches a user's saved destinations.
func (c *Client) ListSavedDestinations(ctx context.Context, userID string) ([]SavedDestination, error) {
	c.logger.Debug("fetching saved destinations", slog.String("user_id", userID))

	var wires []destinationWire

	path := fmt.Sprintf("/api/saved-destinations/%s", url.PathEscape(userID))
	if err := c.get(ctx, path, &wires); err != nil {
		return nil, err
	}

	destinations := make([]SavedDestination, 0, len(wires))

	for i := range wires {
		destinations = append(destinations, wires[i].toDestination())
	}

	return destinations, nil
}

// ListGasStations fetches the shared gas station directory.
func (c *Client) ListGasStations(ctx context.Context) ([]GasStation, error) {
	c.logger.Debug("fetching gas stations")

	var wires []gasStationWire

	if err := c.get(ctx, "/api/gas-stations", &wires); err != nil {
		return nil, err
	}

	stations := make([]GasStation, 0, len(wires))

	for i := range wires {
		stations = append(stations, wires[i].toStation())
	}

	return stations, nil
}
