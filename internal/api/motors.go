package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
)

// ListMotors fetches all motors registered to a user.
func (c *Client) ListMotors(ctx context.Context, userID string) ([]Motor, error) {
	c.logger.Debug("fetching motors", slog.String("user_id", userID))

	var wires []motorWire

	path := fmt.Sprintf("/api/user-motors/user/%s", url.PathEscape(userID))
	if err := c.get(ctx, path, &wires); err != nil {
		return nil, err
	}

	motors := make([]Motor, 0, len(wires))

	for i := range wires {
		motors = append(motors, wires[i].toMotor(c.logger))
	}

	return motors, nil
}

// motorUpdateRequest is the PUT body for partial motor updates. Pointer
// fields are omitted when nil, so only the touched field travels.
type motorUpdateRequest struct {
	FuelLevel *float64 `json:"currentFuelLevel,omitempty"`
}

// motorEfficiencyRequest is the PUT body for the efficiency endpoint: the
// full replacement record history plus the new current value.
type motorEfficiencyRequest struct {
	EfficiencyRecords []efficiencyRecordWire `json:"fuelEfficiencyRecords"`
	CurrentEfficiency float64                `json:"currentFuelEfficiency"`
}

// UpdateMotorFuelLevel sets a motor's stored fuel level percentage. Callers
// must validate the level first; the backend trusts it.
func (c *Client) UpdateMotorFuelLevel(ctx context.Context, motorID string, levelPercent float64, idempotencyKey string) (*Motor, error) {
	c.logger.Info("updating motor fuel level",
		slog.String("motor_id", motorID),
		slog.Float64("level_percent", levelPercent))

	body := motorUpdateRequest{FuelLevel: &levelPercent}

	var wire motorWire

	path := fmt.Sprintf("/api/user-motors/%s", url.PathEscape(motorID))
	if err := c.putJSON(ctx, path, body, &wire, idempotencyKey); err != nil {
		return nil, err
	}

	motor := wire.toMotor(c.logger)

	return &motor, nil
}

// UpdateMotorEfficiency replaces a motor's efficiency history and current
// efficiency value in one call.
func (c *Client) UpdateMotorEfficiency(ctx context.Context, motorID string, records []EfficiencyRecord, current float64, idempotencyKey string) (*Motor, error) {
	c.logger.Info("updating motor efficiency",
		slog.String("motor_id", motorID),
		slog.Float64("current", current),
		slog.Int("records", len(records)))

	body := motorEfficiencyRequest{
		EfficiencyRecords: make([]efficiencyRecordWire, 0, len(records)),
		CurrentEfficiency: current,
	}

	for _, rec := range records {
		body.EfficiencyRecords = append(body.EfficiencyRecords, efficiencyRecordWire{
			Timestamp:  rec.Timestamp.UTC().Format(timestampFormat),
			Efficiency: rec.Efficiency,
		})
	}

	var wire motorWire

	path := fmt.Sprintf("/api/user-motors/%s/updateEfficiency", url.PathEscape(motorID))
	if err := c.putJSON(ctx, path, body, &wire, idempotencyKey); err != nil {
		return nil, err
	}

	motor := wire.toMotor(c.logger)

	return &motor, nil
}
