package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// ListFuelLogs fetches a user's native fuel log entries.
func (c *Client) ListFuelLogs(ctx context.Context, userID string) ([]FuelLogEntry, error) {
	c.logger.Debug("fetching fuel logs", slog.String("user_id", userID))

	var wires []fuelLogWire

	path := fmt.Sprintf("/api/fuel-logs/%s", url.PathEscape(userID))
	if err := c.get(ctx, path, &wires); err != nil {
		return nil, err
	}

	entries := make([]FuelLogEntry, 0, len(wires))

	for i := range wires {
		entries = append(entries, wires[i].toEntry(c.logger))
	}

	return entries, nil
}

// ListMaintenanceRecords fetches a user's maintenance history.
func (c *Client) ListMaintenanceRecords(ctx context.Context, userID string) ([]MaintenanceRecord, error) {
	c.logger.Debug("fetching maintenance records", slog.String("user_id", userID))

	var wires []maintenanceWire

	path := fmt.Sprintf("/api/maintenance-records/user/%s", url.PathEscape(userID))
	if err := c.get(ctx, path, &wires); err != nil {
		return nil, err
	}

	records := make([]MaintenanceRecord, 0, len(wires))

	for i := range wires {
		records = append(records, wires[i].toRecord(c.logger))
	}

	return records, nil
}

// NewMaintenanceRecord is the input for creating a maintenance record.
// Quantity and CostPerLiter are optional depending on Kind; callers derive
// missing refuel quantities before submitting.
type NewMaintenanceRecord struct {
	UserID       string
	MotorID      string
	Kind         MaintenanceKind
	Timestamp    time.Time
	Location     Location
	Cost         float64
	Quantity     float64
	CostPerLiter float64
	Notes        string
}

// createMaintenanceRequest is the POST body for maintenance creation.
type createMaintenanceRequest struct {
	UserID    string                 `json:"userId"`
	MotorID   string                 `json:"motorId"`
	Kind      string                 `json:"type"`
	Timestamp string                 `json:"timestamp"`
	Location  locationWire           `json:"location"`
	Details   maintenanceDetailsWire `json:"details"`
}

// CreateMaintenanceRecord submits a new maintenance record. The
// idempotencyKey makes retried submissions safe against duplicates and must
// stay constant across attempts of the same logical submission.
func (c *Client) CreateMaintenanceRecord(ctx context.Context, rec *NewMaintenanceRecord, idempotencyKey string) (*MaintenanceRecord, error) {
	c.logger.Info("creating maintenance record",
		slog.String("motor_id", rec.MotorID),
		slog.String("type", string(rec.Kind)),
		slog.Float64("cost", rec.Cost))

	body := createMaintenanceRequest{
		UserID:    rec.UserID,
		MotorID:   rec.MotorID,
		Kind:      string(rec.Kind),
		Timestamp: rec.Timestamp.UTC().Format(timestampFormat),
		Location:  locationWire(rec.Location),
		Details: maintenanceDetailsWire{
			Cost:  rec.Cost,
			Notes: rec.Notes,
		},
	}

	if rec.Quantity > 0 {
		body.Details.Quantity = &rec.Quantity
	}

	if rec.CostPerLiter > 0 {
		body.Details.CostPerLiter = &rec.CostPerLiter
	}

	var wire maintenanceWire

	if err := c.postJSON(ctx, "/api/maintenance-records", body, &wire, idempotencyKey); err != nil {
		return nil, err
	}

	created := wire.toRecord(c.logger)

	return &created, nil
}
