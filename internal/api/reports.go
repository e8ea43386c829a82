package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
)

// ListReports fetches all community traffic reports. Reports are shared,
// not per-user, so the endpoint takes no user id.
func (c *Client) ListReports(ctx context.Context) ([]TrafficReport, error) {
	c.logger.Debug("fetching traffic reports")

	var wires []trafficReportWire

	if err := c.get(ctx, "/api/reports", &wires); err != nil {
		return nil, err
	}

	reports := make([]TrafficReport, 0, len(wires))

	for i := range wires {
		reports = append(reports, wires[i].toReport())
	}

	return reports, nil
}

// reportAddressRequest is the PUT body for address write-back. Only the
// address field travels; everything else on the report is server-owned.
type reportAddressRequest struct {
	Address string `json:"address"`
}

// UpdateReportAddress stores a resolved street address on a report.
func (c *Client) UpdateReportAddress(ctx context.Context, reportID, address, idempotencyKey string) (*TrafficReport, error) {
	c.logger.Info("updating report address",
		slog.String("report_id", reportID),
		slog.String("address", address))

	var wire trafficReportWire

	path := fmt.Sprintf("/api/reports/%s", url.PathEscape(reportID))
	if err := c.putJSON(ctx, path, reportAddressRequest{Address: address}, &wire, idempotencyKey); err != nil {
		return nil, err
	}

	report := wire.toReport()

	return &report, nil
}
