package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/motortrack/motortrack-go/internal/api"
	"github.com/motortrack/motortrack-go/internal/view"
)

func newTimelineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Show the combined fuel history",
		Long: `Show fuel log entries and refuel maintenance records merged into one
newest-first timeline. Each row is tagged with its source collection.`,
		RunE: runTimeline,
	}

	cmd.Flags().Bool("refresh", false, "fetch from the backend before listing")
	cmd.Flags().Int("limit", 0, "show at most N entries (0 = all)")

	return cmd
}

func runTimeline(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	refresh, err := cmd.Flags().GetBool("refresh")
	if err != nil {
		return err
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	s, err := openSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.Close()

	logs, err := loadCollection(ctx, s, fuelLogsCollection(s), refresh)
	if err != nil {
		return err
	}

	records, err := loadCollection(ctx, s, maintenanceCollection(s), refresh)
	if err != nil {
		return err
	}

	entries := view.FuelTimeline(logs, records)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	if len(entries) == 0 {
		statusf("No fuel history.\n")

		return nil
	}

	if flagJSON {
		return printJSONList(entries)
	}

	printTimelineTable(entries)

	return nil
}

func printTimelineTable(entries []api.FuelLogEntry) {
	headers := []string{"DATE", "LITERS", "PRICE/L", "COST", "ODOMETER", "SOURCE", "ADDRESS"}
	rows := make([][]string, 0, len(entries))

	for _, e := range entries {
		odometer := "-"
		if e.Odometer > 0 {
			odometer = formatKm(e.Odometer)
		}

		rows = append(rows, []string{
			formatTime(e.Date),
			formatLiters(e.Liters),
			formatPeso(e.PricePerLiter),
			formatPeso(e.TotalCost),
			odometer,
			string(e.Source),
			e.Address,
		})
	}

	printListing(headers, rows)

	total := 0.0
	for _, e := range entries {
		total += e.TotalCost
	}

	statusf("%d entries, %s total\n", len(entries), formatPeso(total))
}
