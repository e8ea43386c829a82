package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/motortrack/motortrack-go/internal/api"
)

// The three place listings share one read path: cache-first with an
// optional refresh. Only the columns differ.

func newTripsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trips",
		Short: "List your recorded trips",
		RunE:  runTrips,
	}

	cmd.Flags().Bool("refresh", false, "fetch from the backend before listing")

	return cmd
}

func newDestinationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "destinations",
		Short: "List your saved destinations",
		RunE:  runDestinations,
	}

	cmd.Flags().Bool("refresh", false, "fetch from the backend before listing")

	return cmd
}

func newStationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stations",
		Short: "List nearby gas stations with prices",
		RunE:  runStations,
	}

	cmd.Flags().Bool("refresh", false, "fetch from the backend before listing")

	return cmd
}

func runTrips(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	refresh, err := cmd.Flags().GetBool("refresh")
	if err != nil {
		return err
	}

	s, err := openSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.Close()

	trips, err := loadCollection(ctx, s, tripsCollection(s), refresh)
	if err != nil {
		return err
	}

	if len(trips) == 0 {
		statusf("No trips recorded.\n")

		return nil
	}

	if flagJSON {
		return printJSONList(trips)
	}

	headers := []string{"DATE", "FROM", "TO", "DISTANCE"}
	rows := make([][]string, 0, len(trips))

	for _, t := range trips {
		rows = append(rows, []string{
			formatTime(t.Date),
			t.Origin,
			t.Destination,
			formatKm(t.DistanceKm),
		})
	}

	printListing(headers, rows)

	return nil
}

func runDestinations(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	refresh, err := cmd.Flags().GetBool("refresh")
	if err != nil {
		return err
	}

	s, err := openSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.Close()

	dests, err := loadCollection(ctx, s, destinationsCollection(s), refresh)
	if err != nil {
		return err
	}

	if len(dests) == 0 {
		statusf("No saved destinations.\n")

		return nil
	}

	if flagJSON {
		return printJSONList(dests)
	}

	headers := []string{"NAME", "ADDRESS", "LOCATION"}
	rows := make([][]string, 0, len(dests))

	for _, d := range dests {
		rows = append(rows, []string{
			d.Name,
			d.Address,
			locationString(d.Location),
		})
	}

	printListing(headers, rows)

	return nil
}

func runStations(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	refresh, err := cmd.Flags().GetBool("refresh")
	if err != nil {
		return err
	}

	s, err := openSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.Close()

	stations, err := loadCollection(ctx, s, stationsCollection(s), refresh)
	if err != nil {
		return err
	}

	if len(stations) == 0 {
		statusf("No gas stations cached.\n")

		return nil
	}

	if flagJSON {
		return printJSONList(stations)
	}

	headers := []string{"NAME", "BRAND", "PRICE/L", "ADDRESS"}
	rows := make([][]string, 0, len(stations))

	for _, st := range stations {
		rows = append(rows, []string{
			st.Name,
			st.Brand,
			formatPeso(st.PricePerLiter),
			st.Address,
		})
	}

	printListing(headers, rows)

	return nil
}

// printJSONList writes any slice as indented JSON to stdout. The api types
// marshal with their Go field names, which is also how they are cached.
func printJSONList[T any](items []T) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	return nil
}

// locationString renders a coordinate pair for table output.
func locationString(loc api.Location) string {
	if loc.Zero() {
		return "-"
	}

	return fmt.Sprintf("%.5f,%.5f", loc.Latitude, loc.Longitude)
}
