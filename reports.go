package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/motortrack/motortrack-go/internal/api"
	"github.com/motortrack/motortrack-go/internal/cache"
	"github.com/motortrack/motortrack-go/internal/geocode"
	"github.com/motortrack/motortrack-go/internal/view"
)

func newReportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List community traffic reports",
		Long: `List community traffic reports with vote tallies and verification flags.

With --resolve, missing report addresses are reverse-geocoded (requires a
Google Maps API key), written back to the backend when logged in, and the
resolved snapshot replaces the cached one.`,
		RunE: runReports,
	}

	cmd.Flags().Bool("refresh", false, "fetch from the backend before listing")
	cmd.Flags().Bool("resolve", false, "reverse-geocode missing addresses")

	return cmd
}

func runReports(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	refresh, err := cmd.Flags().GetBool("refresh")
	if err != nil {
		return err
	}

	resolve, err := cmd.Flags().GetBool("resolve")
	if err != nil {
		return err
	}

	s, err := openSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.Close()

	reports, err := loadCollection(ctx, s, reportsCollection(s), refresh)
	if err != nil {
		return err
	}

	if resolve && len(reports) > 0 {
		var count int

		reports, count, err = resolveReportAddresses(ctx, s, reports)
		if err != nil {
			return err
		}

		statusf("Resolved %d addresses.\n", count)
	}

	if len(reports) == 0 {
		statusf("No traffic reports.\n")

		return nil
	}

	if flagJSON {
		return printReportsJSON(reports)
	}

	printReportsTable(reports)

	return nil
}

// resolveReportAddresses runs the geocode resolver over the snapshot using
// the session's configured key and worker count. Returns the updated
// snapshot and how many addresses were resolved.
func resolveReportAddresses(ctx context.Context, s *Session, reports []api.TrafficReport) ([]api.TrafficReport, int, error) {
	resolver, err := newReportsResolver(s, s.Cfg.GeocodeAPIKey, s.Cfg.GeocodeWorkers)
	if err != nil {
		return nil, 0, err
	}

	return resolveWith(ctx, s, resolver, reports)
}

// resolveWith resolves missing addresses with an already-built resolver and
// persists the resolved copy so the next read serves it without lookups.
func resolveWith(ctx context.Context, s *Session, resolver *geocode.Resolver, reports []api.TrafficReport) ([]api.TrafficReport, int, error) {
	resolved, count, err := resolver.ResolveAll(ctx, reports)
	if err != nil {
		return nil, 0, err
	}

	if count > 0 {
		if data, err := json.Marshal(resolved); err == nil {
			if err := s.Cache.Set(ctx, cache.KeyReports, data); err != nil {
				s.Logger.Warn("persisting resolved reports", "err", err)
			}
		}
	}

	return resolved, count, nil
}

// newReportsResolver wires the geocoding client and, when logged in, the
// pipeline-backed address write-back.
func newReportsResolver(s *Session, apiKey string, workers int) (*geocode.Resolver, error) {
	if apiKey == "" {
		return nil, geocode.ErrMissingAPIKey
	}

	geocoder := geocode.NewClient(geocode.DefaultBaseURL, apiKey, defaultHTTPClient(), s.Logger)

	var updater geocode.AddressUpdater
	if s.Client != nil {
		updater = &reportAddressUpdater{
			client:   s.Client,
			pipeline: api.NewPipeline(s.Logger),
		}
	}

	return geocode.NewResolver(geocoder, updater, workers, s.Logger), nil
}

// maybeResolver is newReportsResolver for callers that treat a missing API
// key as "resolution off" rather than an error.
func maybeResolver(s *Session, apiKey string, workers int) *geocode.Resolver {
	resolver, err := newReportsResolver(s, apiKey, workers)
	if err != nil {
		return nil
	}

	return resolver
}

// reportAddressUpdater adapts the mutation pipeline to the resolver's
// write-back interface. Each push is one retryable mutation with its own
// idempotency key.
type reportAddressUpdater struct {
	client   *api.Client
	pipeline *api.Pipeline
}

func (u *reportAddressUpdater) UpdateAddress(ctx context.Context, reportID, address string) error {
	return u.pipeline.Submit(ctx, "update report address", func(ctx context.Context, idempotencyKey string) error {
		_, err := u.client.UpdateReportAddress(ctx, reportID, address, idempotencyKey)

		return err
	})
}

// reportJSONItem is the JSON schema for `reports --json`, with the derived
// tally alongside the raw report.
type reportJSONItem struct {
	ID          string  `json:"id"`
	Kind        string  `json:"kind"`
	Description string  `json:"description"`
	Address     string  `json:"address"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Upvotes     int     `json:"upvotes"`
	Downvotes   int     `json:"downvotes"`
	Ratio       float64 `json:"ratio"`
	Verified    bool    `json:"verified"`
}

func printReportsJSON(reports []api.TrafficReport) error {
	items := make([]reportJSONItem, 0, len(reports))

	for i := range reports {
		tally := view.TallyVotes(&reports[i])

		items = append(items, reportJSONItem{
			ID:          reports[i].ID,
			Kind:        reports[i].Kind,
			Description: reports[i].Description,
			Address:     reports[i].Address,
			Latitude:    reports[i].Location.Latitude,
			Longitude:   reports[i].Location.Longitude,
			Upvotes:     tally.Upvotes,
			Downvotes:   tally.Downvotes,
			Ratio:       tally.Ratio,
			Verified:    view.Verified(&reports[i]),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	return nil
}

func printReportsTable(reports []api.TrafficReport) {
	headers := []string{"KIND", "DESCRIPTION", "VOTES", "VERIFIED", "ADDRESS"}
	rows := make([][]string, 0, len(reports))

	for i := range reports {
		tally := view.TallyVotes(&reports[i])

		verified := "-"
		if view.Verified(&reports[i]) {
			verified = "yes"
		}

		address := reports[i].Address
		if geocode.NeedsResolution(address) {
			address = "(unresolved)"
		}

		rows = append(rows, []string{
			reports[i].Kind,
			reports[i].Description,
			fmt.Sprintf("+%d/-%d", tally.Upvotes, tally.Downvotes),
			verified,
			address,
		})
	}

	printListing(headers, rows)
}
