package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/motortrack/motortrack-go/internal/geocode"
	"github.com/motortrack/motortrack-go/internal/sync"
)

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Refresh every cached collection from the backend",
		Long: `Refresh every cached collection from the backend in one pass.

Collections refresh concurrently; a failure in one never blocks the others,
and its last cached snapshot keeps serving. When a Google Maps API key is
configured, missing traffic report addresses are resolved afterwards.`,
		RunE: runSync,
	}

	cmd.Flags().Bool("force", false, "supersede refreshes already in flight")

	return cmd
}

// syncOutput is the JSON schema for `sync --json`.
type syncOutput struct {
	Refreshed         int               `json:"refreshed"`
	Failed            int               `json:"failed"`
	Skipped           int               `json:"skipped"`
	DurationMs        int64             `json:"duration_ms"`
	Errors            []syncErrorOutput `json:"errors,omitempty"`
	ResolvedAddresses int               `json:"resolved_addresses"`
}

type syncErrorOutput struct {
	Collection string `json:"collection"`
	Error      string `json:"error"`
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	s, err := openSession(ctx, true)
	if err != nil {
		return err
	}
	defer s.Close()

	cs := newCollectionSet(s)
	hub := cs.hub(s)

	if err := hub.WarmAll(ctx); err != nil {
		s.Logger.Warn("cache warm reported failures", "err", err)
	}

	report := hub.RefreshAll(ctx, force)

	resolved := 0
	if s.Cfg.GeocodeAPIKey != "" {
		resolved = resolveAfterSync(ctx, s, cs)
	}

	if flagJSON {
		return printSyncJSON(report, resolved)
	}

	printSyncText(report, resolved)

	if report.Failed > 0 {
		return fmt.Errorf("%d of %d collections failed to refresh", report.Failed, report.Refreshed+report.Failed)
	}

	return nil
}

// resolveAfterSync resolves missing report addresses on the fresh snapshot
// and persists the result. Failures never fail the sync; the addresses
// resolve on a later pass.
func resolveAfterSync(ctx context.Context, s *Session, cs *collectionSet) int {
	reports, ok := cs.Reports.Current()
	if !ok || len(reports) == 0 {
		return 0
	}

	pending := 0

	for i := range reports {
		if geocode.NeedsResolution(reports[i].Address) {
			pending++
		}
	}

	if pending == 0 {
		return 0
	}

	_, count, err := resolveReportAddresses(ctx, s, reports)
	if err != nil {
		s.Logger.Warn("address resolution failed", "err", err)

		return 0
	}

	return count
}

func printSyncJSON(report *sync.Report, resolved int) error {
	out := syncOutput{
		Refreshed:         report.Refreshed,
		Failed:            report.Failed,
		Skipped:           report.Skipped,
		DurationMs:        report.Duration.Milliseconds(),
		ResolvedAddresses: resolved,
	}

	for _, ce := range report.Errors {
		out.Errors = append(out.Errors, syncErrorOutput{
			Collection: ce.Key,
			Error:      ce.Err.Error(),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	return nil
}

func printSyncText(report *sync.Report, resolved int) {
	statusf("Sync: %s.\n", report.Summary())

	if resolved > 0 {
		statusf("Resolved %d report addresses.\n", resolved)
	}

	for _, ce := range report.Errors {
		fmt.Fprintf(os.Stderr, "  %s: %v\n", ce.Key, ce.Err)
	}
}
