package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/motortrack/motortrack-go/internal/api"
)

// maintenanceKinds are the accepted --kind values for maintenance add.
// Refuels carry fuel-state side effects and go through the refuel command.
var maintenanceKinds = map[string]api.MaintenanceKind{
	"oil_change": api.KindOilChange,
	"tune_up":    api.KindTuneUp,
	"repair":     api.KindRepair,
	"other":      api.KindOther,
}

func newMaintenanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maintenance",
		Short: "Record and list maintenance work",
	}

	cmd.AddCommand(newMaintenanceAddCmd())
	cmd.AddCommand(newMaintenanceListCmd())

	return cmd
}

func newMaintenanceAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a maintenance entry",
		Long: `Record a maintenance entry (oil change, tune-up, repair, other).

Refuels update fuel state and have their own command; use
'motortrack-go refuel' instead of 'maintenance add --kind refuel'.`,
		RunE: runMaintenanceAdd,
	}

	cmd.Flags().String("motor", "", "motorcycle id or name (optional when you have exactly one)")
	cmd.Flags().String("kind", "", "one of: oil_change, tune_up, repair, other")
	cmd.Flags().Float64("cost", 0, "total cost in pesos")
	cmd.Flags().Float64("quantity", 0, "quantity used, e.g. oil liters")
	cmd.Flags().String("notes", "", "free-form notes")
	cmd.Flags().String("date", "", "entry date (2006-01-02 or 2006-01-02 15:04), default now")
	cmd.Flags().Float64("lat", 0, "location latitude")
	cmd.Flags().Float64("lng", 0, "location longitude")

	_ = cmd.MarkFlagRequired("kind")

	return cmd
}

func newMaintenanceListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List maintenance entries",
		RunE:  runMaintenanceList,
	}

	cmd.Flags().Bool("refresh", false, "fetch from the backend before listing")
	cmd.Flags().String("kind", "", "only show entries of this kind")

	return cmd
}

// maintenanceInput is the validated input for one maintenance add.
type maintenanceInput struct {
	Motor     string
	Kind      api.MaintenanceKind
	Cost      float64
	Quantity  float64
	Notes     string
	Timestamp time.Time
	Location  api.Location
	HasLoc    bool
}

// readMaintenanceInput parses and validates the add flags. Validation
// failures block the operation before any network call.
func readMaintenanceInput(cmd *cobra.Command) (*maintenanceInput, error) {
	in := &maintenanceInput{}

	var err error
	if in.Motor, err = cmd.Flags().GetString("motor"); err != nil {
		return nil, err
	}

	kindName, err := cmd.Flags().GetString("kind")
	if err != nil {
		return nil, err
	}

	if kindName == string(api.KindRefuel) {
		return nil, fmt.Errorf("refuels have fuel-state side effects, use 'motortrack-go refuel'")
	}

	kind, ok := maintenanceKinds[kindName]
	if !ok {
		return nil, fmt.Errorf("unknown kind %q, expected one of: oil_change, tune_up, repair, other", kindName)
	}

	in.Kind = kind

	if in.Cost, err = cmd.Flags().GetFloat64("cost"); err != nil {
		return nil, err
	}

	if in.Cost < 0 {
		return nil, fmt.Errorf("cost must not be negative, got %v", in.Cost)
	}

	if in.Quantity, err = cmd.Flags().GetFloat64("quantity"); err != nil {
		return nil, err
	}

	if in.Quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative, got %v", in.Quantity)
	}

	if in.Notes, err = cmd.Flags().GetString("notes"); err != nil {
		return nil, err
	}

	date, err := cmd.Flags().GetString("date")
	if err != nil {
		return nil, err
	}

	if in.Timestamp, err = parseEntryDate(date); err != nil {
		return nil, err
	}

	loc, hasLoc, err := readLocationFlags(cmd)
	if err != nil {
		return nil, err
	}

	in.Location = loc
	in.HasLoc = hasLoc

	return in, nil
}

// entryDateLayouts are accepted --date formats, tried in order.
var entryDateLayouts = []string{"2006-01-02 15:04", "2006-01-02"}

func parseEntryDate(date string) (time.Time, error) {
	if date == "" {
		return time.Now(), nil
	}

	for _, layout := range entryDateLayouts {
		if t, err := time.ParseInLocation(layout, date, time.Local); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date %q, expected 2006-01-02 or 2006-01-02 15:04", date)
}

// readLocationFlags reads the --lat/--lng pair. Both or neither must be set.
func readLocationFlags(cmd *cobra.Command) (api.Location, bool, error) {
	hasLat := cmd.Flags().Changed("lat")
	hasLng := cmd.Flags().Changed("lng")

	if hasLat != hasLng {
		return api.Location{}, false, fmt.Errorf("--lat and --lng must be given together")
	}

	if !hasLat {
		return api.Location{}, false, nil
	}

	lat, err := cmd.Flags().GetFloat64("lat")
	if err != nil {
		return api.Location{}, false, err
	}

	lng, err := cmd.Flags().GetFloat64("lng")
	if err != nil {
		return api.Location{}, false, err
	}

	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return api.Location{}, false, fmt.Errorf("location %v,%v is out of range", lat, lng)
	}

	return api.Location{Latitude: lat, Longitude: lng}, true, nil
}

func runMaintenanceAdd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	in, err := readMaintenanceInput(cmd)
	if err != nil {
		return err
	}

	s, err := openSession(ctx, true)
	if err != nil {
		return err
	}
	defer s.Close()

	motor, err := findMotor(ctx, s, in.Motor)
	if err != nil {
		return err
	}

	rec := &api.NewMaintenanceRecord{
		UserID:    s.UserID,
		MotorID:   motor.ID,
		Kind:      in.Kind,
		Timestamp: in.Timestamp,
		Location:  in.Location,
		Cost:      in.Cost,
		Quantity:  in.Quantity,
		Notes:     in.Notes,
	}

	pipeline := api.NewPipeline(s.Logger)

	err = pipeline.Submit(ctx, "create maintenance record", func(ctx context.Context, idempotencyKey string) error {
		_, err := s.Client.CreateMaintenanceRecord(ctx, rec, idempotencyKey)

		return err
	})
	if err != nil {
		return fmt.Errorf("recording maintenance: %w", err)
	}

	if in.HasLoc {
		pushRecentLocation(ctx, s, recentLocation{
			Location:  in.Location,
			Timestamp: in.Timestamp,
		})
	}

	// Refresh so the cached collection includes the new record. The backend
	// already accepted it, so a failed refresh only delays visibility.
	if err := maintenanceCollection(s).Refresh(ctx, false); err != nil {
		s.Logger.Warn("post-add refresh failed", "err", err)
	}

	statusf("Recorded %s for %s: %s.\n", in.Kind, motor.Name, formatPeso(in.Cost))

	return nil
}

func runMaintenanceList(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	refresh, err := cmd.Flags().GetBool("refresh")
	if err != nil {
		return err
	}

	kindFilter, err := cmd.Flags().GetString("kind")
	if err != nil {
		return err
	}

	s, err := openSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.Close()

	records, err := loadCollection(ctx, s, maintenanceCollection(s), refresh)
	if err != nil {
		return err
	}

	if kindFilter != "" {
		filtered := records[:0:0]

		for _, rec := range records {
			if strings.EqualFold(string(rec.Kind), kindFilter) {
				filtered = append(filtered, rec)
			}
		}

		records = filtered
	}

	if len(records) == 0 {
		statusf("No maintenance entries.\n")

		return nil
	}

	if flagJSON {
		return printJSONList(records)
	}

	printMaintenanceTable(ctx, s, records)

	return nil
}

func printMaintenanceTable(ctx context.Context, s *Session, records []api.MaintenanceRecord) {
	names := motorNames(ctx, s)

	headers := []string{"DATE", "KIND", "MOTOR", "COST", "QTY", "NOTES"}
	rows := make([][]string, 0, len(records))

	for _, rec := range records {
		motor := names[rec.MotorID]
		if motor == "" {
			motor = rec.MotorID
		}

		qty := "-"
		if rec.Quantity > 0 {
			qty = formatLiters(rec.Quantity)
		}

		rows = append(rows, []string{
			formatTime(rec.Timestamp),
			string(rec.Kind),
			motor,
			formatPeso(rec.Cost),
			qty,
			rec.Notes,
		})
	}

	printListing(headers, rows)
}

// motorNames maps motor ids to display names from the cached collection.
// Purely cosmetic; an empty map just leaves ids in the table.
func motorNames(ctx context.Context, s *Session) map[string]string {
	col := motorsCollection(s)
	if err := col.LoadCached(ctx); err != nil {
		return nil
	}

	motors, _ := col.Current()
	names := make(map[string]string, len(motors))

	for _, m := range motors {
		names[m.ID] = m.Name
	}

	return names
}
