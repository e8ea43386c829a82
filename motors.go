package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/motortrack/motortrack-go/internal/api"
	"github.com/motortrack/motortrack-go/internal/fuel"
)

func newMotorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "motors",
		Short: "List your motorcycles with fuel state",
		Long: `List your motorcycles with current fuel level, remaining liters, and
projected range. Served from the local cache; use --refresh to fetch first.`,
		RunE: runMotors,
	}

	cmd.Flags().Bool("refresh", false, "fetch from the backend before listing")

	return cmd
}

func runMotors(cmd *cobra.Command, _ []string) error {
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

	motors, err := loadCollection(ctx, s, motorsCollection(s), refresh)
	if err != nil {
		return err
	}

	if len(motors) == 0 {
		statusf("No motorcycles. Run 'motortrack-go sync' after logging in.\n")

		return nil
	}

	if flagJSON {
		return printMotorsJSON(motors)
	}

	printMotorsTable(motors)

	return nil
}

// effectiveKmPerL prefers the rolling efficiency average over the spec
// sheet figure once real refuel records exist.
func effectiveKmPerL(m api.Motor) float64 {
	if m.CurrentEfficiency > 0 {
		return m.CurrentEfficiency
	}

	return m.ConsumptionKmPerL
}

// findMotor resolves a --motor selector (id or name, name matched
// case-insensitively) against the motors collection. With one motorcycle,
// an empty selector picks it; with several it is ambiguous.
func findMotor(ctx context.Context, s *Session, selector string) (*api.Motor, error) {
	motors, err := loadCollection(ctx, s, motorsCollection(s), false)
	if err != nil {
		return nil, err
	}

	if len(motors) == 0 {
		return nil, fmt.Errorf("no motorcycles known — run 'motortrack-go sync' first")
	}

	if selector == "" {
		if len(motors) == 1 {
			return &motors[0], nil
		}

		return nil, fmt.Errorf("you have %d motorcycles — pick one with --motor", len(motors))
	}

	var matches []*api.Motor

	for i := range motors {
		if motors[i].ID == selector {
			return &motors[i], nil
		}

		if strings.EqualFold(motors[i].Name, selector) {
			matches = append(matches, &motors[i])
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, fmt.Errorf("no motorcycle matching %q", selector)
	default:
		return nil, fmt.Errorf("motorcycle name %q is ambiguous, use the id", selector)
	}
}

// motorJSONItem is the JSON schema for `motors --json`.
type motorJSONItem struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	FuelPercent     float64 `json:"fuel_percent"`
	RemainingLiters float64 `json:"remaining_liters"`
	RangeKm         float64 `json:"range_km"`
	KmPerLiter      float64 `json:"km_per_liter"`
	TankLiters      float64 `json:"tank_liters"`
}

func printMotorsJSON(motors []api.Motor) error {
	items := make([]motorJSONItem, 0, len(motors))

	for _, m := range motors {
		items = append(items, motorJSONItem{
			ID:              m.ID,
			Name:            m.Name,
			FuelPercent:     m.FuelLevelPercent,
			RemainingLiters: fuel.RemainingLiters(m.TankCapacityLiters, m.FuelLevelPercent),
			RangeKm:         fuel.EstimatedRangeKm(m.TankCapacityLiters, m.FuelLevelPercent, effectiveKmPerL(m)),
			KmPerLiter:      effectiveKmPerL(m),
			TankLiters:      m.TankCapacityLiters,
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	return nil
}

func printMotorsTable(motors []api.Motor) {
	headers := []string{"NAME", "FUEL", "REMAINING", "RANGE", "KM/L"}
	rows := make([][]string, 0, len(motors))

	for _, m := range motors {
		rows = append(rows, []string{
			m.Name,
			formatPercent(m.FuelLevelPercent),
			formatLiters(fuel.RemainingLiters(m.TankCapacityLiters, m.FuelLevelPercent)),
			formatKm(fuel.EstimatedRangeKm(m.TankCapacityLiters, m.FuelLevelPercent, effectiveKmPerL(m))),
			fmt.Sprintf("%.1f", effectiveKmPerL(m)),
		})
	}

	printListing(headers, rows)
}
