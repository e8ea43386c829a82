package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/motortrack/motortrack-go/internal/api"
	"github.com/motortrack/motortrack-go/internal/fuel"
)

func newRefuelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refuel",
		Short: "Record a refuel and update fuel state",
		Long: `Record a refuel: creates a maintenance record, projects the new fuel
level onto the motorcycle, and, when both odometer readings are given,
appends a fuel efficiency record.

The quantity comes from --liters, or is derived as cost/price when only
--cost and --price are given.

Examples:
  motortrack-go refuel --liters 5.5 --price 65.50 --odo 15250 --prev-odo 15000
  motortrack-go refuel --cost 500 --price 65`,
		RunE: runRefuel,
	}

	cmd.Flags().String("motor", "", "motorcycle id or name (optional when you have exactly one)")
	cmd.Flags().Float64("liters", 0, "liters added")
	cmd.Flags().Float64("cost", 0, "total cost in pesos")
	cmd.Flags().Float64("price", 0, "price per liter in pesos")
	cmd.Flags().Float64("odo", 0, "odometer reading now, km")
	cmd.Flags().Float64("prev-odo", 0, "odometer reading at the previous full tank, km")
	cmd.Flags().String("notes", "", "free-form notes")
	cmd.Flags().String("date", "", "entry date (2006-01-02 or 2006-01-02 15:04), default now")
	cmd.Flags().Float64("lat", 0, "location latitude")
	cmd.Flags().Float64("lng", 0, "location longitude")

	return cmd
}

// refuelInput is the fully validated and derived input for one refuel. All
// derivations and validations happen before any network call.
type refuelInput struct {
	Motor       string
	Liters      float64
	Cost        float64
	PricePerL   float64
	Efficiency  float64
	HasOdometer bool
	Notes       string
	Timestamp   time.Time
	Location    api.Location
	HasLoc      bool
}

func readRefuelInput(cmd *cobra.Command) (*refuelInput, error) {
	in := &refuelInput{}

	var err error
	if in.Motor, err = cmd.Flags().GetString("motor"); err != nil {
		return nil, err
	}

	liters, err := cmd.Flags().GetFloat64("liters")
	if err != nil {
		return nil, err
	}

	cost, err := cmd.Flags().GetFloat64("cost")
	if err != nil {
		return nil, err
	}

	price, err := cmd.Flags().GetFloat64("price")
	if err != nil {
		return nil, err
	}

	hasLiters := cmd.Flags().Changed("liters")
	hasCost := cmd.Flags().Changed("cost")
	hasPrice := cmd.Flags().Changed("price")

	if hasCost && cost <= 0 {
		return nil, fuel.ErrNonPositiveCost
	}

	if hasPrice && price <= 0 {
		return nil, fuel.ErrNonPositivePrice
	}

	// Quantity: direct, or derived from cost and unit price.
	switch {
	case hasLiters:
		if liters <= 0 {
			return nil, fuel.ErrNonPositiveLiters
		}

		in.Liters = liters

		if hasPrice && !hasCost {
			cost = liters * price
		}

		if hasCost && !hasPrice {
			price = cost / liters
		}
	case hasCost && hasPrice:
		if in.Liters, err = fuel.DeriveQuantity(cost, price); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("provide --liters, or --cost together with --price")
	}

	in.Cost = cost
	in.PricePerL = price

	// Efficiency wants both odometer readings; one alone is meaningless.
	hasOdo := cmd.Flags().Changed("odo")
	hasPrevOdo := cmd.Flags().Changed("prev-odo")

	if hasOdo != hasPrevOdo {
		return nil, fmt.Errorf("--odo and --prev-odo must be given together")
	}

	if hasOdo {
		odo, err := cmd.Flags().GetFloat64("odo")
		if err != nil {
			return nil, err
		}

		prevOdo, err := cmd.Flags().GetFloat64("prev-odo")
		if err != nil {
			return nil, err
		}

		if in.Efficiency, err = fuel.Efficiency(prevOdo, odo, in.Liters); err != nil {
			return nil, err
		}

		in.HasOdometer = true
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

func runRefuel(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	in, err := readRefuelInput(cmd)
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

	// Project and validate the resulting level before any write. An invalid
	// result aborts the whole refuel; the stored level is never clamped
	// after the fact.
	projected, err := fuel.ProjectedLevelAfterRefuel(motor.TankCapacityLiters, motor.FuelLevelPercent, in.Liters)
	if err != nil {
		return err
	}

	if err := fuel.ValidateLevel(projected); err != nil {
		return err
	}

	pipeline := api.NewPipeline(s.Logger)

	rec := &api.NewMaintenanceRecord{
		UserID:       s.UserID,
		MotorID:      motor.ID,
		Kind:         api.KindRefuel,
		Timestamp:    in.Timestamp,
		Location:     in.Location,
		Cost:         in.Cost,
		Quantity:     in.Liters,
		CostPerLiter: in.PricePerL,
		Notes:        in.Notes,
	}

	err = pipeline.Submit(ctx, "create refuel record", func(ctx context.Context, idempotencyKey string) error {
		_, err := s.Client.CreateMaintenanceRecord(ctx, rec, idempotencyKey)

		return err
	})
	if err != nil {
		return fmt.Errorf("recording refuel: %w", err)
	}

	err = pipeline.Submit(ctx, "update fuel level", func(ctx context.Context, idempotencyKey string) error {
		_, err := s.Client.UpdateMotorFuelLevel(ctx, motor.ID, projected, idempotencyKey)

		return err
	})
	if err != nil {
		return fmt.Errorf("refuel recorded, but updating the fuel level failed: %w", err)
	}

	if in.HasOdometer {
		if err := pushEfficiency(ctx, s, pipeline, motor, in); err != nil {
			return err
		}
	}

	if in.HasLoc {
		pushRecentLocation(ctx, s, recentLocation{
			Location:  in.Location,
			Timestamp: in.Timestamp,
		})
	}

	// Cache write-back: re-fetch the touched collections so the next read
	// shows the new record and level. The backend already has everything;
	// failures only delay visibility.
	if err := motorsCollection(s).Refresh(ctx, false); err != nil {
		s.Logger.Warn("post-refuel motors refresh failed", "err", err)
	}

	if err := maintenanceCollection(s).Refresh(ctx, false); err != nil {
		s.Logger.Warn("post-refuel maintenance refresh failed", "err", err)
	}

	statusf("Refueled %s: %s for %s (%s/L).\n",
		motor.Name, formatLiters(in.Liters), formatPeso(in.Cost), formatPeso(in.PricePerL))
	statusf("Fuel level: %s -> %s.\n",
		formatPercent(motor.FuelLevelPercent), formatPercent(projected))

	if in.HasOdometer {
		statusf("Efficiency: %.1f km/L.\n", in.Efficiency)
	}

	return nil
}

// pushEfficiency appends the computed efficiency to the motor's history and
// replaces it server-side, making the new value current.
func pushEfficiency(ctx context.Context, s *Session, pipeline *api.Pipeline, motor *api.Motor, in *refuelInput) error {
	records := make([]api.EfficiencyRecord, 0, len(motor.EfficiencyRecords)+1)
	records = append(records, motor.EfficiencyRecords...)
	records = append(records, api.EfficiencyRecord{
		Timestamp:  in.Timestamp,
		Efficiency: in.Efficiency,
	})

	err := pipeline.Submit(ctx, "update efficiency", func(ctx context.Context, idempotencyKey string) error {
		_, err := s.Client.UpdateMotorEfficiency(ctx, motor.ID, records, in.Efficiency, idempotencyKey)

		return err
	})
	if err != nil {
		return fmt.Errorf("fuel level updated, but recording efficiency failed: %w", err)
	}

	return nil
}
