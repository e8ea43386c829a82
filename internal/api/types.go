package api

import (
	"log/slog"
	"time"

	"github.com/motortrack/motortrack-go/internal/fuel"
)

// Provenance records where a fuel timeline entry came from: a native fuel
// log document, or a refuel-type maintenance record mapped into one.
type Provenance string

const (
	ProvenanceFuelLog     Provenance = "fuel_log"
	ProvenanceMaintenance Provenance = "maintenance"
)

// MaintenanceKind is the type discriminator on maintenance records.
type MaintenanceKind string

const (
	KindRefuel    MaintenanceKind = "refuel"
	KindOilChange MaintenanceKind = "oil_change"
	KindTuneUp    MaintenanceKind = "tune_up"
	KindRepair    MaintenanceKind = "repair"
	KindOther     MaintenanceKind = "other"
)

// Location is a latitude/longitude pair as the backend stores it.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Zero reports whether the location carries no coordinates.
func (l Location) Zero() bool {
	return l.Latitude == 0 && l.Longitude == 0
}

// EfficiencyRecord is one historical fuel-efficiency data point.
type EfficiencyRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	Efficiency float64   `json:"efficiency"`
}

// Motor is a registered motorcycle with its fuel state. Numeric fields the
// backend omits are filled with documented defaults at decode time, so a
// Motor in hand always has a usable tank capacity and consumption rate.
type Motor struct {
	ID                 string
	UserID             string
	Name               string
	TankCapacityLiters float64
	ConsumptionKmPerL  float64
	FuelLevelPercent   float64
	CurrentEfficiency  float64
	EfficiencyRecords  []EfficiencyRecord
}

// Trip is a completed navigation trip.
type Trip struct {
	ID          string
	UserID      string
	Origin      string
	Destination string
	DistanceKm  float64
	Date        time.Time
}

// SavedDestination is a user-saved place.
type SavedDestination struct {
	ID       string
	UserID   string
	Name     string
	Address  string
	Location Location
}

// GasStation is a fuel station from the shared station directory.
type GasStation struct {
	ID            string
	Name          string
	Brand         string
	Address       string
	Location      Location
	PricePerLiter float64
}

// FuelLogEntry is one refueling event on the fuel timeline. Entries come
// either from native fuel log documents or from refuel-type maintenance
// records; Source tells them apart.
type FuelLogEntry struct {
	ID            string
	Date          time.Time
	Liters        float64
	PricePerLiter float64
	TotalCost     float64
	Odometer      float64
	Address       string
	Source        Provenance
}

// MaintenanceRecord is a maintenance event (refuel, oil change, ...) with
// cost details and the location where it happened.
type MaintenanceRecord struct {
	ID           string
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

// Vote is a single user's vote on a traffic report. Value is +1 or -1.
type Vote struct {
	UserID string `json:"userId"`
	Value  int    `json:"vote"`
}

// TrafficReport is a community traffic report with its votes and
// verification flags.
type TrafficReport struct {
	ID              string
	Kind            string
	Description     string
	Location        Location
	Address         string
	Votes           []Vote
	VerifiedByAdmin int
	VerifiedByUser  int
}

// User is the authenticated account profile.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Wire structs mirror the backend's JSON documents. Documents expose the
// Mongo-style "_id" and occasionally a plain "id"; numeric motor fields are
// pointers so a missing value can be told apart from zero and defaulted.

type motorWire struct {
	ID                string                 `json:"_id"`
	AltID             string                 `json:"id"`
	UserID            string                 `json:"userId"`
	Name              string                 `json:"name"`
	Nickname          string                 `json:"nickname"`
	TankCapacity      *float64               `json:"fuelTankCapacity"`
	Consumption       *float64               `json:"fuelConsumption"`
	FuelLevel         *float64               `json:"currentFuelLevel"`
	CurrentEfficiency *float64               `json:"currentFuelEfficiency"`
	EfficiencyRecords []efficiencyRecordWire `json:"fuelEfficiencyRecords"`
}

type efficiencyRecordWire struct {
	Timestamp  string  `json:"timestamp"`
	Efficiency float64 `json:"efficiency"`
}

type tripWire struct {
	ID          string  `json:"_id"`
	AltID       string  `json:"id"`
	UserID      string  `json:"userId"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	DistanceKm  float64 `json:"distance"`
	Date        string  `json:"date"`
}

type destinationWire struct {
	ID       string       `json:"_id"`
	AltID    string       `json:"id"`
	UserID   string       `json:"userId"`
	Name     string       `json:"name"`
	Address  string       `json:"address"`
	Location locationWire `json:"location"`
}

type gasStationWire struct {
	ID            string       `json:"_id"`
	AltID         string       `json:"id"`
	Name          string       `json:"name"`
	Brand         string       `json:"brand"`
	Address       string       `json:"address"`
	Location      locationWire `json:"location"`
	PricePerLiter float64      `json:"pricePerLiter"`
}

type locationWire struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type fuelLogWire struct {
	ID            string   `json:"_id"`
	AltID         string   `json:"id"`
	Date          string   `json:"date"`
	Liters        float64  `json:"liters"`
	PricePerLiter float64  `json:"pricePerLiter"`
	TotalCost     float64  `json:"totalCost"`
	Odometer      *float64 `json:"odometer"`
	Address       string   `json:"address"`
}

type maintenanceWire struct {
	ID        string                  `json:"_id"`
	AltID     string                  `json:"id"`
	UserID    string                  `json:"userId"`
	MotorID   string                  `json:"motorId"`
	Kind      string                  `json:"type"`
	Timestamp string                  `json:"timestamp"`
	Location  *locationWire           `json:"location"`
	Details   *maintenanceDetailsWire `json:"details"`
}

type maintenanceDetailsWire struct {
	Cost         float64  `json:"cost"`
	Quantity     *float64 `json:"quantity"`
	CostPerLiter *float64 `json:"costPerLiter"`
	Notes        string   `json:"notes"`
}

type trafficReportWire struct {
	ID              string       `json:"_id"`
	AltID           string       `json:"id"`
	Kind            string       `json:"type"`
	Description     string       `json:"description"`
	Location        locationWire `json:"location"`
	Address         string       `json:"address"`
	Votes           []Vote       `json:"votes"`
	VerifiedByAdmin int          `json:"verifiedByAdmin"`
	VerifiedByUser  int          `json:"verifiedByUser"`
}

// wireID picks the document id, preferring "_id" over "id".
func wireID(id, altID string) string {
	if id != "" {
		return id
	}

	return altID
}

// floatOr returns *p, or fallback when the field was absent.
func floatOr(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}

	return *p
}

func (w *motorWire) toMotor(logger *slog.Logger) Motor {
	name := w.Name
	if name == "" {
		name = w.Nickname
	}

	m := Motor{
		ID:                 wireID(w.ID, w.AltID),
		UserID:             w.UserID,
		Name:               name,
		TankCapacityLiters: floatOr(w.TankCapacity, fuel.DefaultTankCapacityLiters),
		ConsumptionKmPerL:  floatOr(w.Consumption, fuel.DefaultConsumptionKmPerL),
		FuelLevelPercent:   floatOr(w.FuelLevel, fuel.DefaultLevelPercent),
		CurrentEfficiency:  floatOr(w.CurrentEfficiency, 0),
	}

	if len(w.EfficiencyRecords) > 0 {
		m.EfficiencyRecords = make([]EfficiencyRecord, 0, len(w.EfficiencyRecords))

		for _, rec := range w.EfficiencyRecords {
			m.EfficiencyRecords = append(m.EfficiencyRecords, EfficiencyRecord{
				Timestamp:  parseTimestamp(rec.Timestamp, logger),
				Efficiency: rec.Efficiency,
			})
		}
	}

	return m
}

func (w *tripWire) toTrip(logger *slog.Logger) Trip {
	return Trip{
		ID:          wireID(w.ID, w.AltID),
		UserID:      w.UserID,
		Origin:      w.Origin,
		Destination: w.Destination,
		DistanceKm:  w.DistanceKm,
		Date:        parseTimestamp(w.Date, logger),
	}
}

func (w *destinationWire) toDestination() SavedDestination {
	return SavedDestination{
		ID:       wireID(w.ID, w.AltID),
		UserID:   w.UserID,
		Name:     w.Name,
		Address:  w.Address,
		Location: Location(w.Location),
	}
}

func (w *gasStationWire) toStation() GasStation {
	return GasStation{
		ID:            wireID(w.ID, w.AltID),
		Name:          w.Name,
		Brand:         w.Brand,
		Address:       w.Address,
		Location:      Location(w.Location),
		PricePerLiter: w.PricePerLiter,
	}
}

func (w *fuelLogWire) toEntry(logger *slog.Logger) FuelLogEntry {
	return FuelLogEntry{
		ID:            wireID(w.ID, w.AltID),
		Date:          parseTimestamp(w.Date, logger),
		Liters:        w.Liters,
		PricePerLiter: w.PricePerLiter,
		TotalCost:     w.TotalCost,
		Odometer:      floatOr(w.Odometer, 0),
		Address:       w.Address,
		Source:        ProvenanceFuelLog,
	}
}

func (w *maintenanceWire) toRecord(logger *slog.Logger) MaintenanceRecord {
	rec := MaintenanceRecord{
		ID:        wireID(w.ID, w.AltID),
		UserID:    w.UserID,
		MotorID:   w.MotorID,
		Kind:      MaintenanceKind(w.Kind),
		Timestamp: parseTimestamp(w.Timestamp, logger),
	}

	if w.Location != nil {
		rec.Location = Location(*w.Location)
	}

	if w.Details != nil {
		rec.Cost = w.Details.Cost
		rec.Quantity = floatOr(w.Details.Quantity, 0)
		rec.CostPerLiter = floatOr(w.Details.CostPerLiter, 0)
		rec.Notes = w.Details.Notes
	}

	return rec
}

func (w *trafficReportWire) toReport() TrafficReport {
	return TrafficReport{
		ID:              wireID(w.ID, w.AltID),
		Kind:            w.Kind,
		Description:     w.Description,
		Location:        Location(w.Location),
		Address:         w.Address,
		Votes:           w.Votes,
		VerifiedByAdmin: w.VerifiedByAdmin,
		VerifiedByUser:  w.VerifiedByUser,
	}
}

// timestampFormat is the wire format for timestamps in both directions.
const timestampFormat = time.RFC3339

// parseTimestamp parses an RFC 3339 timestamp from the backend. Empty or
// malformed values fall back to the current time with a warning rather than
// failing the whole document.
func parseTimestamp(value string, logger *slog.Logger) time.Time {
	if value == "" {
		return time.Now()
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		logger.Warn("unparseable timestamp, using current time",
			slog.String("value", value),
			slog.String("error", err.Error()))

		return time.Now()
	}

	return t
}
