// Package view derives read-only projections from cached collections: the
// merged fuel timeline and traffic report vote tallies. Nothing here
// mutates a snapshot or talks to the network.
package view

import (
	"slices"

	"github.com/motortrack/motortrack-go/internal/api"
)

// FuelTimeline merges native fuel log entries with refuel-type maintenance
// records into one timeline, newest first. Maintenance refuels are mapped
// into FuelLogEntry form with provenance "maintenance"; liters missing from
// a record are derived from cost and unit price. The sort is stable, so
// entries sharing a date keep their original order within each source.
func FuelTimeline(logs []api.FuelLogEntry, records []api.MaintenanceRecord) []api.FuelLogEntry {
	merged := make([]api.FuelLogEntry, 0, len(logs)+len(records))

	for _, entry := range logs {
		entry.Source = api.ProvenanceFuelLog
		merged = append(merged, entry)
	}

	for _, rec := range records {
		if rec.Kind != api.KindRefuel {
			continue
		}

		merged = append(merged, refuelToEntry(rec))
	}

	slices.SortStableFunc(merged, func(a, b api.FuelLogEntry) int {
		return b.Date.Compare(a.Date)
	})

	return merged
}

// refuelToEntry maps a refuel maintenance record into timeline form.
func refuelToEntry(rec api.MaintenanceRecord) api.FuelLogEntry {
	return api.FuelLogEntry{
		ID:            rec.ID,
		Date:          rec.Timestamp,
		Liters:        refuelLiters(rec),
		PricePerLiter: rec.CostPerLiter,
		TotalCost:     rec.Cost,
		Source:        api.ProvenanceMaintenance,
	}
}

// refuelLiters returns the recorded quantity, deriving it from cost and
// price per liter when the record only carried money amounts.
func refuelLiters(rec api.MaintenanceRecord) float64 {
	if rec.Quantity > 0 {
		return rec.Quantity
	}

	if rec.Cost > 0 && rec.CostPerLiter > 0 {
		return rec.Cost / rec.CostPerLiter
	}

	return 0
}
