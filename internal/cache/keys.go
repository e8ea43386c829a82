package cache

// Per-user collection key prefixes. Full keys are "{kind}_{userID}" so two
// accounts on one machine never read each other's snapshots.
const (
	KindMotors       = "cachedMotors"
	KindTrips        = "cachedTrips"
	KindDestinations = "cachedDestinations"
	KindFuelLogs     = "cachedFuelLogs"
	KindMaintenance  = "cachedMaintenance"
	KindGasStations  = "cachedGasStations"
)

// Global keys, not scoped to a user. Traffic reports are community-wide,
// and the profile/recent-location entries are replaced wholesale on login.
const (
	KeyReports         = "cachedReports"
	KeyProfile         = "profile_user_data"
	KeyRecentLocations = "recentLocations"
)

// Key builds a per-user cache key from a kind prefix and user id.
func Key(kind, userID string) string {
	return kind + "_" + userID
}
