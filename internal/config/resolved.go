package config

import "time"

// Resolved is the final configuration after the full override chain has
// been applied and string durations parsed. Everything downstream of the
// CLI entry point reads from this struct; nothing re-reads the raw Config.
type Resolved struct {
	BaseURL        string
	Timeout        time.Duration
	TokenPath      string
	CachePath      string
	GeocodeAPIKey  string
	GeocodeWorkers int
	PollInterval   time.Duration
	LogLevel       string

	// ConfigPath is the file the chain started from, whether or not it
	// existed. Kept for "config path" and diagnostics.
	ConfigPath string
}
