// Package config implements TOML configuration loading, validation, and
// platform-specific path resolution for motortrack-go. It supports a
// four-layer override chain (defaults -> config file -> environment -> CLI
// flags) resolved into a single immutable struct the rest of the program
// consumes.
package config

// Config is the top-level configuration structure parsed from a TOML file.
type Config struct {
	API     APIConfig     `toml:"api"`
	Auth    AuthConfig    `toml:"auth"`
	Cache   CacheConfig   `toml:"cache"`
	Geocode GeocodeConfig `toml:"geocode"`
	Sync    SyncConfig    `toml:"sync"`
	Logging LoggingConfig `toml:"logging"`
}

// APIConfig controls how the backend REST API is reached.
type APIConfig struct {
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"`
}

// AuthConfig controls where the login token is stored.
type AuthConfig struct {
	TokenPath string `toml:"token_path"`
}

// CacheConfig controls the local cache database. An empty path falls back
// to the platform cache directory.
type CacheConfig struct {
	Path string `toml:"path"`
}

// GeocodeConfig controls reverse geocoding of traffic report locations.
// The API key may also come from the GOOGLE_MAPS_API_KEY environment
// variable, which takes precedence over the file.
type GeocodeConfig struct {
	APIKey  string `toml:"api_key"`
	Workers int    `toml:"workers"`
}

// SyncConfig controls background refresh behavior in watch mode.
type SyncConfig struct {
	PollInterval string `toml:"poll_interval"`
}

// LoggingConfig controls log output behavior.
type LoggingConfig struct {
	LogLevel string `toml:"log_level"`
}

// CLIOverrides holds values from CLI flags that override config file and
// environment settings. Pointer fields distinguish "not specified" (nil)
// from "explicitly set to the zero value".
type CLIOverrides struct {
	ConfigPath string  // --config flag (empty = use default)
	ServerURL  *string // --server flag
}
