package config

import "os"

// Environment variable names for overrides. EnvGeocodeKey follows the
// conventional Google SDK name instead of the app prefix so an existing
// exported key is picked up without extra setup.
const (
	EnvConfig     = "MOTORTRACK_GO_CONFIG"
	EnvBaseURL    = "MOTORTRACK_GO_BASE_URL"
	EnvTokenPath  = "MOTORTRACK_GO_TOKEN_PATH"
	EnvCachePath  = "MOTORTRACK_GO_CACHE_PATH"
	EnvLogLevel   = "MOTORTRACK_GO_LOG_LEVEL"
	EnvGeocodeKey = "GOOGLE_MAPS_API_KEY"

	// EnvToken supplies the bearer token to the login command. It is not a
	// config override; login reads it directly.
	EnvToken = "MOTORTRACK_GO_TOKEN"
)

// EnvOverrides holds values derived from environment variables.
type EnvOverrides struct {
	ConfigPath string // MOTORTRACK_GO_CONFIG: override config file path
	BaseURL    string // MOTORTRACK_GO_BASE_URL: backend base URL override
	TokenPath  string // MOTORTRACK_GO_TOKEN_PATH: token file override
	CachePath  string // MOTORTRACK_GO_CACHE_PATH: cache database override
	LogLevel   string // MOTORTRACK_GO_LOG_LEVEL: log level override
	GeocodeKey string // GOOGLE_MAPS_API_KEY: geocoding API key
}

// ReadEnvOverrides reads environment variables and returns any overrides
// found. This does not modify the Config; Resolve applies the fields.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath: os.Getenv(EnvConfig),
		BaseURL:    os.Getenv(EnvBaseURL),
		TokenPath:  os.Getenv(EnvTokenPath),
		CachePath:  os.Getenv(EnvCachePath),
		LogLevel:   os.Getenv(EnvLogLevel),
		GeocodeKey: os.Getenv(EnvGeocodeKey),
	}
}
