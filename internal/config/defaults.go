package config

// Default values for configuration options. These represent the "layer 0"
// of the four-layer override chain and make the CLI usable without any
// config file at all.
const (
	defaultBaseURL        = "https://api.motortrack.app"
	defaultTimeout        = "30s"
	defaultGeocodeWorkers = 4
	defaultPollInterval   = "5m"
	defaultLogLevel       = "info"
)

// DefaultConfig returns a Config populated with all default values. Used
// both as the starting point for TOML decoding (so unset fields retain
// defaults) and as the fallback when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		API:     defaultAPIConfig(),
		Geocode: defaultGeocodeConfig(),
		Sync:    defaultSyncConfig(),
		Logging: defaultLoggingConfig(),
	}
}

func defaultAPIConfig() APIConfig {
	return APIConfig{
		BaseURL: defaultBaseURL,
		Timeout: defaultTimeout,
	}
}

func defaultGeocodeConfig() GeocodeConfig {
	return GeocodeConfig{
		Workers: defaultGeocodeWorkers,
	}
}

func defaultSyncConfig() SyncConfig {
	return SyncConfig{
		PollInterval: defaultPollInterval,
	}
}

func defaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		LogLevel: defaultLogLevel,
	}
}
