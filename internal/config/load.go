package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Load reads and parses a TOML config file, validates it, and returns the
// resulting Config. Unknown keys are treated as fatal errors with "did you
// mean?" suggestions — silently ignoring a typo in a config file leads to
// hard-to-debug behavior.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := checkUnknownKeys(&md); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns a
// Config populated with all default values. This supports the zero-config
// first-run experience: users can start without creating a config file.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// Resolve loads configuration and applies the four-layer override chain:
// defaults -> config file -> environment variables -> CLI flags. The
// precedence order ensures CLI flags always win, matching user expectations
// for one-off overrides without editing the config file.
func Resolve(env EnvOverrides, cli CLIOverrides) (*Resolved, error) {
	// 1. Resolve config path: CLI > env > default.
	cfgPath := DefaultConfigPath()
	if env.ConfigPath != "" {
		cfgPath = env.ConfigPath
	}

	if cli.ConfigPath != "" {
		cfgPath = cli.ConfigPath
	}

	// 2. Load config file (returns defaults if no file exists).
	cfg, err := LoadOrDefault(cfgPath)
	if err != nil {
		return nil, err
	}

	// 3. Apply env overrides.
	if env.BaseURL != "" {
		cfg.API.BaseURL = env.BaseURL
	}

	if env.TokenPath != "" {
		cfg.Auth.TokenPath = env.TokenPath
	}

	if env.CachePath != "" {
		cfg.Cache.Path = env.CachePath
	}

	if env.LogLevel != "" {
		cfg.Logging.LogLevel = env.LogLevel
	}

	if env.GeocodeKey != "" {
		cfg.Geocode.APIKey = env.GeocodeKey
	}

	// 4. Apply CLI overrides (pointer fields: nil = not specified).
	if cli.ServerURL != nil {
		cfg.API.BaseURL = *cli.ServerURL
	}

	// 5. Validate the merged result before deriving parsed values.
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return finalize(cfg, cfgPath)
}

// finalize parses durations and fills in derived path defaults.
func finalize(cfg *Config, cfgPath string) (*Resolved, error) {
	timeout, err := time.ParseDuration(cfg.API.Timeout)
	if err != nil {
		return nil, fmt.Errorf("api.timeout: %w", err)
	}

	pollInterval, err := time.ParseDuration(cfg.Sync.PollInterval)
	if err != nil {
		return nil, fmt.Errorf("sync.poll_interval: %w", err)
	}

	tokenPath := cfg.Auth.TokenPath
	if tokenPath == "" {
		tokenPath = DefaultTokenPath()
	}

	cachePath := cfg.Cache.Path
	if cachePath == "" {
		cachePath = DefaultCachePath()
	}

	return &Resolved{
		BaseURL:        cfg.API.BaseURL,
		Timeout:        timeout,
		TokenPath:      tokenPath,
		CachePath:      cachePath,
		GeocodeAPIKey:  cfg.Geocode.APIKey,
		GeocodeWorkers: cfg.Geocode.Workers,
		PollInterval:   pollInterval,
		LogLevel:       cfg.Logging.LogLevel,
		ConfigPath:     cfgPath,
	}, nil
}
