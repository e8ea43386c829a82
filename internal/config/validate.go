package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Validation range constants.
const (
	minTimeout        = 1 * time.Second
	minPollInterval   = 30 * time.Second
	minGeocodeWorkers = 1
	maxGeocodeWorkers = 16
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks all configuration values and returns all errors found.
// It accumulates every error rather than stopping at the first, so users
// see a complete report and can fix all issues in one pass.
func Validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateAPI(&cfg.API)...)
	errs = append(errs, validateGeocode(&cfg.Geocode)...)
	errs = append(errs, validateSync(&cfg.Sync)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)

	return errors.Join(errs...)
}

func validateAPI(a *APIConfig) []error {
	var errs []error

	if a.BaseURL == "" {
		errs = append(errs, errors.New("api.base_url: must not be empty"))
	} else if err := validateHTTPURL(a.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("api.base_url: %w", err))
	}

	errs = append(errs, validateDurationMin("api.timeout", a.Timeout, minTimeout)...)

	return errs
}

func validateGeocode(g *GeocodeConfig) []error {
	var errs []error

	if g.Workers < minGeocodeWorkers || g.Workers > maxGeocodeWorkers {
		errs = append(errs, fmt.Errorf("geocode.workers: must be between %d and %d, got %d",
			minGeocodeWorkers, maxGeocodeWorkers, g.Workers))
	}

	return errs
}

func validateSync(s *SyncConfig) []error {
	return validateDurationMin("sync.poll_interval", s.PollInterval, minPollInterval)
}

func validateLogging(l *LoggingConfig) []error {
	if !validLogLevels[l.LogLevel] {
		return []error{fmt.Errorf("logging.log_level: must be one of debug, info, warn, error; got %q", l.LogLevel)}
	}

	return nil
}

// validateHTTPURL requires an absolute http or https URL.
func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("missing host")
	}

	return nil
}

// validateDurationMin parses a duration string and enforces a lower bound.
func validateDurationMin(field, value string, minimum time.Duration) []error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return []error{fmt.Errorf("%s: invalid duration %q", field, value)}
	}

	if d < minimum {
		return []error{fmt.Errorf("%s: must be at least %s, got %s", field, minimum, value)}
	}

	return nil
}
