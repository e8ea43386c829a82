package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadEnvOverrides_AllSet(t *testing.T) {
	t.Setenv("MOTORTRACK_GO_CONFIG", "/custom/config.toml")
	t.Setenv("MOTORTRACK_GO_BASE_URL", "https://staging.motortrack.app")
	t.Setenv("MOTORTRACK_GO_TOKEN_PATH", "/custom/token.json")
	t.Setenv("MOTORTRACK_GO_CACHE_PATH", "/custom/cache.db")
	t.Setenv("MOTORTRACK_GO_LOG_LEVEL", "debug")
	t.Setenv("GOOGLE_MAPS_API_KEY", "test-key")

	overrides := ReadEnvOverrides()
	assert.Equal(t, "/custom/config.toml", overrides.ConfigPath)
	assert.Equal(t, "https://staging.motortrack.app", overrides.BaseURL)
	assert.Equal(t, "/custom/token.json", overrides.TokenPath)
	assert.Equal(t, "/custom/cache.db", overrides.CachePath)
	assert.Equal(t, "debug", overrides.LogLevel)
	assert.Equal(t, "test-key", overrides.GeocodeKey)
}

func TestReadEnvOverrides_NoneSet(t *testing.T) {
	t.Setenv("MOTORTRACK_GO_CONFIG", "")
	t.Setenv("MOTORTRACK_GO_BASE_URL", "")
	t.Setenv("MOTORTRACK_GO_TOKEN_PATH", "")
	t.Setenv("MOTORTRACK_GO_CACHE_PATH", "")
	t.Setenv("MOTORTRACK_GO_LOG_LEVEL", "")
	t.Setenv("GOOGLE_MAPS_API_KEY", "")

	overrides := ReadEnvOverrides()
	assert.Empty(t, overrides.ConfigPath)
	assert.Empty(t, overrides.BaseURL)
	assert.Empty(t, overrides.TokenPath)
	assert.Empty(t, overrides.CachePath)
	assert.Empty(t, overrides.LogLevel)
	assert.Empty(t, overrides.GeocodeKey)
}

func TestReadEnvOverrides_PartiallySet(t *testing.T) {
	t.Setenv("MOTORTRACK_GO_CONFIG", "")
	t.Setenv("MOTORTRACK_GO_BASE_URL", "")
	t.Setenv("MOTORTRACK_GO_TOKEN_PATH", "")
	t.Setenv("MOTORTRACK_GO_CACHE_PATH", "")
	t.Setenv("MOTORTRACK_GO_LOG_LEVEL", "debug")
	t.Setenv("GOOGLE_MAPS_API_KEY", "")

	overrides := ReadEnvOverrides()
	assert.Empty(t, overrides.ConfigPath)
	assert.Equal(t, "debug", overrides.LogLevel)
}

func TestEnvVarConstants(t *testing.T) {
	assert.Equal(t, "MOTORTRACK_GO_CONFIG", EnvConfig)
	assert.Equal(t, "MOTORTRACK_GO_BASE_URL", EnvBaseURL)
	assert.Equal(t, "MOTORTRACK_GO_TOKEN_PATH", EnvTokenPath)
	assert.Equal(t, "MOTORTRACK_GO_CACHE_PATH", EnvCachePath)
	assert.Equal(t, "MOTORTRACK_GO_LOG_LEVEL", EnvLogLevel)
	assert.Equal(t, "GOOGLE_MAPS_API_KEY", EnvGeocodeKey)
}
