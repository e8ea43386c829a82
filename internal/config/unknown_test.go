package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_UnknownKey_TopLevel(t *testing.T) {
	path := writeTestConfig(t, `
unknown_setting = "value"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")
}

func TestLoad_UnknownKey_TypoInSection(t *testing.T) {
	path := writeTestConfig(t, `
[api]
base_urll = "https://api.motortrack.app"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")
	assert.Contains(t, err.Error(), "api.base_url")
}

func TestLoad_UnknownKey_TypoInGeocode(t *testing.T) {
	path := writeTestConfig(t, `
[geocode]
api_keyy = "abc"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "geocode.api_key")
}

func TestLoad_UnknownKey_NoSuggestion(t *testing.T) {
	path := writeTestConfig(t, `
zzzzzzzzzzzz = true
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")
	assert.NotContains(t, err.Error(), "did you mean")
}

func TestLoad_UnknownKey_MultipleReported(t *testing.T) {
	path := writeTestConfig(t, `
[api]
base_urll = "https://api.motortrack.app"

[sync]
pol_interval = "5m"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.base_urll")
	assert.Contains(t, err.Error(), "sync.pol_interval")
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"base_urll", "base_url", 1},
		{"pol_interval", "poll_interval", 1},
		{"completely_different", "xyz", 19},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, levenshtein(tt.a, tt.b))
		})
	}
}

func TestClosestMatch_Found(t *testing.T) {
	known := []string{"api.base_url", "api.timeout", "cache.path"}
	assert.Equal(t, "api.base_url", closestMatch("api.base_urll", known))
	assert.Equal(t, "api.timeout", closestMatch("api.timeot", known))
}

func TestClosestMatch_NotFound(t *testing.T) {
	known := []string{"api.base_url", "api.timeout"}
	assert.Equal(t, "", closestMatch("completely_unrelated", known))
}
