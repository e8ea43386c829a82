package config

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResolved() *Resolved {
	return &Resolved{
		BaseURL:        "https://api.motortrack.app",
		Timeout:        30 * time.Second,
		TokenPath:      "/home/user/.local/share/motortrack-go/token.json",
		CachePath:      "/home/user/.cache/motortrack-go/cache.db",
		GeocodeAPIKey:  "AIzaSyExampleKey1234",
		GeocodeWorkers: 4,
		PollInterval:   5 * time.Minute,
		LogLevel:       "info",
		ConfigPath:     "/home/user/.config/motortrack-go/config.toml",
	}
}

func TestRenderEffective_AllSections(t *testing.T) {
	var buf bytes.Buffer
	err := RenderEffective(testResolved(), &buf)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "[api]")
	assert.Contains(t, output, "[auth]")
	assert.Contains(t, output, "[cache]")
	assert.Contains(t, output, "[geocode]")
	assert.Contains(t, output, "[sync]")
	assert.Contains(t, output, "[logging]")
	assert.Contains(t, output, `"https://api.motortrack.app"`)
	assert.Contains(t, output, `"30s"`)
	assert.Contains(t, output, `"5m0s"`)
	assert.Contains(t, output, "token.json")
	assert.Contains(t, output, "cache.db")
}

func TestRenderEffective_ShowsSourcePath(t *testing.T) {
	var buf bytes.Buffer
	err := RenderEffective(testResolved(), &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "/home/user/.config/motortrack-go/config.toml")
}

func TestRenderEffective_MasksAPIKey(t *testing.T) {
	var buf bytes.Buffer
	err := RenderEffective(testResolved(), &buf)
	require.NoError(t, err)

	output := buf.String()
	assert.NotContains(t, output, "AIzaSyExampleKey1234")
	assert.Contains(t, output, "****1234")
}

func TestRenderEffective_EmptyAPIKey(t *testing.T) {
	r := testResolved()
	r.GeocodeAPIKey = ""

	var buf bytes.Buffer
	err := RenderEffective(r, &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `api_key = ""`)
}

// failWriter is a writer that always fails, used to exercise error paths
// in the errWriter pattern.
type failWriter struct{}

var errWriteFailed = errors.New("write failed")

func (failWriter) Write([]byte) (int, error) {
	return 0, errWriteFailed
}

func TestRenderEffective_WriteError(t *testing.T) {
	err := RenderEffective(testResolved(), failWriter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errWriteFailed)
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"short", "abc", "****"},
		{"exactly_four", "abcd", "****"},
		{"long", "AIzaSyExampleKey1234", "****1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskSecret(tt.input))
		})
	}
}
