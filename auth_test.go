package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motortrack/motortrack-go/internal/config"
)

// swapStdin replaces os.Stdin with a pipe carrying the given content and
// restores the original when the test ends. Tests using it must not run in
// parallel.
func swapStdin(t *testing.T, content string) {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	_, err = w.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	old := os.Stdin
	os.Stdin = r

	t.Cleanup(func() {
		os.Stdin = old
		_ = r.Close()
	})
}

func TestReadLoginToken_FlagWins(t *testing.T) {
	t.Setenv(config.EnvToken, "env-token")

	cmd := newLoginCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--token", "flag-token"}))

	token, err := readLoginToken(cmd)
	require.NoError(t, err)
	assert.Equal(t, "flag-token", token)
}

func TestReadLoginToken_EnvFallback(t *testing.T) {
	t.Setenv(config.EnvToken, "env-token")

	cmd := newLoginCmd()

	token, err := readLoginToken(cmd)
	require.NoError(t, err)
	assert.Equal(t, "env-token", token)
}

func TestReadLoginToken_PipedStdin(t *testing.T) {
	t.Setenv(config.EnvToken, "")
	swapStdin(t, "piped-token\n")

	cmd := newLoginCmd()

	token, err := readLoginToken(cmd)
	require.NoError(t, err)
	assert.Equal(t, "piped-token", token)
}

func TestReadLoginToken_NoSource(t *testing.T) {
	t.Setenv(config.EnvToken, "")
	swapStdin(t, "")

	cmd := newLoginCmd()

	_, err := readLoginToken(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no token provided")
}
