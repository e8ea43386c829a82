package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motortrack/motortrack-go/internal/api"
)

func parseMaintenanceFlags(t *testing.T, args ...string) (*maintenanceInput, error) {
	t.Helper()

	cmd := newMaintenanceAddCmd()
	require.NoError(t, cmd.ParseFlags(args))

	return readMaintenanceInput(cmd)
}

func TestReadMaintenanceInput_Valid(t *testing.T) {
	in, err := parseMaintenanceFlags(t,
		"--kind", "oil_change", "--cost", "450", "--quantity", "1", "--notes", "10w-40")
	require.NoError(t, err)

	assert.Equal(t, api.KindOilChange, in.Kind)
	assert.Equal(t, 450.0, in.Cost)
	assert.Equal(t, 1.0, in.Quantity)
	assert.Equal(t, "10w-40", in.Notes)
	assert.False(t, in.HasLoc)
}

func TestReadMaintenanceInput_RefuelKindRejected(t *testing.T) {
	_, err := parseMaintenanceFlags(t, "--kind", "refuel")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "use 'motortrack-go refuel'")
}

func TestReadMaintenanceInput_UnknownKind(t *testing.T) {
	_, err := parseMaintenanceFlags(t, "--kind", "valve_adjustment")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")
}

func TestReadMaintenanceInput_NegativeValues(t *testing.T) {
	_, err := parseMaintenanceFlags(t, "--kind", "repair", "--cost", "-5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be negative")

	_, err = parseMaintenanceFlags(t, "--kind", "repair", "--quantity", "-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be negative")
}

func TestParseEntryDate(t *testing.T) {
	t.Run("empty means now", func(t *testing.T) {
		got, err := parseEntryDate("")
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), got, time.Minute)
	})

	t.Run("date only", func(t *testing.T) {
		got, err := parseEntryDate("2025-03-15")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, time.March, 15, 0, 0, 0, 0, time.Local), got)
	})

	t.Run("date and time", func(t *testing.T) {
		got, err := parseEntryDate("2025-03-15 18:45")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, time.March, 15, 18, 45, 0, 0, time.Local), got)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := parseEntryDate("last tuesday")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid date")
	})
}
