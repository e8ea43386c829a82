package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestClient creates a client backed by an httptest server running the
// given handler. The server is closed automatically at test end.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(srv.URL, srv.Client(), StaticToken("test-token"), testLogger())
}

func TestDo_SetsStandardHeaders(t *testing.T) {
	var gotAuth, gotUA, gotAccept string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")

		_, _ = w.Write([]byte(`[]`))
	})

	_, err := client.ListMotors(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, userAgent, gotUA)
	assert.Equal(t, "application/json", gotAccept)
}

func TestDo_ErrorClassification(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{status: http.StatusBadRequest, want: ErrBadRequest},
		{status: http.StatusUnauthorized, want: ErrUnauthorized},
		{status: http.StatusForbidden, want: ErrForbidden},
		{status: http.StatusNotFound, want: ErrNotFound},
		{status: http.StatusConflict, want: ErrConflict},
		{status: http.StatusTooManyRequests, want: ErrTooManyReqs},
		{status: http.StatusInternalServerError, want: ErrServerError},
		{status: http.StatusBadGateway, want: ErrServerError},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := client.ListReports(context.Background())
			assert.ErrorIs(t, err, tt.want)

			var apiErr *APIError

			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
		})
	}
}

func TestDo_ExtractsErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "message field", body: `{"message":"motor not found"}`, want: "motor not found"},
		{name: "error field", body: `{"error":"invalid payload"}`, want: "invalid payload"},
		{name: "plain text", body: `something broke`, want: "something broke"},
		{name: "empty body", body: ``, want: "Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.ListReports(context.Background())

			var apiErr *APIError

			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.want, apiErr.Message)
		})
	}
}

func TestDo_CapturesRequestID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerRequestID, "req-1234")
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.ListReports(context.Background())

	var apiErr *APIError

	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "req-1234", apiErr.RequestID)
	assert.Contains(t, apiErr.Error(), "req-1234")
}

func TestDo_TokenSourceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, srv.Client(), failingToken{}, testLogger())

	_, err := client.ListReports(context.Background())
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

type failingToken struct{}

func (failingToken) Token() (string, error) {
	return "", ErrNotLoggedIn
}

func TestUpdateMotorFuelLevel_SendsOnlyLevel(t *testing.T) {
	var (
		gotPath   string
		gotMethod string
		gotKey    string
		gotBody   map[string]any
	)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotKey = r.Header.Get(headerIdempotencyKey)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_, _ = w.Write([]byte(`{"_id":"m1","currentFuelLevel":53.33}`))
	})

	motor, err := client.UpdateMotorFuelLevel(context.Background(), "m1", 53.33, "key-abc")
	require.NoError(t, err)

	assert.Equal(t, "/api/user-motors/m1", gotPath)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "key-abc", gotKey)
	assert.Equal(t, map[string]any{"currentFuelLevel": 53.33}, gotBody)
	assert.InDelta(t, 53.33, motor.FuelLevelPercent, 0.001)
}

func TestCreateMaintenanceRecord_Body(t *testing.T) {
	var gotBody map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_, _ = w.Write([]byte(`{"_id":"rec1","type":"refuel"}`))
	})

	rec := &NewMaintenanceRecord{
		UserID:       "u1",
		MotorID:      "m1",
		Kind:         KindRefuel,
		Location:     Location{Latitude: 14.5995, Longitude: 120.9842},
		Cost:         500,
		Quantity:     7.69,
		CostPerLiter: 65,
		Notes:        "full tank",
	}

	created, err := client.CreateMaintenanceRecord(context.Background(), rec, "key-1")
	require.NoError(t, err)
	assert.Equal(t, "rec1", created.ID)

	assert.Equal(t, "u1", gotBody["userId"])
	assert.Equal(t, "m1", gotBody["motorId"])
	assert.Equal(t, "refuel", gotBody["type"])

	location, ok := gotBody["location"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 14.5995, location["latitude"], 0.0001)

	details, ok := gotBody["details"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 500.0, details["cost"], 0.001)
	assert.InDelta(t, 7.69, details["quantity"], 0.001)
	assert.InDelta(t, 65.0, details["costPerLiter"], 0.001)
	assert.Equal(t, "full tank", details["notes"])
}

func TestCreateMaintenanceRecord_OmitsZeroDetails(t *testing.T) {
	var gotBody map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_, _ = w.Write([]byte(`{"_id":"rec2","type":"oil_change"}`))
	})

	rec := &NewMaintenanceRecord{
		UserID:  "u1",
		MotorID: "m1",
		Kind:    KindOilChange,
		Cost:    350,
	}

	_, err := client.CreateMaintenanceRecord(context.Background(), rec, "key-2")
	require.NoError(t, err)

	details, ok := gotBody["details"].(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, details, "quantity")
	assert.NotContains(t, details, "costPerLiter")
}

func TestUpdateReportAddress_SendsOnlyAddress(t *testing.T) {
	var gotBody map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_, _ = w.Write([]byte(`{"_id":"r1","address":"Taft Avenue, Manila"}`))
	})

	report, err := client.UpdateReportAddress(context.Background(), "r1", "Taft Avenue, Manila", "key-3")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"address": "Taft Avenue, Manila"}, gotBody)
	assert.Equal(t, "Taft Avenue, Manila", report.Address)
}
