package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserEnvelope(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantID   string
		wantName string
		wantErr  bool
	}{
		{
			name:     "success data wrapper",
			payload:  `{"success":true,"data":{"_id":"u1","name":"Ana","email":"ana@example.com"}}`,
			wantID:   "u1",
			wantName: "Ana",
		},
		{
			name:     "user wrapper",
			payload:  `{"user":{"_id":"u2","name":"Ben"}}`,
			wantID:   "u2",
			wantName: "Ben",
		},
		{
			name:     "data wrapper",
			payload:  `{"data":{"_id":"u3","name":"Carla"}}`,
			wantID:   "u3",
			wantName: "Carla",
		},
		{
			name:     "raw user object",
			payload:  `{"_id":"u4","name":"Dina"}`,
			wantID:   "u4",
			wantName: "Dina",
		},
		{
			name:     "success wrapper wins over user",
			payload:  `{"success":true,"data":{"_id":"from-data"},"user":{"_id":"from-user"}}`,
			wantID:   "from-data",
			wantName: "",
		},
		{
			name:     "user wrapper wins over data",
			payload:  `{"user":{"_id":"from-user"},"data":{"_id":"from-data"}}`,
			wantID:   "from-user",
			wantName: "",
		},
		{
			name:     "plain id accepted",
			payload:  `{"id":"u5","username":"ed123"}`,
			wantID:   "u5",
			wantName: "ed123",
		},
		{
			name:     "null data falls through to raw",
			payload:  `{"data":null,"_id":"u6"}`,
			wantID:   "u6",
			wantName: "",
		},
		{
			name:    "missing id rejected",
			payload: `{"user":{"name":"nobody"}}`,
			wantErr: true,
		},
		{
			name:    "scalar payload rejected",
			payload: `"just a string"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := parseUserEnvelope([]byte(tt.payload))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnrecognizedUser)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantID, user.ID)
			assert.Equal(t, tt.wantName, user.Name)
		})
	}
}

func TestMe_EndToEnd(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"_id":"u9","name":"Rider","email":"rider@example.com"}}`))
	})

	user, err := client.Me(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "u9", user.ID)
	assert.Equal(t, "Rider", user.Name)
	assert.Equal(t, "rider@example.com", user.Email)
}
