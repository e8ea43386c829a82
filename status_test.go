package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/motortrack/motortrack-go/internal/tokenfile"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCheckTokenState_Missing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "token.json")
	assert.Equal(t, tokenStateMissing, checkTokenState(path, discardLogger()))
}

func TestCheckTokenState_Valid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, tokenfile.Save(path, &oauth2.Token{AccessToken: "tok"}, nil))

	assert.Equal(t, tokenStateValid, checkTokenState(path, discardLogger()))
}

func TestCheckTokenState_Expired(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "token.json")
	tok := &oauth2.Token{
		AccessToken: "tok",
		Expiry:      time.Now().Add(-time.Hour),
	}
	require.NoError(t, tokenfile.Save(path, tok, nil))

	assert.Equal(t, tokenStateExpired, checkTokenState(path, discardLogger()))
}

func TestStatusUser_FromMeta(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "token.json")
	meta := map[string]string{
		tokenfile.MetaUserID: "u7",
		tokenfile.MetaName:   "Juan",
		tokenfile.MetaEmail:  "juan@example.com",
	}
	require.NoError(t, tokenfile.Save(path, &oauth2.Token{AccessToken: "tok"}, meta))

	user := statusUser(path, discardLogger())
	require.NotNil(t, user)
	assert.Equal(t, "u7", user.ID)
	assert.Equal(t, "Juan", user.Name)
	assert.Equal(t, "juan@example.com", user.Email)
}

func TestStatusUser_NoTokenFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "token.json")
	assert.Nil(t, statusUser(path, discardLogger()))
}

func TestCountItems(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t)

	require.NoError(t, s.Cache.Set(ctx, "listKey", []byte(`[{"a":1},{"a":2},{"a":3}]`)))
	require.NoError(t, s.Cache.Set(ctx, "objectKey", []byte(`{"id":"u7"}`)))

	n, ok := countItems(ctx, s.Cache, "listKey")
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = countItems(ctx, s.Cache, "objectKey")
	assert.False(t, ok)

	_, ok = countItems(ctx, s.Cache, "missingKey")
	assert.False(t, ok)
}
