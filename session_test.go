package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motortrack/motortrack-go/internal/api"
	"github.com/motortrack/motortrack-go/internal/cache"
	"github.com/motortrack/motortrack-go/internal/tokenfile"
)

func TestOnline_OfflineSession(t *testing.T) {
	s := newTestSession(t)

	_, err := s.online()
	assert.ErrorIs(t, err, api.ErrNotLoggedIn)
}

func TestResolveUserID_FromTokenMeta(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t)

	id, err := s.resolveUserID(ctx, map[string]string{tokenfile.MetaUserID: "u9"})
	require.NoError(t, err)
	assert.Equal(t, "u9", id)
}

func TestResolveUserID_FromCachedProfile(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t)

	s.cacheProfile(ctx, &api.User{ID: "u7", Name: "Juan"})

	id, err := s.resolveUserID(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "u7", id)
}

func TestResolveUserID_OfflineWithoutProfile(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t)

	_, err := s.resolveUserID(ctx, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no cached profile found")
}

func TestCachedProfile_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t)

	s.cacheProfile(ctx, &api.User{ID: "u7", Name: "Juan", Email: "juan@example.com"})

	user := s.cachedProfile(ctx)
	require.NotNil(t, user)
	assert.Equal(t, "u7", user.ID)
	assert.Equal(t, "juan@example.com", user.Email)
}

func TestCachedProfile_Malformed(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t)

	require.NoError(t, s.Cache.Set(ctx, cache.KeyProfile, []byte("{bad")))

	assert.Nil(t, s.cachedProfile(ctx))
}
