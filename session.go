package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/motortrack/motortrack-go/internal/api"
	"github.com/motortrack/motortrack-go/internal/cache"
	"github.com/motortrack/motortrack-go/internal/config"
	"github.com/motortrack/motortrack-go/internal/tokenfile"
)

// Session holds the state shared by every command: effective config, logger,
// cache store, and the API client when a usable token exists. Offline
// sessions carry a nil Client and serve cached data only.
type Session struct {
	Cfg    *config.Resolved
	Logger *slog.Logger
	Cache  *cache.Store
	Tokens *api.FileTokenSource
	Client *api.Client
	UserID string
}

// openSession builds a Session from the resolved config. With needAuth a
// missing or expired token is an error; without it the session comes up
// offline and commands fall back to cached data.
func openSession(ctx context.Context, needAuth bool) (*Session, error) {
	logger := buildLogger()

	store, err := cache.NewStore(resolvedCfg.CachePath, logger)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	s := &Session{
		Cfg:    resolvedCfg,
		Logger: logger,
		Cache:  store,
	}

	tokens, meta, err := api.NewFileTokenSource(resolvedCfg.TokenPath, logger)

	switch {
	case err == nil:
		s.Tokens = tokens
		s.Client = api.NewClient(resolvedCfg.BaseURL, defaultHTTPClient(), tokens, logger)
	case api.IsAuthError(err) && !needAuth:
		logger.Debug("no usable token, running offline", "err", err)
	default:
		s.Close()

		return nil, err
	}

	userID, err := s.resolveUserID(ctx, meta)
	if err != nil {
		s.Close()

		return nil, err
	}

	s.UserID = userID

	return s, nil
}

// Close releases the cache store.
func (s *Session) Close() {
	if err := s.Cache.Close(); err != nil {
		s.Logger.Warn("closing cache", "err", err)
	}
}

// online returns the API client, or ErrNotLoggedIn for offline sessions.
func (s *Session) online() (*api.Client, error) {
	if s.Client == nil {
		return nil, api.ErrNotLoggedIn
	}

	return s.Client, nil
}

// resolveUserID determines whose collections to read: token file metadata
// first, then the cached profile, then the API when a client is available.
func (s *Session) resolveUserID(ctx context.Context, meta map[string]string) (string, error) {
	if id := meta[tokenfile.MetaUserID]; id != "" {
		return id, nil
	}

	if user := s.cachedProfile(ctx); user != nil && user.ID != "" {
		return user.ID, nil
	}

	if s.Client == nil {
		return "", errors.New("no cached profile found — run 'motortrack-go login' first")
	}

	user, err := s.Client.Me(ctx)
	if err != nil {
		return "", fmt.Errorf("fetching user profile: %w", err)
	}

	s.cacheProfile(ctx, user)

	return user.ID, nil
}

// cachedProfile reads the stored user profile. Missing or unreadable
// entries return nil; the caller falls through to the next source.
func (s *Session) cachedProfile(ctx context.Context) *api.User {
	data, err := s.Cache.Get(ctx, cache.KeyProfile)
	if err != nil || data == nil {
		return nil
	}

	var user api.User
	if err := json.Unmarshal(data, &user); err != nil {
		s.Logger.Warn("cached profile unreadable", "err", err)

		return nil
	}

	return &user
}

// cacheProfile stores the user profile so later sessions work offline.
func (s *Session) cacheProfile(ctx context.Context, user *api.User) {
	data, err := json.Marshal(user)
	if err != nil {
		return
	}

	if err := s.Cache.Set(ctx, cache.KeyProfile, data); err != nil {
		s.Logger.Warn("caching profile", "err", err)
	}
}
