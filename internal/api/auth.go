package api

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/motortrack/motortrack-go/internal/tokenfile"
)

// FileTokenSource serves the bearer token stored in a token file. The token
// is read once and cached; Reload picks up a rewritten file, which the
// watch command triggers on file change events.
type FileTokenSource struct {
	path   string
	logger *slog.Logger

	mu    sync.Mutex
	token string
}

// NewFileTokenSource loads the token file at path. A missing file returns
// ErrNotLoggedIn; an expired token returns ErrTokenExpired.
func NewFileTokenSource(path string, logger *slog.Logger) (*FileTokenSource, map[string]string, error) {
	src := &FileTokenSource{path: path, logger: logger}

	meta, err := src.load()
	if err != nil {
		return nil, nil, err
	}

	return src, meta, nil
}

// Token returns the cached bearer token.
func (s *FileTokenSource) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" {
		return "", ErrNotLoggedIn
	}

	return s.token, nil
}

// Reload re-reads the token file, replacing the cached token.
func (s *FileTokenSource) Reload() error {
	_, err := s.load()
	if err != nil {
		return err
	}

	s.logger.Info("token reloaded", slog.String("path", s.path))

	return nil
}

func (s *FileTokenSource) load() (map[string]string, error) {
	tok, meta, err := tokenfile.Load(s.path)
	if err != nil {
		return nil, fmt.Errorf("api: reading token file: %w", err)
	}

	if tok == nil {
		return nil, ErrNotLoggedIn
	}

	if !tok.Expiry.IsZero() && tok.Expiry.Before(time.Now()) {
		return nil, ErrTokenExpired
	}

	s.mu.Lock()
	s.token = tok.AccessToken
	s.mu.Unlock()

	return meta, nil
}
