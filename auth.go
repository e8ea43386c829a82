package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/motortrack/motortrack-go/internal/api"
	"github.com/motortrack/motortrack-go/internal/cache"
	"github.com/motortrack/motortrack-go/internal/config"
	"github.com/motortrack/motortrack-go/internal/tokenfile"
)

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store and verify a backend bearer token",
		Long: `Verify a bearer token against the backend and save it for later commands.

The token is taken from --token, the ` + config.EnvToken + ` environment
variable, or stdin (when piped), in that order.`,
		RunE: runLogin,
	}

	cmd.Flags().String("token", "", "bearer token (prefer env or stdin to keep it out of shell history)")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the saved token",
		Long: `Remove the saved bearer token.

Cached data is kept; read commands keep serving the last synced snapshots.`,
		RunE: runLogout,
	}
}

func newWhoamiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Display the authenticated user",
		RunE:  runWhoami,
	}

	cmd.Flags().Bool("refresh", false, "re-fetch the profile from the backend")

	return cmd
}

func runLogin(cmd *cobra.Command, _ []string) error {
	logger := buildLogger()
	ctx := context.Background()

	token, err := readLoginToken(cmd)
	if err != nil {
		return err
	}

	// Verify before saving: a bad token should fail here, not on the next
	// command.
	client := api.NewClient(resolvedCfg.BaseURL, defaultHTTPClient(), api.StaticToken(token), logger)

	user, err := client.Me(ctx)
	if err != nil {
		return fmt.Errorf("verifying token: %w", err)
	}

	logger.Info("token verified", "user_id", user.ID)

	// Cache the profile so later sessions resolve the user offline. Cache
	// failures must not block login.
	if store, err := cache.NewStore(resolvedCfg.CachePath, logger); err == nil {
		if data, err := json.Marshal(user); err == nil {
			if err := store.Set(ctx, cache.KeyProfile, data); err != nil {
				logger.Warn("caching profile", "err", err)
			}
		}

		if err := store.Close(); err != nil {
			logger.Warn("closing cache", "err", err)
		}
	} else {
		logger.Warn("opening cache", "err", err)
	}

	meta := map[string]string{
		tokenfile.MetaUserID: user.ID,
		tokenfile.MetaName:   user.Name,
		tokenfile.MetaEmail:  user.Email,
	}

	if err := tokenfile.Save(resolvedCfg.TokenPath, &oauth2.Token{AccessToken: token}, meta); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	statusf("Logged in as %s (%s).\n", user.Name, user.Email)

	return nil
}

// readLoginToken takes the token from --token, the environment, or piped
// stdin, in that order.
func readLoginToken(cmd *cobra.Command) (string, error) {
	token, err := cmd.Flags().GetString("token")
	if err != nil {
		return "", err
	}

	if token != "" {
		return token, nil
	}

	if token = os.Getenv(config.EnvToken); token != "" {
		return token, nil
	}

	if !isatty.IsTerminal(os.Stdin.Fd()) {
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			if token = strings.TrimSpace(scanner.Text()); token != "" {
				return token, nil
			}
		}

		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("reading token from stdin: %w", err)
		}
	}

	return "", fmt.Errorf("no token provided — pass --token, set %s, or pipe the token on stdin", config.EnvToken)
}

func runLogout(_ *cobra.Command, _ []string) error {
	logger := buildLogger()

	err := os.Remove(resolvedCfg.TokenPath)
	if errors.Is(err, os.ErrNotExist) {
		statusf("Not logged in.\n")

		return nil
	}

	if err != nil {
		return fmt.Errorf("removing token file: %w", err)
	}

	logger.Info("logged out", "path", resolvedCfg.TokenPath)
	statusf("Logged out. Cached data kept.\n")

	return nil
}

// whoamiOutput is the JSON schema for `whoami --json`.
type whoamiOutput struct {
	User   whoamiUser `json:"user"`
	Source string     `json:"source"`
}

type whoamiUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	refresh, err := cmd.Flags().GetBool("refresh")
	if err != nil {
		return err
	}

	s, err := openSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.Close()

	user := s.cachedProfile(ctx)
	source := "cache"

	if user == nil || refresh {
		fresh, err := fetchProfile(ctx, s)

		switch {
		case err == nil:
			user = fresh
			source = "api"
		case user == nil:
			return err
		default:
			s.Logger.Warn("profile refresh failed, using cache", "err", err)
			statusf("Refresh failed; showing cached profile.\n")
		}
	}

	if flagJSON {
		return printWhoamiJSON(user, source)
	}

	printWhoamiText(user, source)

	return nil
}

// fetchProfile re-fetches the profile, updates the cached copy, and merges
// the identity fields into the token file metadata.
func fetchProfile(ctx context.Context, s *Session) (*api.User, error) {
	client, err := s.online()
	if err != nil {
		return nil, err
	}

	user, err := client.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching user profile: %w", err)
	}

	s.cacheProfile(ctx, user)

	meta := map[string]string{
		tokenfile.MetaUserID: user.ID,
		tokenfile.MetaName:   user.Name,
		tokenfile.MetaEmail:  user.Email,
	}

	if err := tokenfile.LoadAndMergeMeta(s.Cfg.TokenPath, meta); err != nil {
		s.Logger.Warn("updating token metadata", "err", err)
	}

	return user, nil
}

func printWhoamiJSON(user *api.User, source string) error {
	out := whoamiOutput{
		User: whoamiUser{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		},
		Source: source,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	return nil
}

func printWhoamiText(user *api.User, source string) {
	fmt.Printf("User:  %s (%s)\n", user.Name, user.Email)
	fmt.Printf("ID:    %s\n", user.ID)

	if source == "cache" {
		statusf("(from cache; use --refresh to re-fetch)\n")
	}
}
