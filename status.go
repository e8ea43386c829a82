package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/motortrack/motortrack-go/internal/api"
	"github.com/motortrack/motortrack-go/internal/cache"
	"github.com/motortrack/motortrack-go/internal/tokenfile"
)

// Token state constants for status reporting.
const (
	tokenStateMissing = "missing"
	tokenStateExpired = "expired"
	tokenStateValid   = "valid"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show login state and cache contents",
		Long: `Display the login state and what is cached locally.

Shows token validity, the account from the last login, and one line per
cache entry with its item count, size, and last update time. Reads local
files only — never the network.`,
		RunE: runStatus,
	}
}

// statusOutput is the JSON schema for `status --json`.
type statusOutput struct {
	TokenState string        `json:"token_state"`
	User       *whoamiUser   `json:"user,omitempty"`
	ConfigPath string        `json:"config_path"`
	CachePath  string        `json:"cache_path"`
	Entries    []statusEntry `json:"cache_entries"`
}

// statusEntry describes one cache entry. Count is nil for entries that are
// not JSON arrays, such as the profile.
type statusEntry struct {
	Key       string    `json:"key"`
	Count     *int      `json:"count,omitempty"`
	Size      int64     `json:"size_bytes"`
	UpdatedAt time.Time `json:"updated_at"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	logger := buildLogger()

	out := statusOutput{
		TokenState: checkTokenState(resolvedCfg.TokenPath, logger),
		User:       statusUser(resolvedCfg.TokenPath, logger),
		ConfigPath: resolvedCfg.ConfigPath,
		CachePath:  resolvedCfg.CachePath,
	}

	entries, err := listCacheEntries(ctx, logger)
	if err != nil {
		return err
	}

	out.Entries = entries

	if flagJSON {
		return printStatusJSON(&out)
	}

	printStatusText(&out)

	return nil
}

// checkTokenState probes the token file the same way the API client does.
// Returns "valid", "expired", or "missing".
func checkTokenState(path string, logger *slog.Logger) string {
	_, _, err := api.NewFileTokenSource(path, logger)

	switch {
	case err == nil:
		return tokenStateValid
	case errors.Is(err, api.ErrTokenExpired):
		return tokenStateExpired
	default:
		return tokenStateMissing
	}
}

// statusUser reads the identity cached in the token file metadata, if any.
func statusUser(path string, logger *slog.Logger) *whoamiUser {
	meta, err := tokenfile.ReadMeta(path)
	if err != nil {
		logger.Debug("could not read token metadata", "err", err)

		return nil
	}

	if meta[tokenfile.MetaUserID] == "" && meta[tokenfile.MetaEmail] == "" {
		return nil
	}

	return &whoamiUser{
		ID:    meta[tokenfile.MetaUserID],
		Name:  meta[tokenfile.MetaName],
		Email: meta[tokenfile.MetaEmail],
	}
}

// listCacheEntries reads metadata for every cache entry and counts the
// items in collection entries.
func listCacheEntries(ctx context.Context, logger *slog.Logger) ([]statusEntry, error) {
	store, err := cache.NewStore(resolvedCfg.CachePath, logger)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing cache", "err", err)
		}
	}()

	infos, err := store.List(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]statusEntry, 0, len(infos))

	for _, info := range infos {
		entry := statusEntry{
			Key:       info.Key,
			Size:      info.Size,
			UpdatedAt: info.UpdatedAt,
		}

		if n, ok := countItems(ctx, store, info.Key); ok {
			entry.Count = &n
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// countItems returns how many items a cached JSON array holds. Entries that
// are not arrays report no count.
func countItems(ctx context.Context, store *cache.Store, key string) (int, bool) {
	data, err := store.Get(ctx, key)
	if err != nil || data == nil {
		return 0, false
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return 0, false
	}

	return len(items), true
}

func printStatusJSON(out *statusOutput) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	return nil
}

func printStatusText(out *statusOutput) {
	fmt.Printf("Token:  %s\n", out.TokenState)

	if out.User != nil {
		fmt.Printf("User:   %s (%s)\n", out.User.Name, out.User.Email)
	}

	configLabel := out.ConfigPath
	if _, err := os.Stat(out.ConfigPath); errors.Is(err, os.ErrNotExist) {
		configLabel += " (not found, defaults in use)"
	}

	fmt.Printf("Config: %s\n", configLabel)
	fmt.Printf("Cache:  %s\n", out.CachePath)

	if len(out.Entries) == 0 {
		statusf("\nCache is empty. Run 'motortrack-go sync' after logging in.\n")

		return
	}

	fmt.Println()
	printCacheEntriesTable(out.Entries)
}

func printCacheEntriesTable(entries []statusEntry) {
	headers := []string{"KEY", "ITEMS", "SIZE", "UPDATED"}
	rows := make([][]string, 0, len(entries))

	for _, e := range entries {
		count := "-"
		if e.Count != nil {
			count = strconv.Itoa(*e.Count)
		}

		rows = append(rows, []string{e.Key, count, formatSize(e.Size), formatTime(e.UpdatedAt)})
	}

	printListing(headers, rows)
}
