package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/motortrack/motortrack-go/internal/config"
	"github.com/motortrack/motortrack-go/internal/geocode"
	"github.com/motortrack/motortrack-go/internal/sync"
)

// Watcher error backoff bounds. Sustained fsnotify errors back off
// exponentially instead of spinning.
const (
	watchErrInitBackoff = time.Second
	watchErrBackoffMult = 2
	watchErrMaxBackoff  = time.Minute
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Continuously refresh the cache",
		Long: `Run in the foreground and refresh all collections on an interval.

A token file rewrite (e.g. from 'motortrack-go login' in another terminal)
is picked up immediately and triggers a forced refresh. SIGHUP reloads the
configuration; 'motortrack-go config reload' sends it for you. A PID file
guards against a second watch on the same data directory.`,
		RunE: runWatch,
	}

	cmd.Flags().Duration("interval", 0, "refresh interval (default from sync.poll_interval)")

	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
	interval, err := cmd.Flags().GetDuration("interval")
	if err != nil {
		return err
	}

	intervalPinned := cmd.Flags().Changed("interval")

	s, err := openSession(context.Background(), true)
	if err != nil {
		return err
	}
	defer s.Close()

	if interval <= 0 {
		interval = s.Cfg.PollInterval
	}

	cleanup, err := writePIDFile(watchPIDPath(s.Cfg))
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := shutdownContext(context.Background(), s.Logger)

	// CLI overrides are pinned at startup; SIGHUP re-reads only the file
	// and environment layers beneath them.
	cli := config.CLIOverrides{ConfigPath: flagConfigPath}
	if cmd.Flags().Changed("server") {
		cli.ServerURL = &flagServerURL
	}

	holder := config.NewHolder(s.Cfg)
	resolver := maybeResolver(s, s.Cfg.GeocodeAPIKey, s.Cfg.GeocodeWorkers)

	cs := newCollectionSet(s)
	hub := cs.hub(s)

	if err := hub.WarmAll(ctx); err != nil {
		s.Logger.Warn("cache warm reported failures", "err", err)
	}

	statusf("Watching; refreshing every %s. Ctrl-C to stop.\n", interval)
	refreshPass(ctx, s, cs, hub, resolver, false)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the token file's directory: saves are temp-file-plus-rename, so
	// watching the file itself would break after the first rewrite.
	tokenDir := filepath.Dir(s.Cfg.TokenPath)
	if err := watcher.Add(tokenDir); err != nil {
		s.Logger.Warn("cannot watch token directory, login changes need a restart",
			"dir", tokenDir, "err", err)
	}

	hupCh := make(chan os.Signal, 1)
	signal.Notify(hupCh, syscall.SIGHUP)
	defer signal.Stop(hupCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	errBackoff := watchErrInitBackoff

	for {
		select {
		case <-ctx.Done():
			statusf("Stopping.\n")

			return nil

		case <-ticker.C:
			refreshPass(ctx, s, cs, hub, resolver, false)
			errBackoff = watchErrInitBackoff

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if tokenFileEvent(event, s.Cfg.TokenPath) {
				s.Logger.Info("token file changed, reloading")

				if err := s.Tokens.Reload(); err != nil {
					s.Logger.Warn("token reload failed", "err", err)

					continue
				}

				// New credentials may unlock fetches that were failing;
				// supersede anything in flight.
				refreshPass(ctx, s, cs, hub, resolver, true)
			}

			errBackoff = watchErrInitBackoff

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			s.Logger.Warn("file watcher error", "err", watchErr, "backoff", errBackoff)

			if sleepCtx(ctx, errBackoff) != nil {
				return nil
			}

			errBackoff *= watchErrBackoffMult
			if errBackoff > watchErrMaxBackoff {
				errBackoff = watchErrMaxBackoff
			}

		case <-hupCh:
			old, fresh := reloadConfig(s, holder, cli)
			if fresh == nil {
				continue
			}

			if !intervalPinned && fresh.PollInterval != interval {
				interval = fresh.PollInterval
				ticker.Reset(interval)
				s.Logger.Info("poll interval updated", "interval", interval)
			}

			if fresh.GeocodeAPIKey != old.GeocodeAPIKey || fresh.GeocodeWorkers != old.GeocodeWorkers {
				resolver = maybeResolver(s, fresh.GeocodeAPIKey, fresh.GeocodeWorkers)
			}
		}
	}
}

// refreshPass runs one full refresh, then resolves missing report addresses
// when a resolver is configured. Failures are logged; the daemon keeps
// serving the last-good snapshots.
func refreshPass(ctx context.Context, s *Session, cs *collectionSet, hub *sync.Hub, resolver *geocode.Resolver, force bool) {
	report := hub.RefreshAll(ctx, force)
	if report.Failed > 0 {
		s.Logger.Warn("refresh pass had failures", "summary", report.Summary())
	}

	if resolver == nil {
		return
	}

	reports, ok := cs.Reports.Current()
	if !ok {
		return
	}

	_, count, err := resolveWith(ctx, s, resolver, reports)
	if err != nil {
		s.Logger.Warn("address resolution failed", "err", err)

		return
	}

	if count > 0 {
		s.Logger.Info("resolved report addresses", "count", count)
	}
}

// tokenFileEvent reports whether a directory event is a rewrite of the
// token file itself.
func tokenFileEvent(event fsnotify.Event, tokenPath string) bool {
	if filepath.Clean(event.Name) != filepath.Clean(tokenPath) {
		return false
	}

	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename)
}

// reloadConfig re-resolves configuration for SIGHUP and swaps it into the
// holder. Returns the previous and new snapshots, or nils when the reload
// failed and the previous config stays in effect.
func reloadConfig(s *Session, holder *config.Holder, cli config.CLIOverrides) (*config.Resolved, *config.Resolved) {
	fresh, err := config.Resolve(config.ReadEnvOverrides(), cli)
	if err != nil {
		s.Logger.Warn("config reload failed, keeping previous", "err", err)

		return nil, nil
	}

	old := holder.Resolved()
	holder.Update(fresh)
	s.Logger.Info("config reloaded", "path", fresh.ConfigPath)

	if fresh.BaseURL != old.BaseURL || fresh.TokenPath != old.TokenPath || fresh.CachePath != old.CachePath {
		s.Logger.Warn("server or path changes need a watch restart to apply")
	}

	return old, fresh
}

// sleepCtx waits d or until ctx cancels, returning the context error in
// that case.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
