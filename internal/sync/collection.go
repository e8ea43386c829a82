// Package sync implements cache-first collection synchronization: each
// server collection is mirrored into the local cache, served from there
// instantly, and refreshed against the backend with stale-completion
// discard so the newest started fetch always wins.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	stdsync "sync"
)

// State is a collection's position in its lifecycle.
type State int

const (
	// StateEmpty means no data at all: nothing cached, nothing fetched.
	StateEmpty State = iota

	// StateCacheLoaded means the collection serves a cached snapshot.
	StateCacheLoaded

	// StateRefreshing means a fetch is in flight; the previous snapshot
	// keeps serving until it completes.
	StateRefreshing

	// StateFresh means the snapshot came from the latest successful fetch.
	StateFresh
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateCacheLoaded:
		return "cached"
	case StateRefreshing:
		return "refreshing"
	case StateFresh:
		return "fresh"
	default:
		return "unknown"
	}
}

// Origin tags a snapshot with where its data came from.
type Origin string

const (
	OriginCache  Origin = "cache"
	OriginServer Origin = "server"
)

// Snapshot is one immutable published view of a collection. Consumers must
// not mutate Items; refreshes replace the whole slice, never edit it.
type Snapshot[T any] struct {
	Items  []T
	Origin Origin
}

// Cache is the slice of the cache store a collection needs.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// FetchFunc retrieves the full server-side collection.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Collection mirrors one backend collection through the cache. All methods
// are safe for concurrent use.
//
// Refresh ordering: every refresh takes a monotonically increasing token at
// start; a completion applies only while its token is still the newest
// issued one, and each application runs as one unit covering the snapshot
// write, the cache write, and the publish. A fetch that was superseded by a
// forced refresh is discarded wholesale on completion, success or failure
// alike.
type Collection[T any] struct {
	key    string
	cache  Cache
	fetch  FetchFunc[T]
	logger *slog.Logger

	mu          stdsync.Mutex
	state       State
	snapshot    []T
	hasSnapshot bool
	fetchToken  uint64
	inflight    bool
	cancel      context.CancelFunc

	// applyMu orders completion application: the token check, snapshot
	// write, cache write, and publish happen as one unit. Acquired before
	// mu, never while holding it.
	applyMu stdsync.Mutex

	pubMu   stdsync.Mutex
	updates chan Snapshot[T]
}

// NewCollection creates a collection bound to a cache key and fetcher.
func NewCollection[T any](key string, cache Cache, fetch FetchFunc[T], logger *slog.Logger) *Collection[T] {
	return &Collection[T]{
		key:     key,
		cache:   cache,
		fetch:   fetch,
		logger:  logger,
		updates: make(chan Snapshot[T], 1),
	}
}

// Key returns the collection's cache key.
func (c *Collection[T]) Key() string {
	return c.key
}

// State returns the current lifecycle state.
func (c *Collection[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Current returns the latest snapshot and whether one exists. The returned
// slice is shared; callers must treat it as read-only.
func (c *Collection[T]) Current() ([]T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snapshot, c.hasSnapshot
}

// Updates returns a latest-value channel of published snapshots. The
// channel holds at most one pending snapshot; a newer publication replaces
// an unconsumed older one, so slow consumers always see the newest state.
func (c *Collection[T]) Updates() <-chan Snapshot[T] {
	return c.updates
}

// LoadCached populates the collection from the cache. A missing entry
// leaves the collection empty without error; a malformed entry is coerced
// to an empty snapshot with a warning rather than failing startup. No-op
// once the collection has moved past its initial state.
func (c *Collection[T]) LoadCached(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateEmpty {
		c.mu.Unlock()

		return nil
	}
	c.mu.Unlock()

	data, err := c.cache.Get(ctx, c.key)
	if err != nil {
		return fmt.Errorf("sync: loading cached %s: %w", c.key, err)
	}

	if data == nil {
		return nil
	}

	var items []T

	if err := json.Unmarshal(data, &items); err != nil {
		c.logger.Warn("malformed cached payload, serving empty snapshot",
			slog.String("collection", c.key),
			slog.String("error", err.Error()))

		items = []T{}
	}

	if items == nil {
		items = []T{}
	}

	c.applyMu.Lock()
	defer c.applyMu.Unlock()

	c.mu.Lock()
	if c.state != StateEmpty {
		c.mu.Unlock()

		return nil
	}

	c.snapshot = items
	c.hasSnapshot = true
	c.state = StateCacheLoaded
	c.mu.Unlock()

	c.logger.Debug("loaded cached snapshot",
		slog.String("collection", c.key),
		slog.Int("items", len(items)))

	c.publish(Snapshot[T]{Items: items, Origin: OriginCache})

	return nil
}

// Refresh fetches the collection from the backend and replaces the
// snapshot wholesale on success. While a fetch is in flight a non-forced
// call is a deduplicated no-op; a forced call cancels and supersedes the
// in-flight fetch. On failure the last-good snapshot keeps serving and the
// error is returned for the caller to log or count, never to block reads.
func (c *Collection[T]) Refresh(ctx context.Context, force bool) error {
	c.mu.Lock()

	if c.inflight && !force {
		c.mu.Unlock()
		c.logger.Debug("refresh already in flight, skipping", slog.String("collection", c.key))

		return nil
	}

	if c.inflight && c.cancel != nil {
		c.cancel()
	}

	c.fetchToken++
	token := c.fetchToken
	c.inflight = true
	c.state = StateRefreshing

	fctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	defer cancel()

	items, err := c.fetch(fctx)

	// The completion applies as one unit: once past the token check it
	// persists and publishes before any other completion may apply.
	c.applyMu.Lock()
	defer c.applyMu.Unlock()

	c.mu.Lock()

	if token != c.fetchToken {
		// Superseded by a newer refresh; this completion is stale and is
		// discarded whether it succeeded or not.
		c.mu.Unlock()
		c.logger.Debug("discarding superseded fetch", slog.String("collection", c.key))

		return nil
	}

	c.inflight = false
	c.cancel = nil

	if err != nil {
		if c.hasSnapshot {
			c.state = StateCacheLoaded
		} else {
			c.state = StateEmpty
		}
		c.mu.Unlock()

		c.logger.Warn("refresh failed, keeping last-good snapshot",
			slog.String("collection", c.key),
			slog.String("error", err.Error()))

		return fmt.Errorf("sync: refreshing %s: %w", c.key, err)
	}

	if items == nil {
		items = []T{}
	}

	c.snapshot = items
	c.hasSnapshot = true
	c.state = StateFresh
	c.mu.Unlock()

	c.persist(ctx, items)
	c.publish(Snapshot[T]{Items: items, Origin: OriginServer})

	c.logger.Debug("collection refreshed",
		slog.String("collection", c.key),
		slog.Int("items", len(items)))

	return nil
}

// persist writes the snapshot to the cache. Write failures are logged and
// swallowed: the in-memory snapshot is already serving, and the next
// successful refresh writes again.
func (c *Collection[T]) persist(ctx context.Context, items []T) {
	data, err := json.Marshal(items)
	if err != nil {
		c.logger.Warn("marshaling snapshot for cache failed",
			slog.String("collection", c.key),
			slog.String("error", err.Error()))

		return
	}

	if err := c.cache.Set(ctx, c.key, data); err != nil {
		c.logger.Warn("cache write failed",
			slog.String("collection", c.key),
			slog.String("error", err.Error()))
	}
}

// publish replaces any unconsumed pending snapshot with this one. Under
// pubMu the drain leaves the buffer with free space, so the send never
// blocks.
func (c *Collection[T]) publish(snap Snapshot[T]) {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()

	select {
	case <-c.updates:
	default:
	}

	c.updates <- snap
}
