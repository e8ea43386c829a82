package config

import "sync"

// Holder provides thread-safe access to a mutable *Resolved and an
// immutable config file path. Watch mode reads through a shared Holder, so
// SIGHUP reload updates configuration in exactly one place.
type Holder struct {
	mu   sync.RWMutex
	r    *Resolved
	path string // immutable after construction
}

// NewHolder creates a Holder with the initial resolved config.
func NewHolder(r *Resolved) *Holder {
	return &Holder{
		r:    r,
		path: r.ConfigPath,
	}
}

// Resolved returns the current resolved config snapshot.
func (h *Holder) Resolved() *Resolved {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.r
}

// Path returns the config file path. Immutable after construction, so no
// locking needed.
func (h *Holder) Path() string {
	return h.path
}

// Update replaces the resolved config. Called on SIGHUP reload — one call
// updates configuration for all consumers.
func (h *Holder) Update(r *Resolved) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.r = r
}
