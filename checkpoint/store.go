// Package checkpoint persists and recovers the single opaque checkpoint
// marker each node owns across restarts.
package checkpoint

import "errors"

// ErrWrite is wrapped around any failure to persist a marker. Per the
// node runtime's error policy, a write failure is fatal to the owning
// node — callers should treat it that way rather than retrying silently.
var ErrWrite = errors.New("checkpoint: write failed")

// Store persists and recovers a single opaque marker string per node
// identity.
//
// Load is a one-shot handoff from disk (or whatever backing medium) to
// memory: it deletes the persisted entry as it returns it, since a
// node's in-memory last_checkpoint is the authority from that point on
// and subsequent barrier completions rewrite the backing entry from
// scratch. A missing entry is not an error — it is the normal case on a
// node's first-ever start.
type Store interface {
	// Load returns the marker for name and removes it from the backing
	// store. ok is false if no marker was present; that is benign, not
	// an error.
	Load(name string) (marker string, ok bool, err error)

	// Store atomically replaces the marker for name.
	Store(name string, marker string) error
}
