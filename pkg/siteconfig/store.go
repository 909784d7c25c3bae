package siteconfig

import (
	"context"
	"errors"
)

// ErrVersionConflict is returned when a Save detects that the registry
// was modified since the caller last loaded it (optimistic concurrency).
var ErrVersionConflict = errors.New("registry version conflict: file was modified since last load")

// ChangeEvent is emitted when the store detects an external change to
// the registry.
type ChangeEvent struct {
	// Version is the new content hash after the change.
	Version string

	// Error is set if the watcher failed to read the registry.
	Error error
}

// Store abstracts persistent storage for the site registry.
// Implementations must be safe for concurrent use.
type Store interface {
	// Load reads the current registry and returns it along with a version
	// string (content hash) used for optimistic concurrency on Save.
	Load(ctx context.Context) (*Registry, string, error)

	// Save writes the registry back. The provided version must match the
	// current stored version; otherwise ErrVersionConflict is returned.
	// On success the new version hash is returned.
	Save(ctx context.Context, reg *Registry, version string) (string, error)

	// Watch emits events when the underlying registry changes externally.
	// The channel is closed when the context is cancelled.
	Watch(ctx context.Context) (<-chan ChangeEvent, error)
}
