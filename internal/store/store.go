package store

import (
	"context"

	"github.com/shake819/remind-api/internal/model"
)

// Snapshot is one observed state of the persisted event set. Version is the
// backend's opaque optimistic-concurrency token (a blob SHA, a payload hash)
// captured at load time and presented back on commit. Backends without native
// versioning leave it empty and treat every commit as current.
type Snapshot struct {
	Events  model.EventSet
	Version string
}

// Store abstracts load/commit over an arbitrary backend. Implementations are
// stateless adapters: they hold no locks and are only ever invoked while the
// engine's serializer holds its mutation lock.
//
// Load returns an empty snapshot when the backend reports the document as
// absent; a present-but-unparsable document is a CorruptDocument error, never
// an empty set. Commit replaces the whole persisted set atomically or fails
// leaving the prior state visible; a stale Version is a VersionConflict.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Commit(ctx context.Context, snap Snapshot) error
}
