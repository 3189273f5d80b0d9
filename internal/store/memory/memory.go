package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/shake819/remind-api/internal/store"
	apperrors "github.com/shake819/remind-api/pkg/errors"
)

// Store is an in-process backend with a monotonically increasing version
// token. Used by tests and as a throwaway backend for local runs; it honours
// the same conflict contract as the versioned remote backends.
type Store struct {
	mu      sync.Mutex
	snap    store.Snapshot
	version int
}

func New() *Store {
	return &Store{snap: store.Snapshot{Version: "0"}}
}

func (s *Store) Load(ctx context.Context) (store.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.Snapshot{
		Events:  s.snap.Events.Clone(),
		Version: strconv.Itoa(s.version),
	}, nil
}

func (s *Store) Commit(ctx context.Context, snap store.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Version != strconv.Itoa(s.version) {
		return apperrors.VersionConflict(fmt.Errorf("have %d, commit carries %q", s.version, snap.Version))
	}
	s.version++
	s.snap = store.Snapshot{Events: snap.Events.Clone()}
	return nil
}
