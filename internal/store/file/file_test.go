package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shake819/remind-api/internal/model"
	"github.com/shake819/remind-api/internal/store"
	apperrors "github.com/shake819/remind-api/pkg/errors"
)

func tempStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.json")
	return New(path), path
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	s, _ := tempStore(t)

	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Events)
	assert.Empty(t, snap.Version)
}

func TestCommitThenLoadRoundTrip(t *testing.T) {
	s, _ := tempStore(t)
	ctx := context.Background()

	events := model.EventSet{
		{ID: uuid.New(), Date: "2025-06-10", Message: "Launch"},
		{ID: uuid.New(), Date: "2025-07-01", Message: "Retro", Notified7: true},
	}

	require.NoError(t, s.Commit(ctx, store.Snapshot{Events: events}))

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, events, snap.Events)
	assert.NotEmpty(t, snap.Version)
}

func TestLoadCorruptFile(t *testing.T) {
	s, path := tempStore(t)
	require.NoError(t, os.WriteFile(path, []byte("{ not json"), 0o644))

	_, err := s.Load(context.Background())
	assert.True(t, apperrors.Is(err, apperrors.ErrCorruptDocument))
}

func TestCommitRejectsStaleVersion(t *testing.T) {
	s, path := tempStore(t)
	ctx := context.Background()

	require.NoError(t, s.Commit(ctx, store.Snapshot{Events: model.EventSet{
		{ID: uuid.New(), Date: "2025-06-10", Message: "Launch"},
	}}))

	snap, err := s.Load(ctx)
	require.NoError(t, err)

	// Out-of-band edit between our load and commit.
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	err = s.Commit(ctx, store.Snapshot{Events: snap.Events, Version: snap.Version})
	assert.True(t, apperrors.Is(err, apperrors.ErrVersionConflict))

	// Reload picks up the fresh token and the commit goes through.
	snap2, err := s.Load(ctx)
	require.NoError(t, err)
	assert.NoError(t, s.Commit(ctx, store.Snapshot{Events: snap.Events, Version: snap2.Version}))
}

func TestCommitRejectsDeletedDocumentWithToken(t *testing.T) {
	s, path := tempStore(t)
	ctx := context.Background()

	require.NoError(t, s.Commit(ctx, store.Snapshot{Events: model.EventSet{
		{ID: uuid.New(), Date: "2025-06-10", Message: "Launch"},
	}}))

	snap, err := s.Load(ctx)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	err = s.Commit(ctx, store.Snapshot{Events: snap.Events, Version: snap.Version})
	assert.True(t, apperrors.Is(err, apperrors.ErrVersionConflict))
}
