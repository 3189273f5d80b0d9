package file

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shake819/remind-api/internal/model"
	"github.com/shake819/remind-api/internal/store"
	apperrors "github.com/shake819/remind-api/pkg/errors"
)

// Store persists the event set as a JSON document on the local filesystem.
// The version token is the SHA-256 of the document bytes, so a commit built
// on a stale read is rejected the same way the remote blob backends reject
// a stale SHA. Writes go through a temp file and rename.
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Load(ctx context.Context) (store.Snapshot, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			// Absent document is a legitimate empty initial state.
			return store.Snapshot{}, nil
		}
		return store.Snapshot{}, apperrors.StoreUnavailable(fmt.Errorf("failed to read %s: %w", s.path, err))
	}

	var events model.EventSet
	if err := json.Unmarshal(raw, &events); err != nil {
		return store.Snapshot{}, apperrors.CorruptDocument(fmt.Errorf("failed to parse %s: %w", s.path, err))
	}

	return store.Snapshot{Events: events, Version: digest(raw)}, nil
}

func (s *Store) Commit(ctx context.Context, snap store.Snapshot) error {
	current, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		if digest(current) != snap.Version {
			return apperrors.VersionConflict(fmt.Errorf("document %s changed since load", s.path))
		}
	case os.IsNotExist(err):
		if snap.Version != "" {
			return apperrors.VersionConflict(fmt.Errorf("document %s deleted since load", s.path))
		}
	default:
		return apperrors.StoreUnavailable(fmt.Errorf("failed to read %s: %w", s.path, err))
	}

	raw, err := json.MarshalIndent(snap.Events, "", "  ")
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to marshal event set: %w", err))
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".events-*")
	if err != nil {
		return apperrors.StoreUnavailable(fmt.Errorf("failed to create temp file: %w", err))
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperrors.StoreUnavailable(fmt.Errorf("failed to write temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperrors.StoreUnavailable(fmt.Errorf("failed to close temp file: %w", err))
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return apperrors.StoreUnavailable(fmt.Errorf("failed to replace %s: %w", s.path, err))
	}
	return nil
}

func digest(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
