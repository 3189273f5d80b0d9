package redisstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/shake819/remind-api/internal/model"
	"github.com/shake819/remind-api/internal/store"
	apperrors "github.com/shake819/remind-api/pkg/errors"
)

type Config struct {
	URL string `mapstructure:"url"`
	Key string `mapstructure:"key"`
}

// Store keeps the event set as a single JSON value under one key. Commits run
// inside a WATCH transaction: if the key changed after the load the pipeline
// is discarded and the caller gets a retryable conflict, mirroring the SHA
// guard of the blob backends.
type Store struct {
	client *redis.Client
	key    string
}

func New(cfg Config) (*Store, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	key := cfg.Key
	if key == "" {
		key = "remind:events"
	}
	return &Store{client: client, key: key}, nil
}

func (s *Store) Load(ctx context.Context) (store.Snapshot, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return store.Snapshot{}, nil
		}
		return store.Snapshot{}, apperrors.StoreUnavailable(fmt.Errorf("failed to get %s: %w", s.key, err))
	}

	var events model.EventSet
	if err := json.Unmarshal(raw, &events); err != nil {
		return store.Snapshot{}, apperrors.CorruptDocument(fmt.Errorf("failed to parse %s: %w", s.key, err))
	}

	return store.Snapshot{Events: events, Version: digest(raw)}, nil
}

func (s *Store) Commit(ctx context.Context, snap store.Snapshot) error {
	raw, err := json.Marshal(snap.Events)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to marshal event set: %w", err))
	}

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, s.key).Bytes()
		switch {
		case err == nil:
			if digest(current) != snap.Version {
				return apperrors.VersionConflict(fmt.Errorf("key %s changed since load", s.key))
			}
		case errors.Is(err, redis.Nil):
			if snap.Version != "" {
				return apperrors.VersionConflict(fmt.Errorf("key %s deleted since load", s.key))
			}
		default:
			return apperrors.StoreUnavailable(fmt.Errorf("failed to get %s: %w", s.key, err))
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, raw, 0)
			return nil
		})
		return err
	}, s.key)

	if errors.Is(err, redis.TxFailedErr) {
		return apperrors.VersionConflict(fmt.Errorf("key %s changed during commit: %w", s.key, err))
	}
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return apperrors.StoreUnavailable(fmt.Errorf("failed to commit %s: %w", s.key, err))
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func digest(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
