package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shake819/remind-api/internal/model"
	"github.com/shake819/remind-api/internal/store"
	apperrors "github.com/shake819/remind-api/pkg/errors"
	"github.com/shake819/remind-api/pkg/metrics"
)

// Mutator transforms an in-memory copy of the event set. It may run more
// than once when a commit hits a stale version token, so it must be a pure
// function of its input plus state the caller keeps idempotent.
type Mutator func(model.EventSet) (model.EventSet, error)

// Serializer is the process-wide mutual exclusion over the store. Every
// load-mutate-commit cycle, whether a user command or the scheduler tick,
// goes through WithExclusiveAccess; the backends themselves hold no locks.
type Serializer struct {
	mu      sync.Mutex
	store   store.Store
	metrics *metrics.Metrics
}

func NewSerializer(st store.Store, m *metrics.Metrics) *Serializer {
	return &Serializer{store: st, metrics: m}
}

// WithExclusiveAccess runs one load-mutate-sort-commit cycle under the lock.
// The lock is released on every exit path. A commit rejected with a stale
// version token is retried exactly once: reload, reapply the mutator,
// recommit. The committed set is returned.
func (s *Serializer) WithExclusiveAccess(ctx context.Context, mutate Mutator) (model.EventSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.cycle(ctx, mutate)
	if err != nil && apperrors.Is(err, apperrors.ErrVersionConflict) {
		if s.metrics != nil {
			s.metrics.StoreConflicts.Inc()
		}
		events, err = s.cycle(ctx, mutate)
	}
	return events, err
}

func (s *Serializer) cycle(ctx context.Context, mutate Mutator) (model.EventSet, error) {
	start := time.Now()
	snap, err := s.store.Load(ctx)
	s.observe("load", start, err)
	if err != nil {
		return nil, err
	}

	mutated, err := mutate(snap.Events.Clone())
	if err != nil {
		return nil, err
	}

	sortByDate(mutated)

	start = time.Now()
	err = s.store.Commit(ctx, store.Snapshot{Events: mutated, Version: snap.Version})
	s.observe("commit", start, err)
	if err != nil {
		return nil, err
	}
	return mutated, nil
}

// Load is the read-only path; it takes no lock and never commits.
func (s *Serializer) Load(ctx context.Context) (model.EventSet, error) {
	start := time.Now()
	snap, err := s.store.Load(ctx)
	s.observe("load", start, err)
	if err != nil {
		return nil, err
	}
	events := snap.Events.Clone()
	sortByDate(events)
	return events, nil
}

func (s *Serializer) observe(op string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.StoreOperations.WithLabelValues(op, status).Inc()
	s.metrics.StoreLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Ties sort by id so the stored order is deterministic across backends.
func sortByDate(events model.EventSet) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		return events[i].ID.String() < events[j].ID.String()
	})
}
