package engine

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shake819/remind-api/internal/clock"
	"github.com/shake819/remind-api/internal/model"
	"github.com/shake819/remind-api/internal/notifier"
	"github.com/shake819/remind-api/internal/store"
	apperrors "github.com/shake819/remind-api/pkg/errors"
	"github.com/shake819/remind-api/pkg/logger"
	"github.com/shake819/remind-api/pkg/metrics"
)

const listCacheKey = "events"

// Engine orchestrates the store, the serializer and the notification sink.
//
// Delivery policy: a notified_* flag is only set once the sink confirms
// delivery. A failed delivery leaves the flag unset so the message is
// retried on the next tick instead of being silently lost.
type Engine struct {
	serializer *Serializer
	sink       notifier.Notifier
	clock      clock.Clock
	logger     *logger.Logger
	metrics    *metrics.Metrics

	// listCache shields rate-limited backends (the contents API in
	// particular) from repeated read-only list commands. Every mutation
	// invalidates it.
	listCache *gocache.Cache
}

func New(st store.Store, sink notifier.Notifier, clk clock.Clock, log *logger.Logger, m *metrics.Metrics) *Engine {
	return &Engine{
		serializer: NewSerializer(st, m),
		sink:       sink,
		clock:      clk,
		logger:     log,
		metrics:    m,
		listCache:  gocache.New(10*time.Second, time.Minute),
	}
}

// AddEvent validates the date, assigns a fresh id and appends the event with
// all notification flags false.
func (e *Engine) AddEvent(ctx context.Context, date, message string) (model.Event, error) {
	if _, err := clock.ParseDate(date); err != nil {
		return model.Event{}, apperrors.BadRequest("invalid event date", err)
	}
	if strings.TrimSpace(message) == "" {
		return model.Event{}, apperrors.BadRequest("event message is required", nil)
	}

	ev := model.Event{ID: uuid.New(), Date: date, Message: message}
	committed, err := e.serializer.WithExclusiveAccess(ctx, func(set model.EventSet) (model.EventSet, error) {
		return append(set, ev), nil
	})
	if err != nil {
		return model.Event{}, err
	}

	e.afterMutation(len(committed))
	e.logger.Info("event added", "id", ev.ID.String(), "date", ev.Date)
	return ev, nil
}

// DeleteEvent resolves the reference (id, or 1-based position in the
// date-sorted listing) and removes the event. The whole resolution happens
// inside the critical section so the index cannot drift between a list and
// the delete.
func (e *Engine) DeleteEvent(ctx context.Context, req model.DeleteEventRequest) (model.Event, error) {
	var id uuid.UUID
	if req.ID != "" {
		parsed, err := uuid.Parse(req.ID)
		if err != nil {
			return model.Event{}, apperrors.BadRequest("invalid event id", err)
		}
		id = parsed
	} else if req.Index < 1 {
		return model.Event{}, apperrors.BadRequest("event reference is required", nil)
	}

	var removed model.Event
	committed, err := e.serializer.WithExclusiveAccess(ctx, func(set model.EventSet) (model.EventSet, error) {
		sortByDate(set)

		idx := -1
		if req.ID != "" {
			idx = set.FindByID(id)
		} else if req.Index <= len(set) {
			idx = req.Index - 1
		}
		if idx < 0 {
			return nil, apperrors.NotFound("event", nil)
		}

		removed = set[idx]
		return append(set[:idx], set[idx+1:]...), nil
	})
	if err != nil {
		return model.Event{}, err
	}

	e.afterMutation(len(committed))
	e.logger.Info("event deleted", "id", removed.ID.String(), "date", removed.Date)
	return removed, nil
}

// ListEvents is the read-only path: no lock, no flag mutation, no
// notifications. Results are sorted by date ascending and briefly cached.
func (e *Engine) ListEvents(ctx context.Context) (model.EventSet, error) {
	if cached, ok := e.listCache.Get(listCacheKey); ok {
		return cached.(model.EventSet).Clone(), nil
	}

	events, err := e.serializer.Load(ctx)
	if err != nil {
		return nil, err
	}

	e.listCache.Set(listCacheKey, events.Clone(), gocache.DefaultExpiration)
	return events, nil
}

// Tick runs the day-boundary pass: expire past events, fire due lead-time
// buckets, commit the surviving set. Safe to invoke any number of times per
// day; flags already set make the repeat a no-op.
func (e *Engine) Tick(ctx context.Context) error {
	now := e.clock.Now()
	today := clock.DayKey(now)

	var timer *prometheus.Timer
	if e.metrics != nil {
		timer = prometheus.NewTimer(e.metrics.TickLatency)
	}

	// Deliveries already confirmed in this tick survive a conflict-retry of
	// the mutator: the flag is re-set without posting the message again.
	delivered := make(map[uuid.UUID]map[int]bool)
	var expired int

	committed, err := e.serializer.WithExclusiveAccess(ctx, func(set model.EventSet) (model.EventSet, error) {
		expired = 0
		next := make(model.EventSet, 0, len(set))

		for i := range set {
			ev := set[i]

			d, err := clock.DayDistance(ev.Date, now)
			if err != nil {
				// A stored date that no longer parses is kept untouched
				// rather than dropped; creation validates, so this only
				// happens after an out-of-band edit of the document.
				e.logger.Warn("skipping event with unparsable date", "id", ev.ID.String(), "date", ev.Date)
				next = append(next, ev)
				continue
			}

			if d < 0 {
				expired++
				e.logger.Info("event expired", "id", ev.ID.String(), "date", ev.Date)
				continue
			}

			for _, lead := range leadDays {
				if d != lead {
					continue
				}
				flag := flagFor(&ev, lead)
				if *flag {
					continue
				}

				if !delivered[ev.ID][lead] {
					if err := e.sink.Deliver(ctx, renderMessage(ev, lead)); err != nil {
						// Flag stays unset; retried next tick.
						e.logger.Error(err, "delivery failed", "id", ev.ID.String(), "lead_days", lead)
						if e.metrics != nil {
							e.metrics.NotificationsFailed.WithLabelValues(strconv.Itoa(lead)).Inc()
						}
						continue
					}
					if delivered[ev.ID] == nil {
						delivered[ev.ID] = make(map[int]bool)
					}
					delivered[ev.ID][lead] = true
					if e.metrics != nil {
						e.metrics.NotificationsDelivered.WithLabelValues(strconv.Itoa(lead)).Inc()
					}
				}
				*flag = true
			}

			next = append(next, ev)
		}

		return next, nil
	})
	if err != nil {
		return err
	}

	if timer != nil {
		timer.ObserveDuration()
	}

	// Counted from the delivered map, not per mutator run, so a
	// conflict-retried mutator does not understate confirmed deliveries.
	sent := 0
	for _, leads := range delivered {
		sent += len(leads)
	}
	if e.metrics != nil {
		e.metrics.TicksTotal.Inc()
		e.metrics.EventsExpired.Add(float64(expired))
	}
	e.afterMutation(len(committed))
	e.logger.Info("tick complete", "today", today, "expired", expired, "delivered", sent, "events", len(committed))
	return nil
}

func (e *Engine) afterMutation(size int) {
	e.listCache.Delete(listCacheKey)
	if e.metrics != nil {
		e.metrics.EventSetSize.Set(float64(size))
	}
}

// Store exposes the underlying store for readiness probes.
func (e *Engine) Store() store.Store {
	return e.serializer.store
}
