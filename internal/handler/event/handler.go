package event

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shake819/remind-api/internal/engine"
	"github.com/shake819/remind-api/internal/handler"
	"github.com/shake819/remind-api/internal/model"
	"github.com/shake819/remind-api/internal/scheduler"
	"github.com/shake819/remind-api/pkg/logger"
)

// commandTimeout bounds background command execution once the caller has
// already been answered with 202.
const commandTimeout = 30 * time.Second

// Handler exposes the three user commands (add, list, delete) plus the
// manual trigger. With async enabled, mutating commands acknowledge receipt
// immediately and complete in the background, for host environments whose
// reply deadline is shorter than a store round-trip.
type Handler struct {
	engine    *engine.Engine
	scheduler *scheduler.Scheduler
	logger    *logger.Logger
	async     bool
}

func NewHandler(eng *engine.Engine, sched *scheduler.Scheduler, log *logger.Logger, async bool) *Handler {
	return &Handler{
		engine:    eng,
		scheduler: sched,
		logger:    log,
		async:     async,
	}
}

func (h *Handler) CreateEvent(c *gin.Context) {
	var req model.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if h.async {
		go h.inBackground("add event", func(ctx context.Context) error {
			_, err := h.engine.AddEvent(ctx, req.Date, req.Message)
			return err
		})
		c.JSON(http.StatusAccepted, handler.NewSuccessResponse(gin.H{"accepted": true}))
		return
	}

	ev, err := h.engine.AddEvent(c.Request.Context(), req.Date, req.Message)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(ev))
}

func (h *Handler) ListEvents(c *gin.Context) {
	events, err := h.engine.ListEvents(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	if events == nil {
		events = model.EventSet{}
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(events))
}

// DeleteEvent accepts either an event id or the 1-based position shown by
// the listing.
func (h *Handler) DeleteEvent(c *gin.Context) {
	ref := c.Param("ref")

	var req model.DeleteEventRequest
	if idx, err := strconv.Atoi(ref); err == nil {
		req.Index = idx
	} else {
		req.ID = ref
	}

	removed, err := h.engine.DeleteEvent(c.Request.Context(), req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(removed))
}

// RunNow triggers the day-boundary tick out of schedule.
func (h *Handler) RunNow(c *gin.Context) {
	if h.async {
		go h.inBackground("manual tick", func(ctx context.Context) error {
			return h.scheduler.RunNow(ctx)
		})
		c.JSON(http.StatusAccepted, handler.NewSuccessResponse(gin.H{"accepted": true}))
		return
	}

	if err := h.scheduler.RunNow(c.Request.Context()); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"ran": true}))
}

func (h *Handler) inBackground(name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		h.logger.Error(err, "background command failed", "command", name)
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	events := r.Group("/events")
	{
		events.POST("", h.CreateEvent)
		events.GET("", h.ListEvents)
		events.DELETE("/:ref", h.DeleteEvent)
	}
	r.POST("/run", h.RunNow)
}
