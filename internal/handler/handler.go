package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shake819/remind-api/internal/clock"
	"github.com/shake819/remind-api/internal/store"
)

// Handler serves the health and metrics endpoints. The liveness endpoint
// doubles as the keep-alive target for hosting platforms that recycle idle
// processes. Timestamps come from the injected clock so the payload reflects
// the same notion of "now" the engine schedules by.
type Handler struct {
	store store.Store
	clock clock.Clock
}

func NewHandler(st store.Store, clk clock.Clock) *Handler {
	return &Handler{store: st, clock: clk}
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
		"time":   h.clock.Now(),
	})
}

// ReadinessCheck verifies the store backend answers a load.
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if _, err := h.store.Load(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   h.clock.Now(),
	})
}

func (h *Handler) MetricsHandler(c *gin.Context) {
	promhttp.Handler().ServeHTTP(c.Writer, c.Request)
}
