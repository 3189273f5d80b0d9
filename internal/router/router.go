package router

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/shake819/remind-api/internal/clock"
	"github.com/shake819/remind-api/internal/handler"
	"github.com/shake819/remind-api/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	// RateLimit enables the read/write limiter when ReadRPS is positive.
	RateLimit middleware.RateLimiterConfig
}

type Router struct {
	engine *gin.Engine
	h      *handler.Handler
	eventH Handler
}

func NewRouter(h *handler.Handler, eventH Handler, config Config) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
	)

	if config.RateLimit.ReadRPS > 0 {
		engine.Use(middleware.NewRateLimiter(config.RateLimit).RateLimit())
	}

	registerValidations()

	return &Router{
		engine: engine,
		h:      h,
		eventH: eventH,
	}
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	health := api.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
		health.GET("/metrics", r.h.MetricsHandler)
	}

	r.eventH.RegisterRoutes(api)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// dateonly rejects anything that is not a real calendar day, so malformed
// dates never reach the engine, let alone the store.
func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("dateonly", func(fl validator.FieldLevel) bool {
			_, err := clock.ParseDate(fl.Field().String())
			return err == nil
		})
	}
}
