package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/shake819/remind-api/internal/clock"
	"github.com/shake819/remind-api/internal/config"
	"github.com/shake819/remind-api/internal/engine"
	"github.com/shake819/remind-api/internal/handler"
	eventHandler "github.com/shake819/remind-api/internal/handler/event"
	"github.com/shake819/remind-api/internal/middleware"
	"github.com/shake819/remind-api/internal/notifier"
	emailNotifier "github.com/shake819/remind-api/internal/notifier/email"
	"github.com/shake819/remind-api/internal/notifier/webhook"
	"github.com/shake819/remind-api/internal/router"
	"github.com/shake819/remind-api/internal/scheduler"
	"github.com/shake819/remind-api/internal/store"
	fileStore "github.com/shake819/remind-api/internal/store/file"
	githubStore "github.com/shake819/remind-api/internal/store/github"
	memoryStore "github.com/shake819/remind-api/internal/store/memory"
	postgresStore "github.com/shake819/remind-api/internal/store/postgres"
	"github.com/shake819/remind-api/internal/store/redisstore"
	"github.com/shake819/remind-api/pkg/logger"
	"github.com/shake819/remind-api/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)
	appMetrics := metrics.NewMetrics("remind")

	// Resolve the target timezone; every day-boundary decision uses it.
	zoneClock, err := clock.NewZoneClock(cfg.Timezone)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load timezone")
	}

	// Initialize store backend
	st, err := newStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize event store")
	}

	// Initialize notification sink
	sink, err := newNotifier(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize notification sink")
	}

	// Initialize engine and scheduler
	eng := engine.New(st, sink, zoneClock, appLogger, appMetrics)
	sched := scheduler.New(eng, zoneClock, appLogger, appMetrics)

	// Initialize handlers
	h := handler.NewHandler(st, zoneClock)
	eventH := eventHandler.NewHandler(eng, sched, appLogger, cfg.Server.AsyncCommands)

	// Setup router
	r := router.NewRouter(h, eventH, router.Config{
		RateLimit: middleware.RateLimiterConfig{
			ReadRPS:    rate.Limit(cfg.Server.ReadRPS),
			ReadBurst:  cfg.Server.ReadBurst,
			WriteRPS:   rate.Limit(cfg.Server.WriteRPS),
			WriteBurst: cfg.Server.WriteBurst,
		},
	})
	r.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the day-boundary scheduler
	if err := sched.Start(ctx, cfg.Scheduler.PulseSpec); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	// Create server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	// Start server
	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("backend", cfg.Store.Backend).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

func newStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "file":
		return fileStore.New(cfg.Store.FilePath), nil
	case "postgres":
		db, err := postgresStore.NewDB(cfg.Store.Postgres)
		if err != nil {
			return nil, err
		}
		return postgresStore.New(db)
	case "redis":
		return redisstore.New(cfg.Store.Redis)
	case "github":
		return githubStore.New(cfg.Store.GitHub), nil
	case "memory":
		return memoryStore.New(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func newNotifier(cfg *config.Config) (notifier.Notifier, error) {
	switch cfg.Notifier.Sink {
	case "webhook":
		return webhook.New(cfg.Notifier.Webhook), nil
	case "email":
		return emailNotifier.New(cfg.Notifier.Email), nil
	default:
		return nil, fmt.Errorf("unknown notifier sink %q", cfg.Notifier.Sink)
	}
}
