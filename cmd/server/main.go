package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/candidate-assessment/internal/bootstrap"
	"github.com/stemsi/candidate-assessment/internal/config"
	"github.com/stemsi/candidate-assessment/internal/database"
	"github.com/stemsi/candidate-assessment/internal/handler"
	"github.com/stemsi/candidate-assessment/internal/logger"
	"github.com/stemsi/candidate-assessment/internal/middleware"
	"github.com/stemsi/candidate-assessment/internal/router"
	"github.com/stemsi/candidate-assessment/internal/seed"
	"github.com/stemsi/candidate-assessment/internal/service"
	"github.com/stemsi/candidate-assessment/internal/validator"
	"github.com/stemsi/candidate-assessment/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("driver", cfg.DBDriver).
		Str("log_level", cfg.LogLevel).
		Msg("Starting candidate assessment server")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Open Store ────────────────────────────────────────────────────
	store, closeStore, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer closeStore()

	if cfg.SeedOnBoot {
		if _, err := seed.Load(ctx, store, false, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed catalog")
		}
	}

	// ─── Connect to Redis (optional) ───────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// ─── Initialize Services ──────────────────────────────────────────
	catalogService := service.NewCatalogService(store.Catalog, rdb, cfg.CatalogCacheTTL, log)

	var queue service.ScoreQueue
	if rdb != nil {
		queue = worker.NewScoreQueue(rdb)
	}
	assessmentService := service.NewAssessmentService(
		store,
		catalogService,
		service.NewRandomShuffler(uint64(time.Now().UnixNano())),
		queue,
		log,
	)
	mediaService := service.NewMediaService(cfg)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Candidate:  handler.NewCandidateHandler(assessmentService),
		Assessment: handler.NewAssessmentHandler(assessmentService),
		Session:    handler.NewSessionHandler(assessmentService),
		Response:   handler.NewResponseHandler(assessmentService, mediaService),
		WS:         handler.NewWSHandler(assessmentService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})

	var limiter middleware.Limiter
	if rdb != nil {
		scoringWorker := worker.NewScoringWorker(assessmentService, store.Sessions, rdb, log)
		go func() {
			defer close(workerDone)
			scoringWorker.Start(workerCtx)
		}()
		limiter = middleware.NewRedisLimiter(rdb, cfg.RateLimitPerMinute, time.Minute)
	} else {
		close(workerDone)
		limiter = middleware.NewRateLimiter(workerCtx, cfg.RateLimitPerMinute, time.Minute)
	}

	// ─── Prewarm Redis Caches ─────────────────────────────────────────
	// Published catalog goes into Redis before accepting traffic.
	if err := catalogService.Prewarm(ctx); err != nil {
		log.Warn().Err(err).Msg("Cache prewarm failed")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg, limiter, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and let the scoring queue drain.
	workerCancel()
	select {
	case <-workerDone:
	case <-time.After(5 * time.Second):
		log.Warn().Msg("Scoring worker did not stop in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
