package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/classmark/attendance-server-go/internal/config"
	"github.com/classmark/attendance-server-go/internal/database"
	"github.com/classmark/attendance-server-go/internal/handler"
	"github.com/classmark/attendance-server-go/internal/jobs"
	"github.com/classmark/attendance-server-go/internal/middleware"
	"github.com/classmark/attendance-server-go/internal/redis"
	"github.com/classmark/attendance-server-go/internal/repository"
	"github.com/classmark/attendance-server-go/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	sessionRepo := repository.NewSessionRepository(db.DB)
	attendanceRepo := repository.NewAttendanceRepository(db.DB)
	instructorRepo := repository.NewInstructorRepository(db.DB)

	rateLimiter := service.NewRateLimiter(redisClient.Client)
	sessionService := service.NewSessionService(db, sessionRepo, attendanceRepo, cfg.SessionWindow())
	attendanceService := service.NewAttendanceService(sessionService, attendanceRepo)
	historyService := service.NewHistoryService(sessionRepo, attendanceRepo)
	instructorService := service.NewInstructorService(instructorRepo)

	instructorAuth := middleware.NewInstructorAuthMiddleware(instructorRepo)
	instructorRateLimit := middleware.NewInstructorRateLimitMiddleware(rateLimiter)
	checkInRateLimit := middleware.NewIPRateLimitMiddleware(
		rateLimiter, cfg.CheckInRateLimitPerIP, config.CheckInRateLimitWindow, "checkin",
	)
	adminAuth := middleware.NewAdminAuthMiddleware(cfg.AdminAPIKey)
	bodyLimit := middleware.NewBodyLimitMiddleware(0)

	sessionHandler := handler.NewSessionHandler(sessionService)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService)
	historyHandler := handler.NewHistoryHandler(historyService)
	adminHandler := handler.NewAdminHandler(instructorService)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimit.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Use(instructorAuth.Handler)
		r.Use(instructorRateLimit.Handler)
		r.Mount("/", sessionHandler.Routes())
	})

	r.Route("/v1/history", func(r chi.Router) {
		r.Use(instructorAuth.Handler)
		r.Use(instructorRateLimit.Handler)
		r.Mount("/", historyHandler.Routes())
	})

	// Check-in is the only unauthenticated write path; it is throttled
	// per source IP instead.
	r.Route("/v1/attendance", func(r chi.Router) {
		r.Use(checkInRateLimit.Handler)
		r.Mount("/", attendanceHandler.Routes())
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(adminAuth.Handler)
		r.Mount("/", adminHandler.Routes())
	})

	retireJob := jobs.NewRetireJob(sessionRepo, config.SessionRetireJobInterval)
	retireJob.Start()
	defer retireJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
