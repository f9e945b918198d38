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

	"github.com/kartikeycare/opd-booking/internal/api"
	"github.com/kartikeycare/opd-booking/internal/booking"
	"github.com/kartikeycare/opd-booking/internal/config"
	"github.com/kartikeycare/opd-booking/internal/db"
	redisclient "github.com/kartikeycare/opd-booking/internal/redis"
	"github.com/kartikeycare/opd-booking/internal/ticket"
)

const version = "1.0.0"

func main() {
	log := newLogger()
	log.Info().Msg("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}

	log.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Msg("configuration loaded")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	log.Info().Msg("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing redis")
		}
	}()
	log.Info().Msg("connected to Redis")

	repo := booking.NewPgRepository(pgPool)
	locker := redisclient.NewRedisBookingLocker(rdb, cfg.LockTTL)
	qrRenderer := ticket.NewQRRenderer()
	pdfRenderer := ticket.NewPDFRenderer(ticket.DefaultHospital(), qrRenderer)
	svc := booking.NewService(repo, locker, qrRenderer, log)

	router := api.NewRouter(api.RouterConfig{
		Service:        svc,
		PDFRenderer:    pdfRenderer,
		PgPool:         pgPool,
		Redis:          rdb,
		AllowedOrigins: cfg.AllowedOrigins,
		Env:            cfg.Env,
		Version:        version,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("http server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}

	log.Info().Msg("api-server stopped")
}

func newLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(os.Stdout).With().Timestamp().Str("service", "api-server").Logger()
}
