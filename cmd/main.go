package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arzan03/ProfileSeller/internal/config"
	"github.com/arzan03/ProfileSeller/internal/db"
	"github.com/arzan03/ProfileSeller/internal/server"
	"github.com/arzan03/ProfileSeller/internal/services"
	"github.com/arzan03/ProfileSeller/internal/storage"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 5 * time.Second

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if cfg.IsProduction() {
		log = zerolog.New(os.Stdout)
	} else {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	return log.Level(level).With().Timestamp().Logger()
}

func main() {
	cfg := config.Load()
	log := newLogger(cfg)

	if cfg.UsesDefaultSecret() {
		log.Warn().Msg("JWT_SECRET not set, tokens are signed with the development key")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	manager := db.NewManager(cfg.MongoURI, cfg.MongoDatabase, log)
	if err := manager.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}

	if err := manager.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("index bootstrap incomplete")
	}

	database, err := manager.Database()
	if err != nil {
		log.Fatal().Err(err).Msg("database unavailable")
	}

	tokens := services.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	deps := server.Dependencies{
		Auth:     services.NewAuthService(database, tokens),
		Users:    services.NewUserService(database),
		Profiles: services.NewProfileService(database),
		Orders:   services.NewOrderService(database),
		Database: manager,
		Tokens:   tokens,
	}

	// Initialize MinIO
	if cfg.Minio.Enabled() {
		store, err := storage.NewObjectStore(ctx, cfg.Minio, log)
		if err != nil {
			log.Error().Err(err).Msg("attachments disabled")
		} else {
			deps.Attachments = store
		}
	} else {
		log.Info().Msg("MINIO_ENDPOINT not set, attachments disabled")
	}

	app := server.New(cfg, deps, log)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down server")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().
		Str("port", cfg.Port).
		Str("environment", cfg.Env).
		Str("health", "/api/health").
		Msg("server starting")

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error().Err(err).Msg("server stopped")
	}

	disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := manager.Disconnect(disconnectCtx); err != nil {
		log.Error().Err(err).Msg("disconnect")
	}
}
