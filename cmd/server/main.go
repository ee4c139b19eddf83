package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"league-roster-service/internal/config"
	"league-roster-service/internal/core"
	"league-roster-service/internal/handler"
	"league-roster-service/internal/platform/kafka"
	"league-roster-service/internal/platform/sqlite"
	"league-roster-service/internal/server"
	"league-roster-service/internal/service"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found")
	}

	cfg := config.Load()
	log.Info().Str("listen", cfg.ListenAddr).Str("db", cfg.DBPath).
		Bool("kafka", cfg.KafkaEnabled).Msg("starting server")

	// Initialize the store.
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal().Err(err).Msg("failed to create database directory")
		}
	}
	repo, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer repo.Close()

	if err := repo.Migrate(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	log.Info().Msg("database migrations completed")

	// Notification transport: fail-safe NoOp when not configured.
	var notifier core.Notifier
	if cfg.KafkaEnabled {
		notifier = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	} else {
		notifier = kafka.NewNoOpProducer()
	}
	defer notifier.Close()

	svc := service.NewRoster(repo, notifier)
	dispatcher := handler.NewDispatcher(svc)

	// Operational HTTP sidecar.
	health := handler.NewHealthHandler(repo.DB())
	go func() {
		log.Info().Str("addr", cfg.HealthAddr).Msg("health endpoints listening")
		if err := http.ListenAndServe(cfg.HealthAddr, health.Routes()); err != nil {
			log.Error().Err(err).Msg("health server failed")
		}
	}()

	// Protocol server.
	srv := server.New(cfg.ListenAddr, dispatcher)
	if err := srv.Listen(); err != nil {
		log.Fatal().Err(err).Msg("failed to listen")
	}
	go func() {
		if err := srv.Serve(); err != nil {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt; no drain, just stop accepting and exit.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	if err := srv.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close listener")
	}
}
