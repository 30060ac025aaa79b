/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the clinic management server. Handles
  configuration, dependency wiring, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags and load config
  2. Open the configured document store
  3. Build the clinic containers
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Config file path (default: config.yaml if present)
  -port    Override the configured HTTP port

CONFIGURATION:
  config.yaml plus SENOTO_* environment overrides; see config/config.go
  for keys and defaults. The store driver is one of memory, sqlite, or
  postgres.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the store
  4. Exit

EXAMPLES:
  # Run with the default sqlite store
  ./server

  # Run against postgres
  SENOTO_STORE_DRIVER=postgres SENOTO_STORE_POSTGRES_DSN="..." ./server

  # Run on a different port
  ./server -port=3000

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Configuration keys
*/
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/senoto/clinic-engine/api"
	"github.com/senoto/clinic-engine/clinic"
	"github.com/senoto/clinic-engine/config"
	"github.com/senoto/clinic-engine/docstore"
	"github.com/senoto/clinic-engine/docstore/memory"
	"github.com/senoto/clinic-engine/docstore/postgres"
	"github.com/senoto/clinic-engine/docstore/sqlite"
	"github.com/senoto/clinic-engine/logger"
)

func main() {
	configPath := flag.String("config", "", "config file path")
	port := flag.Int("port", 0, "override HTTP port")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog := logger.New("info")
		bootLog.Fatal().Err(err).Msg("load config")
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	log := logger.New(cfg.Log.Level)

	store, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("open store")
	}
	defer closeStore()

	ctx := logger.WithContext(context.Background(), log)

	board, err := clinic.NewScheduleBoard(ctx, store, log)
	if err != nil {
		log.Fatal().Err(err).Msg("load schedule board")
	}
	defer board.Close()

	billing := clinic.NewBilling(store, log)
	patients := clinic.NewPatients(store, log)
	services := clinic.NewServices(store, log)
	expenses := clinic.NewExpenses(store, log)

	// Heals anything a crashed run left half-written, immediately and then
	// hourly.
	sweeper := clinic.NewSweeper(billing, log)
	sweeper.Start()
	defer sweeper.Stop()

	handler := api.NewHandler(board, billing, patients, services, expenses, cfg.Clinic.Name)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("clinic", cfg.Clinic.Name).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}

func openStore(cfg *config.Config) (docstore.Store, func(), error) {
	switch cfg.Store.Driver {
	case "memory":
		return memory.New(), func() {}, nil
	case "postgres":
		s, err := postgres.New(cfg.Store.PostgresDN)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	default: // sqlite, validated at load
		s, err := sqlite.New(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	}
}
