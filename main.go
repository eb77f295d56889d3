// main.go
//
// Entry point for the pebbles server.
// Startup order:
//   - Load config (.env + environment) and set the global log level.
//   - Open SQLite and apply embedded migrations.
//   - Pick the session store and random source.
//   - Serve HTTP until SIGINT/SIGTERM, then drain in-flight requests.

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
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pebbles/assets"
	"github.com/robalobadob/pebbles/internal/config"
	"github.com/robalobadob/pebbles/internal/database"
	"github.com/robalobadob/pebbles/internal/game"
	"github.com/robalobadob/pebbles/internal/httpserver"
	"github.com/robalobadob/pebbles/internal/store"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if !cfg.Production() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("open database")
	}
	defer db.Close()
	if err := database.Migrate(db, assets.Migrations()); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	var sessions store.Store
	switch cfg.SessionStore {
	case config.StoreMemory:
		sessions = store.NewMemoryStore()
	default:
		sessions = store.NewSQLiteStore(db)
	}

	var rng game.RandomSource = game.CryptoSource{}
	if cfg.RandomSalt != "" {
		rng = game.NewSaltedSource(cfg.RandomSalt)
		log.Warn().Msg("RANDOM_SALT set: games are reproducible")
	}

	srv := httpserver.New(cfg, sessions, db, rng)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.SessionStore).Msg("starting pebbles server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	log.Info().Msg("server stopped")
}
