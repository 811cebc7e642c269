// Command janitor purges expired portal sessions from postgres. It is only
// needed when the portal itself runs with session.cleanup_interval=0.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/records-portal/internal/config"
	"github.com/jwalitptl/records-portal/internal/session"
	"github.com/jwalitptl/records-portal/internal/worker"
	"github.com/jwalitptl/records-portal/pkg/logger"
)

func setupHealthCheck(addr string, store *session.PostgresStore) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health check server failed")
		}
	}()
	return srv
}

func main() {
	configPath := flag.String("config", "", "path to config.yml")
	once := flag.Bool("once", false, "run a single cleanup pass and exit")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	l := logger.Component(logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty}), "janitor")

	if cfg.Session.Backend != "postgres" {
		l.Fatal().Str("backend", cfg.Session.Backend).Msg("janitor only serves the postgres session backend")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := session.Open(ctx, cfg)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to open session store")
	}
	defer backend.Close()

	interval := cfg.Session.CleanupInterval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	w := worker.NewSessionCleanupWorker(backend.Postgres, interval, l)

	if *once {
		if _, err := w.RunOnce(ctx); err != nil {
			l.Error().Err(err).Msg("failed to clean up sessions")
			os.Exit(1)
		}
		return
	}

	srv := setupHealthCheck(cfg.Monitoring.HealthAddr, backend.Postgres)
	l.Info().Dur("interval", interval).Msg("janitor started")
	w.Start(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	l.Info().Msg("janitor stopped")
}
