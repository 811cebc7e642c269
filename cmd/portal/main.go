package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/records-portal/internal/config"
	"github.com/jwalitptl/records-portal/internal/handler"
	authHandler "github.com/jwalitptl/records-portal/internal/handler/auth"
	"github.com/jwalitptl/records-portal/internal/handler/doctor"
	"github.com/jwalitptl/records-portal/internal/handler/patient"
	"github.com/jwalitptl/records-portal/internal/handler/record"
	"github.com/jwalitptl/records-portal/internal/middleware"
	"github.com/jwalitptl/records-portal/internal/recordsapi"
	"github.com/jwalitptl/records-portal/internal/router"
	authService "github.com/jwalitptl/records-portal/internal/service/auth"
	recordsService "github.com/jwalitptl/records-portal/internal/service/records"
	"github.com/jwalitptl/records-portal/internal/session"
	"github.com/jwalitptl/records-portal/internal/templates"
	"github.com/jwalitptl/records-portal/internal/view"
	"github.com/jwalitptl/records-portal/internal/worker"
	"github.com/jwalitptl/records-portal/pkg/logger"
	"github.com/jwalitptl/records-portal/pkg/metrics"
	"github.com/jwalitptl/records-portal/pkg/validator"
)

func main() {
	configPath := flag.String("config", "", "path to config.yml")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	l := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	var registerer prometheus.Registerer = reg
	if !cfg.Monitoring.PrometheusEnabled {
		// Collected but never served.
		registerer = prometheus.NewRegistry()
	}
	m := metrics.NewMetrics(cfg.Monitoring.MetricsPrefix, "", registerer)

	// Session store
	backend, err := session.Open(ctx, cfg)
	if err != nil {
		l.Fatal().Err(err).Str("backend", cfg.Session.Backend).Msg("failed to open session store")
	}
	defer backend.Close()
	store := session.Instrument(backend.Store, m)

	if backend.Postgres != nil && cfg.Session.CleanupInterval > 0 {
		janitor := worker.NewSessionCleanupWorker(backend.Postgres, cfg.Session.CleanupInterval, logger.Component(l, "janitor"))
		go janitor.Start(ctx)
	}

	tmpl, err := templates.Load()
	if err != nil {
		l.Fatal().Err(err).Msg("failed to parse templates")
	}

	// Records API client
	api := recordsapi.NewClient(recordsapi.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, logger.Component(l, "recordsapi"), m)

	// Services
	v := validator.New()
	authSvc := authService.NewService(api, store, v, cfg.Security.AllowedOrigins, logger.Component(l, "auth"), m)
	recordsSvc := recordsService.NewService(api, api, store, v, logger.Component(l, "records"))

	// Middleware
	authenticator := session.NewAuthenticator(store, logger.Component(l, "session"), m)
	authMiddleware := middleware.NewAuthMiddleware(store, authenticator, middleware.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.CookieSecure,
	}, l)

	var loginGuard []gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:      rate.Limit(cfg.RateLimit.RequestsPerSecond),
			Burst:     cfg.RateLimit.Burst,
			ClientTTL: cfg.RateLimit.ClientTTL,
		})
		loginGuard = append(loginGuard, limiter.RateLimit(handler.TemplateLogin))
	}

	// Setup router
	r := router.NewRouter(authMiddleware, router.Handlers{
		Auth: authHandler.NewHandler(authSvc, loginGuard...),
		Doctor: []router.Handler{
			doctor.NewHandler(recordsSvc),
			record.NewHandler(recordsSvc, view.ModeUpdate),
			record.NewHandler(recordsSvc, view.ModeDelete),
		},
		Patient: patient.NewHandler(recordsSvc),
		Health:  handler.NewHandler(store, reg),
	}, router.RouterConfig{
		Mode:           cfg.Server.Mode,
		AllowedOrigins: cfg.Security.AllowedOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
		TLS:            cfg.Session.CookieSecure,
		MetricsPrefix:  cfg.Monitoring.MetricsPrefix,
		Registerer:     registerer,
		Templates:      tmpl,
	})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		l.Info().Str("addr", srv.Addr).Str("api", cfg.API.BaseURL).Str("session_backend", cfg.Session.Backend).Msg("starting portal")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	l.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("server forced to shutdown")
	}

	l.Info().Msg("server exited properly")
}
