package router

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jwalitptl/records-portal/internal/handler"
	"github.com/jwalitptl/records-portal/internal/middleware"
	"github.com/jwalitptl/records-portal/internal/model"
	"github.com/jwalitptl/records-portal/internal/view"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	authH    Handler
	doctorH  []Handler
	patientH Handler
	h        *handler.Handler
	metrics  *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type RouterConfig struct {
	Mode           string
	AllowedOrigins []string
	RequestTimeout time.Duration
	TLS            bool
	MetricsPrefix  string
	Registerer     prometheus.Registerer
	Templates      *template.Template
}

// Handlers groups the page handlers by the role allowed to reach them.
type Handlers struct {
	Auth    Handler
	Doctor  []Handler
	Patient Handler
	Health  *handler.Handler
}

func NewRouter(auth *middleware.AuthMiddleware, handlers Handlers, config RouterConfig) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}

	engine := gin.New()
	engine.SetHTMLTemplate(config.Templates)

	r := &Router{
		engine:   engine,
		auth:     auth,
		authH:    handlers.Auth,
		doctorH:  handlers.Doctor,
		patientH: handlers.Patient,
		h:        handlers.Health,
		metrics:  initRouterMetrics(config.MetricsPrefix, config.Registerer),
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig(config.TLS)),
		middleware.CORS(config.AllowedOrigins),
		middleware.SizeLimit(middleware.DefaultSizeLimitConfig()),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.RequestTimeout}),
	)

	return r
}

func (r *Router) Setup() {
	r.setupHealthCheck(r.engine.Group("/health"))

	pages := r.engine.Group("")
	pages.Use(r.auth.LoadSession())

	pages.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, view.PathLogin)
	})
	r.authH.RegisterRoutes(pages)

	doctor := pages.Group("")
	doctor.Use(r.auth.RequireRole(model.RoleDoctor))
	for _, h := range r.doctorH {
		h.RegisterRoutes(doctor)
	}

	patient := pages.Group("")
	patient.Use(r.auth.RequireRole(model.RolePatient))
	r.patientH.RegisterRoutes(patient)

	r.engine.NoRoute(func(c *gin.Context) {
		c.HTML(http.StatusNotFound, handler.TemplateError, view.ErrorPage{
			Status:    http.StatusNotFound,
			Message:   "Page not found",
			RequestID: c.GetString(middleware.ContextRequestID),
		})
	})
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	rg.GET("/live", r.h.LivenessCheck)
	rg.GET("/ready", r.h.ReadinessCheck)
	r.engine.GET("/metrics", r.h.MetricsHandler)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string, reg prometheus.Registerer) *routerMetrics {
	if prefix == "" {
		prefix = "portal"
	}
	factory := promauto.With(reg)
	return &routerMetrics{
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
