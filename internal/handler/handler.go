package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/maxviazov/cricket-stats-service/internal/config"
	"github.com/maxviazov/cricket-stats-service/internal/service"
)

// Options tunes the middleware stack.
type Options struct {
	AllowOrigins      []string
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration
}

// OptionsFromConfig converts the seconds-based config section.
func OptionsFromConfig(cfg config.HTTPConfig) Options {
	return Options{
		AllowOrigins:      cfg.AllowOrigins,
		RateLimitEnabled:  cfg.RateLimitEnabled,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   time.Duration(cfg.RateLimitWindow) * time.Second,
		RequestTimeout:    time.Duration(cfg.RequestTimeout) * time.Second,
	}
}

// NewRouter builds the engine with recovery, logging and CORS, then mounts the routes.
func NewRouter(repo Pinger, querySvc service.QueryService, opts Options, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger), CORS(opts.AllowOrigins))
	Register(r, repo, querySvc, opts)
	return r
}

// Register mounts all public routes on the given engine.
func Register(r *gin.Engine, repo Pinger, querySvc service.QueryService, opts Options) {
	h := NewHealthHandler(repo)

	// Health probes
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	RegisterDocs(r)

	api := r.Group(APIV1Prefix)
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}

		queries := api.Group("")
		if opts.RateLimitEnabled {
			queries.Use(RateLimit(opts.RateLimitRequests, opts.RateLimitWindow))
		}
		queries.Use(Timeout(opts.RequestTimeout))
		NewQueryHandler(querySvc).Register(queries)
	}
}
