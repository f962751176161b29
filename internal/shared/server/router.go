package server

import (
	"github.com/gin-gonic/gin"

	"resume-builder/internal/account"
	googleauth "resume-builder/internal/auth"
	"resume-builder/internal/documents"
	"resume-builder/internal/draftsync"
	"resume-builder/internal/exports"
	"resume-builder/internal/kv"
	"resume-builder/internal/pending"
	"resume-builder/internal/services/health"
	"resume-builder/internal/sharing"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/server/middleware"
)

// PublicViewGroup is the rate limit group of the public share viewer.
const PublicViewGroup = "PUBLIC_VIEW"

// RouterDeps lists the handlers mounted by NewRouter. Nil handlers are
// skipped.
type RouterDeps struct {
	Config          config.Config
	Devices         kv.Store
	DraftSync       *draftsync.Service
	SessionGuard    *draftsync.SessionGuard
	Health          *health.Service
	DocumentHandler *documents.Handler
	ShareHandler    *sharing.Handler
	ExportHandler   *exports.Handler
	PendingHandler  *pending.Handler
	AccountHandler  *account.Handler
	GoogleAuth      *googleauth.GoogleService
	RateLimiter     *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logging(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	if deps.ShareHandler != nil {
		public := r.Group("")
		public.Use(middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				PublicViewGroup: {Rate: cfg.PublicViewRate, Burst: cfg.PublicViewBurst},
			},
			DefaultGroup: PublicViewGroup,
			KeyFor:       middleware.ClientIPKey,
			Limiter:      deps.RateLimiter,
		}))
		deps.ShareHandler.RegisterPublicRoutes(public)
	}

	api := r.Group("/api/v1")
	if deps.Health != nil {
		api.GET("/health", deps.Health.Handler())
	}
	api.Use(middleware.Auth(cfg.Env))
	if deps.DraftSync != nil && deps.Devices != nil {
		guard := deps.SessionGuard
		if guard == nil {
			guard = draftsync.NewSessionGuard(draftsync.DefaultSessionTTL)
		}
		api.Use(draftsync.EnsureSynced(deps.DraftSync, guard, deps.Devices))
	}

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	registerMeRoutes(api)
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}
	if deps.ShareHandler != nil {
		deps.ShareHandler.RegisterRoutes(api)
	}
	if deps.ExportHandler != nil {
		deps.ExportHandler.RegisterRoutes(api)
	}
	if deps.PendingHandler != nil {
		deps.PendingHandler.RegisterRoutes(api)
	}
	if deps.AccountHandler != nil {
		deps.AccountHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
