package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	googleauth "signing-backend/internal/auth"
	"signing-backend/internal/documents"
	"signing-backend/internal/projects"
	"signing-backend/internal/services/health"
	"signing-backend/internal/shared/config"
	"signing-backend/internal/shared/metrics"
	"signing-backend/internal/shared/server/middleware"
	"signing-backend/internal/shared/server/respond"
	"signing-backend/internal/shared/telemetry"
	"signing-backend/internal/signatures"
	"signing-backend/internal/signrequests"
	"signing-backend/internal/users"
)

const (
	apiPrefix       = "/api/v1"
	publicRateGroup = "PUBLIC_SIGNING"
)

// RouterDeps holds the handlers that the router needs. Nil handlers are
// skipped.
type RouterDeps struct {
	Config             config.Config
	Health             *health.Service
	UserHandler        *users.Handler
	ProjectHandler     *projects.Handler
	DocumentHandler    *documents.Handler
	SignatureHandler   *signatures.Handler
	SignRequestHandler *signrequests.Handler
	PublicSigning      *signrequests.PublicHandler
	PublicSigningPaths []string
	GoogleAuth         *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "dev" || deps.Config.Env == "local" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	// Only listed proxies may set the client IP through forwarding headers.
	if err := r.SetTrustedProxies(deps.Config.TrustedProxies); err != nil {
		telemetry.Error("router.trusted_proxies_invalid", map[string]any{
			"proxies": deps.Config.TrustedProxies,
			"error":   err,
		})
		_ = r.SetTrustedProxies(nil)
	}

	publicPrefixes := []string{
		apiPrefix + "/health",
		apiPrefix + "/auth/",
		"/metrics",
	}
	for _, p := range deps.PublicSigningPaths {
		publicPrefixes = append(publicPrefixes, apiPrefix+p)
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(publicPrefixes...),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group(apiPrefix)
	api.GET("/health", func(c *gin.Context) {
		status := deps.Health.Check(c.Request.Context())
		code := http.StatusOK
		if !status.OK {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}

	// The signing page is unauthenticated, so it is throttled per client IP.
	if deps.PublicSigning != nil {
		public := api.Group("")
		public.Use(middleware.RateLimit(publicRateLimit(deps.Config)))
		deps.PublicSigning.RegisterRoutes(public)
	}

	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.ProjectHandler != nil {
		deps.ProjectHandler.RegisterRoutes(api)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}
	if deps.SignatureHandler != nil {
		deps.SignatureHandler.RegisterRoutes(api)
	}
	if deps.SignRequestHandler != nil {
		deps.SignRequestHandler.RegisterRoutes(api)
	}

	return r
}

func publicRateLimit(cfg config.Config) middleware.RateLimitConfig {
	rules := map[string]middleware.RateLimitRule{}
	if cfg.PublicRateLimitRPS > 0 && cfg.PublicRateLimitBurst > 0 {
		rules[publicRateGroup] = middleware.RateLimitRule{
			Rate:  cfg.PublicRateLimitRPS,
			Burst: cfg.PublicRateLimitBurst,
		}
	}
	return middleware.RateLimitConfig{
		Rules:        rules,
		DefaultGroup: publicRateGroup,
	}
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
