package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"expertcof/internal/auth"
	"expertcof/internal/compare"
	"expertcof/internal/dashboard"
	"expertcof/internal/events"
	"expertcof/internal/exports"
	"expertcof/internal/history"
	"expertcof/internal/postal"
	"expertcof/internal/preferences"
	"expertcof/internal/profile"
	"expertcof/internal/services/health"
	sharedauth "expertcof/internal/shared/auth"
	"expertcof/internal/shared/config"
	"expertcof/internal/shared/metrics"
	"expertcof/internal/shared/server/middleware"
	"expertcof/internal/shared/server/respond"
	"expertcof/internal/usage"
	"expertcof/internal/users"
)

const (
	rateGroupUpload = "UPLOAD"
	rateGroupPostal = "POSTAL"
)

// RouterDeps carries the handlers mounted under /api/v1.
type RouterDeps struct {
	Config      config.Config
	Verifier    *sharedauth.Verifier
	Health      *health.Service
	Auth        *auth.Handler
	Users       *users.Handler
	Dashboard   *dashboard.Handler
	Usage       *usage.Handler
	History     *history.Handler
	Compare     *compare.Handler
	Exports     *exports.Handler
	Events      *events.Handler
	Profile     *profile.Handler
	Postal      *postal.Handler
	Preferences *preferences.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Verifier, "/api/v1/health", "/api/v1/auth/", "/api/v1/metrics"),
	)

	limiter := middleware.NewRateLimiter(nil)
	rule := middleware.RateLimitRule{Rate: deps.Config.RateLimitRPS, Burst: deps.Config.RateLimitBurst}
	limit := func(group string) gin.HandlerFunc {
		return middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    map[string]middleware.RateLimitRule{group: rule},
			GroupFor: func(*gin.Context) string { return group },
			Limiter:  limiter,
		})
	}

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		st := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !st.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, st)
	})
	api.GET("/metrics", metrics.Handler())

	if deps.Auth != nil {
		deps.Auth.RegisterRoutes(api)
	}
	if deps.Users != nil {
		deps.Users.RegisterRoutes(api)
	}
	if deps.Dashboard != nil {
		deps.Dashboard.RegisterRoutes(api, limit(rateGroupUpload))
	}
	if deps.Usage != nil {
		deps.Usage.RegisterRoutes(api)
	}
	if deps.History != nil {
		deps.History.RegisterRoutes(api)
	}
	if deps.Compare != nil {
		deps.Compare.RegisterRoutes(api)
	}
	if deps.Exports != nil {
		deps.Exports.RegisterRoutes(api)
	}
	if deps.Events != nil {
		deps.Events.RegisterRoutes(api)
	}
	if deps.Profile != nil {
		deps.Profile.RegisterRoutes(api)
	}
	if deps.Postal != nil {
		deps.Postal.RegisterRoutes(api, limit(rateGroupPostal))
	}
	if deps.Preferences != nil {
		deps.Preferences.RegisterRoutes(api)
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
