package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"audit-portal-go/internal/middleware"
)

// RouterConfig carries everything the HTTP surface needs
type RouterConfig struct {
	Region   *RegionHandler
	Audit    *AuditHandler
	Callback *CallbackHandler
	APIKey   *APIKeyHandler

	KeyAuthenticator middleware.KeyAuthenticator
	JWTSecret        string
	CallbackSecret   string
	AllowOrigins     []string
	Gatherer         prometheus.Gatherer
}

// NewRouter wires routes and middleware onto a gin engine
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	if len(cfg.AllowOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.APIKeyHeader},
			ExposeHeaders:    []string{"Content-Length", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           86400, // 24 hours
		}))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	// Public routes
	router.GET("/api/regions", cfg.Region.GetRegions)
	router.POST("/api/audits/callback", middleware.CallbackSecretMiddleware(cfg.CallbackSecret), cfg.Callback.HandleCallback)

	userAuth := middleware.APIKeyOrJWTMiddleware(cfg.KeyAuthenticator, cfg.JWTSecret)

	// Resolving checks region health, so callers must be signed in
	router.POST("/api/regions/resolve", userAuth, cfg.Region.ResolveRegion)

	// Audit routes accept API keys as well as dashboard sessions
	audits := router.Group("/api/audits")
	audits.Use(userAuth)
	{
		audits.POST("", cfg.Audit.SubmitAudit)
		audits.GET("", cfg.Audit.ListAudits)
		audits.GET("/:id", cfg.Audit.GetAudit)
	}

	// Key management is dashboard only
	keys := router.Group("/api/keys")
	keys.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		keys.GET("", cfg.APIKey.ListKeys)
		keys.POST("", cfg.APIKey.CreateKey)
		keys.DELETE("/:id", cfg.APIKey.RevokeKey)
	}

	return router
}
