// Package api assembles the HTTP router.
package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/planchais/chantiers-backend/internal/api/handlers"
	"github.com/planchais/chantiers-backend/internal/api/middleware"
	"github.com/planchais/chantiers-backend/internal/config"
	"github.com/planchais/chantiers-backend/internal/logger"
	"github.com/planchais/chantiers-backend/internal/service"
)

type RouterDeps struct {
	Config   *config.Config
	Services *service.Services
	// DatabaseReady is false when no database was configured; data and
	// auth routes then answer 503.
	DatabaseReady bool
	Health        *handlers.HealthHandler
	WebSocket     gin.HandlerFunc
	// Registry receives the HTTP metrics. A fresh registry is used when nil.
	Registry *prometheus.Registry
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	// X-Forwarded-For is only honoured from configured proxies; the
	// team-login throttle is keyed on the client IP.
	if err := r.SetTrustedProxies(deps.Config.TrustedProxies); err != nil {
		logger.Warn("⚠️ [HTTP] invalid TRUSTED_PROXIES, trusting none", "error", err)
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery(), middleware.RequestLogger())

	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	r.Use(middleware.NewMetrics(reg).Handler())

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	health := deps.Health
	if health == nil {
		health = &handlers.HealthHandler{}
	}
	r.GET("/health", health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	h := handlers.NewHandlers(deps.Services)
	requireDB := middleware.RequireDB(deps.DatabaseReady)
	authenticated := middleware.AuthMiddleware(deps.Services.Auth)
	writer := middleware.RequireWriter()

	api := r.Group("/api")
	{
		// ============================================
		// Public routes (no auth required)
		// ============================================
		auth := api.Group("/auth", requireDB)
		{
			auth.POST("/register", middleware.OptionalAuth(deps.Services.Auth), h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/team-login", h.Auth.TeamLogin)
			auth.POST("/refresh", h.Auth.RefreshToken)
			auth.POST("/logout", h.Auth.Logout)
			auth.GET("/me", authenticated, h.Auth.Me)
		}

		if deps.WebSocket != nil {
			api.GET("/ws", deps.WebSocket)
		}

		// ============================================
		// Protected routes, no database needed
		// ============================================
		tools := api.Group("", authenticated)
		{
			tools.POST("/quotes/preview", h.Quote.Preview)
			tools.POST("/quotes/pdf", h.Quote.PDF)
			tools.POST("/quotes/send-email", writer, h.Quote.SendEmail)
			tools.POST("/estimation/analyze", writer, h.Estimation.Analyze)
			tools.POST("/visualization/generate", writer, h.Estimation.Visualize)
		}

		// ============================================
		// Data routes (database + auth)
		// ============================================
		data := api.Group("", requireDB, authenticated)
		{
			clients := data.Group("/clients")
			{
				clients.GET("", h.Client.List)
				clients.POST("", writer, h.Client.Create)
				clients.GET("/:id", h.Client.Get)
				clients.PUT("/:id", writer, h.Client.Update)
				clients.DELETE("/:id", writer, h.Client.Delete)
			}

			chantiers := data.Group("/chantiers")
			{
				chantiers.GET("", h.Chantier.List)
				chantiers.POST("", writer, h.Chantier.Create)
				chantiers.GET("/:chantierId", withID("chantierId"), h.Chantier.Get)
				chantiers.PUT("/:chantierId", writer, withID("chantierId"), h.Chantier.Update)
				chantiers.DELETE("/:chantierId", writer, withID("chantierId"), h.Chantier.Delete)

				chantiers.GET("/:chantierId/team-members", h.Assignment.ListForChantier)
				chantiers.POST("/:chantierId/team-members", writer, h.Assignment.Create)
				chantiers.DELETE("/:chantierId/team-members/:assignmentId", writer, h.Assignment.Delete)
			}

			members := data.Group("/team-members")
			{
				members.GET("", h.TeamMember.List)
				members.POST("", writer, h.TeamMember.Create)
				members.GET("/:id", h.TeamMember.Get)
				members.PUT("/:id", writer, h.TeamMember.Update)
				members.DELETE("/:id", writer, h.TeamMember.Delete)
			}

			data.GET("/assignments", h.Assignment.List)
			data.GET("/planning", h.Planning.Month)
		}
	}

	return r
}

// withID exposes a differently named path parameter as :id, since gin
// requires one wildcard name per path segment.
func withID(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.AddParam("id", c.Param(name))
		c.Next()
	}
}
