package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tovakustatus-backend/internal/shared/middleware"
	"tovakustatus-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.ClientIPMiddleware(),
		middleware.Logger(),
		middleware.CORS(c.Config.App.CORSOrigins),
	)

	// Crawlers expect the sitemap at the site root.
	router.GET("/sitemap.xml", c.SitemapHandler.Serve)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))
		v1.GET("/sitemap.xml", c.SitemapHandler.Serve)

		admin := v1.Group("")
		admin.Use(middleware.AuthMiddleware(c.AuthService), middleware.AdminMiddleware())

		setupAuthRoutes(v1, admin, c)
		setupContentRoutes(v1, admin, c)
		setupNewsletterRoutes(v1, admin, c)
		setupSettingsRoutes(v1, admin, c)
		setupVisitorRoutes(v1, admin, c)

		admin.POST("/sitemap/publish", c.SitemapHandler.Publish)
	}

	return router
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(v1, admin *gin.RouterGroup, c *container.Container) {
	v1.POST("/auth/login", c.AuthHandler.Login)
	admin.POST("/auth/logout", c.AuthHandler.Logout)
	admin.GET("/auth/session", c.AuthHandler.Session)
}

// ========================================
// CONTENT ROUTES (talents, projects, events, blogs)
// ========================================
func setupContentRoutes(v1, admin *gin.RouterGroup, c *container.Container) {
	talents := c.TalentHandler
	v1.GET("/talents/all", talents.List)
	v1.GET("/talents/:id", talents.Get)
	v1.POST("/talents/:id/views", talents.RecordView)
	admin.POST("/talents", talents.Create)
	admin.PATCH("/talents/:id", talents.Update)
	admin.DELETE("/talents/:id", talents.Delete)

	projects := c.ProjectHandler
	v1.GET("/projects/all", projects.List)
	v1.GET("/projects/:id", projects.Get)
	admin.POST("/projects", projects.Create)
	admin.PATCH("/projects/:id", projects.Update)
	admin.DELETE("/projects/:id", projects.Delete)

	events := c.EventHandler
	v1.GET("/events/all", events.List)
	v1.GET("/events/status/:status", events.ListByStatus)
	v1.GET("/events/:id", events.Get)
	admin.POST("/events", events.Create)
	admin.PATCH("/events/:id", events.Update)
	admin.DELETE("/events/:id", events.Delete)

	blogs := c.BlogHandler
	v1.GET("/blogs/all", blogs.List)
	v1.GET("/blogs/:id", blogs.Get)
	v1.POST("/blogs/:id/views", blogs.RecordView)
	admin.POST("/blogs", blogs.Create)
	admin.PATCH("/blogs/:id", blogs.Update)
	admin.DELETE("/blogs/:id", blogs.Delete)
}

// ========================================
// NEWSLETTER ROUTES
// ========================================
func setupNewsletterRoutes(v1, admin *gin.RouterGroup, c *container.Container) {
	v1.POST("/newsletter", c.NewsletterHandler.Subscribe)
	admin.GET("/newsletter/all", c.NewsletterHandler.List)
	admin.GET("/newsletter/export", c.NewsletterHandler.Export)
	admin.DELETE("/newsletter/:id", c.NewsletterHandler.Delete)
}

// ========================================
// SETTINGS ROUTES
// ========================================
func setupSettingsRoutes(v1, admin *gin.RouterGroup, c *container.Container) {
	v1.GET("/settings", c.SettingsHandler.Get)
	admin.PUT("/settings", c.SettingsHandler.Replace)
	admin.PATCH("/settings", c.SettingsHandler.Patch)
}

// ========================================
// VISITOR ROUTES
// ========================================
func setupVisitorRoutes(v1, admin *gin.RouterGroup, c *container.Container) {
	v1.POST("/visitors", middleware.RateLimit(c.RateLimiter), c.VisitorHandler.Register)
	v1.GET("/visitors/:id", c.VisitorHandler.Get)
	admin.GET("/visitors/all", c.VisitorHandler.List)
	admin.PATCH("/visitors/:id", c.VisitorHandler.SetFlags)
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		storeStatus := "ok"
		statusCode := http.StatusOK
		if err := appCtx.Backend.Ping(ctx); err != nil {
			storeStatus = "unavailable: " + err.Error()
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, gin.H{
			"status":      http.StatusText(statusCode),
			"service":     appCtx.Config.App.Name,
			"version":     appCtx.Config.App.Version,
			"environment": appCtx.Config.App.Environment,
			"store": gin.H{
				"backend": appCtx.Config.Store.Backend,
				"status":  storeStatus,
			},
			"time": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
