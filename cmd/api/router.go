package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pressline-backend/internal/shared/middleware"
	"pressline-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
	)

	v1 := router.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", healthCheckHandler(c))

		setupDomainRoutes(v1, c)
		setupCampaignRoutes(v1, c)
		setupPublicationRoutes(v1, c)
		setupAdminRoutes(v1, c)
	}

	return router
}

// ========================================
// DOMAIN ROUTES
// ========================================
func setupDomainRoutes(v1 *gin.RouterGroup, c *container.Container) {
	domains := v1.Group("/domains")
	domains.Use(middleware.OperatorAuth(c.JWTManager))
	{
		domains.POST("", c.DomainHandler.Register)
		domains.GET("", c.DomainHandler.List)
		domains.GET("/:id", c.DomainHandler.Get)
		domains.PUT("/:id/theme", c.DomainHandler.SetTheme)
		domains.POST("/:id/disable", c.DomainHandler.Disable)
		domains.GET("/:id/metrics", c.PublicationHandler.Metrics)
	}
}

// ========================================
// CAMPAIGN ROUTES
// ========================================
func setupCampaignRoutes(v1 *gin.RouterGroup, c *container.Container) {
	campaigns := v1.Group("/campaigns")
	campaigns.Use(middleware.OperatorAuth(c.JWTManager))
	{
		campaigns.POST("", c.CampaignHandler.Create)
		campaigns.GET("", c.CampaignHandler.List)
		campaigns.GET("/:id", c.CampaignHandler.Get)
		campaigns.POST("/:id/pause", c.CampaignHandler.Pause)
		campaigns.POST("/:id/resume", c.CampaignHandler.Resume)
	}
}

// ========================================
// PUBLICATION ROUTES
// ========================================
func setupPublicationRoutes(v1 *gin.RouterGroup, c *container.Container) {
	publications := v1.Group("/publications")
	publications.Use(middleware.OperatorAuth(c.JWTManager))
	{
		publications.POST("", c.PublicationHandler.PublishAdhoc)
		publications.GET("/:id", c.PublicationHandler.Get)
	}
}

// ========================================
// ADMIN ROUTES
// ========================================
func setupAdminRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("/admin")
	admin.Use(middleware.OperatorAuth(c.JWTManager))
	{
		admin.GET("/jobs", c.JobHandler.List)
		admin.GET("/jobs/:id", c.JobHandler.Get)
		admin.POST("/jobs/reclaim", c.JobHandler.Reclaim)
		admin.POST("/slug-migration", c.PublicationHandler.MigrateSlugs)
	}
}

// healthCheckHandler checks DB connectivity so load balancers see real health
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "DOWN",
				"error":  err.Error(),
			})
			return
		}

		ctx.JSON(http.StatusOK, gin.H{
			"status":  "UP",
			"service": c.Config.App.Name,
			"version": c.Config.App.Version,
		})
	}
}
