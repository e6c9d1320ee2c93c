package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/pulsecraft/marketing-engine-backend/internal/handlers"
	"github.com/pulsecraft/marketing-engine-backend/internal/middleware"
	"github.com/pulsecraft/marketing-engine-backend/internal/services"
)

// SetupRouter configures the Gin router with the campaign API
func SetupRouter(orchestrator *services.Orchestrator, hub *services.ProgressHub) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// Use middleware
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	campaignHandler := handlers.NewCampaignHandler(orchestrator, hub)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	logrus.Info("Swagger UI endpoint registered at /swagger/index.html")

	// API v1 routes
	api := r.Group("/api/v1")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
				"time":   time.Now().Format(time.RFC3339),
			})
		})

		// Campaign routes
		campaigns := api.Group("/campaigns")
		{
			campaigns.POST("", campaignHandler.CreateCampaign)
			campaigns.GET("", campaignHandler.ListCampaigns)
			campaigns.GET("/:id/status", campaignHandler.GetCampaignStatus)
			campaigns.GET("/:id/result", campaignHandler.GetCampaignResult)
			campaigns.GET("/:id/progress", campaignHandler.GetCampaignProgress)
			campaigns.GET("/:id/progress/stream", campaignHandler.StreamCampaignProgress)
			campaigns.GET("/:id/export", campaignHandler.ExportCampaign)
		}
	}

	return r
}
