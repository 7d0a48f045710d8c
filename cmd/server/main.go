package main

import (
	"log"
	"net/http"

	config "sales-dashboard-api/configs"
	"sales-dashboard-api/pkg/handlers"
	"sales-dashboard-api/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	cfg := config.LoadConfig()

	r := gin.Default()

	monitoringService := services.NewMonitoringService()
	loaderService := services.NewLoaderService()
	filterService := services.NewFilterService()
	metricsService := services.NewMetricsService()
	aggregatorService := services.NewAggregatorService()
	advisorService := services.NewAdvisorService()
	reportService := services.NewReportService()

	dashboardHandler := handlers.NewDashboardHandler(
		loaderService,
		filterService,
		metricsService,
		aggregatorService,
		advisorService,
		reportService,
		cfg.MaxUploadMB,
	)
	adminHandler := handlers.NewAdminHandler(cfg)
	monitoringHandler := handlers.NewMonitoringHandler(monitoringService)

	r.Use(monitoringService.LoggingMiddleware())
	r.Use(cors.Default())

	authMiddleware := func(apiKey string) gin.HandlerFunc {
		return func(c *gin.Context) {
			if apiKey == "" || apiKey == "default_secret_key" {
				c.Next()
				return
			}
			providedKey := c.GetHeader("X-API-KEY")
			if providedKey != apiKey {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			c.Next()
		}
	}

	r.GET("/health", handlers.HealthCheck)

	v1 := r.Group("/api/v1")
	v1.Use(authMiddleware(cfg.APIKey))
	{
		admin := v1.Group("/admin")
		{
			admin.GET("/health-status", adminHandler.GetHealthStatus)
			admin.POST("/maintenance/start", adminHandler.StartMaintenance)
			admin.POST("/maintenance/stop", adminHandler.StopMaintenance)
		}

		monitoring := v1.Group("/monitoring")
		{
			monitoring.GET("/logs", monitoringHandler.GetLogs)
		}

		dashboard := v1.Group("/dashboard")
		{
			dashboard.POST("/analyze", dashboardHandler.Analyze)
			dashboard.POST("/report/text", dashboardHandler.DownloadTextReport)
			dashboard.POST("/report/pdf", dashboardHandler.DownloadPDFReport)
		}
	}

	log.Printf("Starting sales dashboard API server on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
