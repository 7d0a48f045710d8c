package main

import (
	"os"
	"testing"

	config "sales-dashboard-api/configs"
	"sales-dashboard-api/pkg/handlers"
	"sales-dashboard-api/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	godotenv.Load("../../.env")

	code := m.Run()

	os.Exit(code)
}

func TestApplicationSetup(t *testing.T) {
	cfg := config.LoadConfig()
	assert.NotNil(t, cfg, "Config should not be nil")
	assert.NotEmpty(t, cfg.Port)

	loader := services.NewLoaderService()
	assert.NotNil(t, loader)

	dashboardHandler := handlers.NewDashboardHandler(
		loader,
		services.NewFilterService(),
		services.NewMetricsService(),
		services.NewAggregatorService(),
		services.NewAdvisorService(),
		services.NewReportService(),
		cfg.MaxUploadMB,
	)
	assert.NotNil(t, dashboardHandler, "DashboardHandler should not be nil")

	adminHandler := handlers.NewAdminHandler(cfg)
	assert.NotNil(t, adminHandler)

	monitoringHandler := handlers.NewMonitoringHandler(services.NewMonitoringService())
	assert.NotNil(t, monitoringHandler)
}
