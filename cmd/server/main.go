package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/pulsecraft/marketing-engine-backend/docs"
	"github.com/pulsecraft/marketing-engine-backend/internal/assets"
	"github.com/pulsecraft/marketing-engine-backend/internal/capability"
	"github.com/pulsecraft/marketing-engine-backend/internal/database"
	"github.com/pulsecraft/marketing-engine-backend/internal/router"
	"github.com/pulsecraft/marketing-engine-backend/internal/services"
	"github.com/pulsecraft/marketing-engine-backend/internal/store"
	"github.com/pulsecraft/marketing-engine-backend/internal/utils"
)

// @title Marketing Engine API
// @version 1.0
// @description Campaign orchestration backend producing 7-day social media content calendars
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath /

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Set Swagger base path dynamically
	basePath := getEnv("BASE_PATH", "/")
	docs.SwaggerInfo.BasePath = basePath

	// Configure logging
	configureLogging()

	// Initialize Sentry
	utils.InitSentry()

	gateway := buildGateway()
	textgen := capability.NewHTTPTextGenerator(mustEnv("TEXTGEN_URL"))
	mediagen := capability.NewHTTPMediaGenerator(mustEnv("MEDIAGEN_URL"))
	chain := buildResearchChain()
	assetStore := buildAssetStore()
	cfg := services.ConfigFromEnv()

	hub := services.NewProgressHub()
	runner := services.NewAsyncRunner()
	orchestrator := services.NewOrchestrator(gateway, runner, hub, chain, textgen, mediagen, assetStore, cfg)

	// Queue mode distributes executions across instances; without it
	// campaigns run on in-process goroutines.
	if getEnv("QUEUE_MODE", "false") == "true" {
		queue, err := services.NewQueueService()
		if err != nil {
			logrus.Fatalf("QUEUE_MODE enabled but RabbitMQ unavailable: %v", err)
		}
		defer queue.Close()

		orchestrator.UseQueue(queue)
		if err := queue.StartWorker(orchestrator); err != nil {
			logrus.Fatalf("Failed to start campaign queue worker: %v", err)
		}
		defer queue.StopWorker()
		logrus.Info("Queue mode enabled, campaigns execute via RabbitMQ")
	}

	r := router.SetupRouter(orchestrator, hub)

	// Configure HTTP server
	port := getEnv("PORT", "8080")
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		logrus.Infof("Server starting on port %s", port)
		logrus.Infof("API Health Check: http://localhost:%s/api/v1/health", port)
		logrus.Infof("Swagger UI: http://localhost:%s/swagger/index.html", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	// Create a deadline for server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown the server
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited properly")
}

// buildGateway connects to Postgres, or falls back to the in-memory
// store when no DSN is configured so the server still runs locally.
func buildGateway() store.Gateway {
	if os.Getenv("DB_HOST") == "" && os.Getenv("DATABASE_URL") == "" {
		logrus.Warn("No database configured, using in-memory store (data is lost on restart)")
		return store.NewMemoryStore()
	}

	db, err := database.InitDB()
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	return store.NewGormStore(db)
}

// buildResearchChain orders research providers: the structured business
// data API first, the scraper as fallback.
func buildResearchChain() *capability.Chain {
	providers := []capability.ResearchProvider{
		capability.NewHTTPBusinessDataClient(mustEnv("BIZDATA_URL")),
	}
	if scraperURL := os.Getenv("SCRAPER_URL"); scraperURL != "" {
		providers = append(providers, capability.NewHTTPScraperClient(scraperURL))
	} else {
		logrus.Warn("SCRAPER_URL not set, research runs without a fallback provider")
	}
	return capability.NewChain(providers...)
}

func buildAssetStore() assets.Store {
	bucket := os.Getenv("ASSET_BUCKET")
	if bucket == "" {
		logrus.Warn("ASSET_BUCKET not set, generated media is kept in memory only")
		return assets.NewMemoryStore()
	}

	s3Store, err := assets.NewS3Store(context.Background(), bucket, getEnv("ASSET_PREFIX", "assets"))
	if err != nil {
		logrus.Fatalf("Failed to initialize S3 asset store: %v", err)
	}
	return s3Store
}

func configureLogging() {
	logLevel := getEnv("LOG_LEVEL", "info")
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		logrus.Fatalf("%s is required", key)
	}
	return value
}
