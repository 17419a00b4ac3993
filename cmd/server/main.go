package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/yshiba/webqa/internal/api/handlers"
	"github.com/yshiba/webqa/internal/config"
	"github.com/yshiba/webqa/internal/database"
	"github.com/yshiba/webqa/internal/fetcher"
	"github.com/yshiba/webqa/internal/health"
	"github.com/yshiba/webqa/internal/middleware"
	"github.com/yshiba/webqa/internal/repository"
	"github.com/yshiba/webqa/internal/search"
	"github.com/yshiba/webqa/internal/services"
	"github.com/yshiba/webqa/pkg/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	logger := utils.GetLogger()
	logger.Info("Starting webqa server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if err := cfg.ValidateBrave(); err != nil {
		logger.WithError(err).Fatal("Search provider configuration validation failed")
	}

	// Initialize the backing store. Failure here is fatal: a server
	// without its cache is a broken deployment, not a degraded one.
	dbManager, err := database.NewManager(&database.Config{
		DatabaseURL: cfg.Database.URL,
		RedisURL:    cfg.Redis.URL,
		LogLevel:    os.Getenv("LOG_LEVEL"),
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database manager")
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// Wire the pipeline
	qaCache := repository.NewQACacheRepository(dbManager.DB)
	searchClient := search.NewClient(cfg.Brave.BaseURL, cfg.Brave.APIKey, cfg.Pipeline.WebRequestTimeout, logger)
	pageFetcher := fetcher.New(cfg.Pipeline.WebRequestTimeout, logger)
	answerService := services.NewAnswerService(
		qaCache,
		searchClient,
		pageFetcher,
		cfg.Pipeline.MaxContentURLs,
		cfg.Pipeline.MaxParagraphs,
		logger,
	)

	healthChecker := health.NewHealthChecker(dbManager, logger, cfg.Brave.BaseURL)

	askHandler := handlers.NewAskHandler(answerService, qaCache, logger)
	healthHandler := handlers.NewHealthHandler(healthChecker, logger)

	// Set up HTTP server
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())

	rateLimiter := middleware.NewRateLimiter(60)

	api := router.Group("/api/v1")
	api.Use(rateLimiter.RateLimit())
	{
		api.POST("/ask", askHandler.HandleAsk)
		api.GET("/answers", askHandler.HandleCachedAnswer)
		api.GET("/health", healthHandler.HandleHealth)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Background health checks
	healthCtx, stopHealth := context.WithCancel(context.Background())
	defer stopHealth()
	go healthChecker.PeriodicHealthCheck(healthCtx, 30*time.Second)

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}
