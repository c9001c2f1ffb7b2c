package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vhvplatform/go-webhook-scheduler/internal/handler"
	"github.com/vhvplatform/go-webhook-scheduler/internal/middleware"
	"github.com/vhvplatform/go-webhook-scheduler/internal/repository"
	"github.com/vhvplatform/go-webhook-scheduler/internal/service"
	"github.com/vhvplatform/go-webhook-scheduler/internal/shared/config"
	"github.com/vhvplatform/go-webhook-scheduler/internal/shared/logger"
	"github.com/vhvplatform/go-webhook-scheduler/internal/shared/mongodb"
	"github.com/vhvplatform/go-webhook-scheduler/internal/trigger"
)

func main() {
	// .env is optional; environment variables win either way
	_ = godotenv.Load()

	// Initialize logger
	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting Webhook Scheduler Service...")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration", "error", err)
	}

	// Initialize MongoDB
	mongoClient, err := mongodb.NewMongoClient(cfg.MongoDB.URI, cfg.MongoDB.Database)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	defer mongoClient.Disconnect(context.Background())

	// Initialize repositories
	targetRepo := repository.NewTargetRepository(mongoClient)
	scheduleRepo := repository.NewScheduleRepository(mongoClient)
	messageRepo := repository.NewMessageRepository(mongoClient)
	logRepo := repository.NewLogRepository(mongoClient)

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelIndexes()
	for _, ensure := range []func(context.Context) error{
		targetRepo.EnsureIndexes,
		scheduleRepo.EnsureIndexes,
		messageRepo.EnsureIndexes,
		logRepo.EnsureIndexes,
	} {
		if err := ensure(indexCtx); err != nil {
			log.Error("Failed to ensure indexes", "error", err)
		}
	}

	// Initialize delivery client and engines
	deliveryClient := service.NewDeliveryClient(time.Duration(cfg.Delivery.TimeoutSeconds)*time.Second, log)
	scheduleEngine := service.NewScheduleEngine(scheduleRepo, targetRepo, logRepo, deliveryClient, log)
	deferredEngine := service.NewDeferredEngine(messageRepo, targetRepo, logRepo, deliveryClient, log)

	// Initialize the periodic trigger
	ticker := trigger.NewTicker(scheduleEngine, deferredEngine, cfg.Trigger.TickSpec, log)
	if err := ticker.Start(); err != nil {
		log.Fatal("Failed to start trigger ticker", "error", err)
	}
	defer ticker.Stop()

	// Initialize HTTP handlers
	targetHandler := handler.NewTargetHandler(targetRepo, scheduleRepo, log)
	scheduleHandler := handler.NewScheduleHandler(scheduleRepo, targetRepo, log)
	messageHandler := handler.NewMessageHandler(deferredEngine, messageRepo, log)
	logHandler := handler.NewLogHandler(logRepo, log)
	triggerHandler := handler.NewTriggerHandler(scheduleEngine, deferredEngine, log)

	// Initialize rate limiter
	rateLimiter := middleware.NewClientRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(cors.Default())

	// Health check endpoints
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes with rate limiting
	v1 := router.Group("/api/v1")
	v1.Use(middleware.RateLimitMiddleware(rateLimiter))
	{
		// Webhook targets
		targets := v1.Group("/targets")
		{
			targets.POST("", targetHandler.CreateTarget)
			targets.GET("", targetHandler.GetTargets)
			targets.GET("/:id", targetHandler.GetTarget)
			targets.PUT("/:id", targetHandler.UpdateTarget)
			targets.DELETE("/:id", targetHandler.DeleteTarget)
			targets.POST("/:id/enable", targetHandler.EnableTarget)
			targets.POST("/:id/disable", targetHandler.DisableTarget)
		}

		// Recurring schedules
		schedules := v1.Group("/schedules")
		{
			schedules.POST("", scheduleHandler.CreateSchedule)
			schedules.GET("", scheduleHandler.GetSchedules)
			schedules.GET("/:id", scheduleHandler.GetSchedule)
			schedules.PUT("/:id", scheduleHandler.UpdateSchedule)
			schedules.DELETE("/:id", scheduleHandler.DeleteSchedule)
			schedules.POST("/:id/enable", scheduleHandler.EnableSchedule)
			schedules.POST("/:id/disable", scheduleHandler.DisableSchedule)
		}

		// Deferred one-off messages
		messages := v1.Group("/messages")
		{
			messages.POST("", messageHandler.CreateMessage)
			messages.GET("", messageHandler.GetMessages)
			messages.GET("/:id", messageHandler.GetMessage)
			messages.POST("/:id/cancel", messageHandler.CancelMessage)
		}

		// Delivery history
		v1.GET("/logs", logHandler.GetLogs)

		// Manual tick
		v1.POST("/trigger/run", triggerHandler.Run)
	}

	// Start HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("Webhook Scheduler Service started", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down Webhook Scheduler Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Webhook Scheduler Service stopped")
}
