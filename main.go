package main

import (
	"context"
	"log"
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"vpcrm/config"
	controller "vpcrm/controllers"
	"vpcrm/middleware"
	"vpcrm/routes"
	"vpcrm/utils"
	"vpcrm/worker"
)

func main() {
	logger := log.New(os.Stdout, "CRM: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			logger.Printf("Sentry init failed: %v", err)
		}
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Create Fiber app
	app := fiber.New()

	// Add CORS middleware
	app.Use(middleware.CORS())

	// Start the follow-up reminder worker
	workerLog := logrus.New()
	workerLog.SetFormatter(&logrus.JSONFormatter{})
	followUpWorker := worker.NewFollowUpWorker(config.DB, utils.NewMailer(), workerLog, config.AppConfig.FollowUpScanInterval)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go followUpWorker.Start(ctx)

	// Setup routes
	hub := controller.NewAssignmentHub()
	routes.SetupAuthRoutes(app, config.DB)
	routes.SetupAPIRoutes(app, config.DB, hub)

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "running",
			"version": "1.0.0",
		})
	})

	// Start server
	logger.Printf("🚀 Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
