package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"xcr-courtage/internal/adapters/http/middleware"
	"xcr-courtage/internal/adapters/http/routes"
	"xcr-courtage/internal/adapters/neoliane"
	"xcr-courtage/internal/adapters/persistence/models"
	"xcr-courtage/internal/adapters/persistence/repositories"
	"xcr-courtage/internal/config"
	"xcr-courtage/internal/core/services"

	"github.com/gofiber/fiber/v2"

	_ "xcr-courtage/docs" // Swagger docs
)

// @title XCR Courtage API
// @version 1.0
// @description API de tarification et de souscription santé XCR Courtage
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@xcr-courtage.fr

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host api.xcr-courtage.fr
// @BasePath /api/v1
// @schemes https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed default admin advisor
	if err := config.NewSeeder(db).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed database: %v", err)
	}

	// Quoting proxy client
	client := neoliane.NewClient(cfg.Neoliane.ProxyURL, cfg.Neoliane.UserKey)

	// Start cron service (token purge + stale flow cleanup)
	cronService := services.NewCronService(
		repositories.NewRefreshTokenRepository(db),
		repositories.NewSubscriptionRepository(db),
	)
	cronService.Start()
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "XCR Courtage API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db, client and cfg for dependency injection)
	routes.Setup(app, db, client, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
