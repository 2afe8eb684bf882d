package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"

	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/adapters/http/middleware"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/adapters/http/routes"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/adapters/persistence/models"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/adapters/persistence/repositories"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/config"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/core/policy"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/core/services"

	_ "github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/docs" // Swagger docs
)

// @title Biblioteca API
// @version 1.0
// @description Library loan management API: catalog, borrowers and the loan lifecycle.

// @contact.name API Support
// @contact.email soporte@biblioteca.example.org

// @license.name MIT

// @host localhost:3000
// @BasePath /api/v1
// @schemes http https

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

	// Seed sample data in development
	if cfg.IsDev() {
		if err := config.NewSeeder(db).Run(); err != nil {
			log.Printf("⚠️ Warning: Failed to seed data: %v", err)
		}
	}

	// Start the reminder service for the daily overdue sweep (08:30)
	engine := policy.NewEngine(cfg.PolicyConfig())
	loanService := services.NewLoanService(
		repositories.NewTxManager(db),
		repositories.NewLoanRepository(db),
		repositories.NewBookRepository(db),
		repositories.NewBorrowerRepository(db),
		engine,
		cfg.Loans.LockWait,
	)
	reminderService := services.NewReminderService(loanService)
	reminderService.Start()
	defer reminderService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Biblioteca API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	routes.Setup(app, db, cfg)

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
