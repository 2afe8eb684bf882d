package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"

	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/adapters/http/handlers"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/adapters/http/middleware"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/adapters/persistence/repositories"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/config"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/core/policy"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/core/services"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	txManager := repositories.NewTxManager(db)
	bookRepo := repositories.NewBookRepository(db)
	borrowerRepo := repositories.NewBorrowerRepository(db)
	loanRepo := repositories.NewLoanRepository(db)

	// Policy engine carries the configured loan rules
	engine := policy.NewEngine(cfg.PolicyConfig())

	// Initialize services
	loanService := services.NewLoanService(txManager, loanRepo, bookRepo, borrowerRepo, engine, cfg.Loans.LockWait)
	bookService := services.NewBookService(bookRepo, loanRepo)
	borrowerService := services.NewBorrowerService(borrowerRepo, loanRepo)
	statsService := services.NewStatsService(db, engine)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	bookHandler := handlers.NewBookHandler(bookService)
	borrowerHandler := handlers.NewBorrowerHandler(borrowerService, loanService)
	loanHandler := handlers.NewLoanHandler(loanService)
	statsHandler := handlers.NewStatsHandler(statsService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	bookRoutes := apiV1.Group("/books")
	setupBookRoutes(bookRoutes, bookHandler)

	borrowerRoutes := apiV1.Group("/borrowers")
	setupBorrowerRoutes(borrowerRoutes, borrowerHandler)

	loanRoutes := apiV1.Group("/loans")
	setupLoanRoutes(loanRoutes, loanHandler)

	statsRoutes := apiV1.Group("/stats")
	setupStatsRoutes(statsRoutes, statsHandler)
}

// setupBookRoutes configures book catalog routes
func setupBookRoutes(router fiber.Router, handler *handlers.BookHandler) {
	router.Get("/", handler.List)
	router.Post("/", handler.Create)
	router.Get("/:id", handler.GetByID)
	router.Put("/:id", handler.Update)
	router.Delete("/:id", handler.Delete)
	router.Get("/:id/availability", handler.Availability)
}

// setupBorrowerRoutes configures borrower registry routes
func setupBorrowerRoutes(router fiber.Router, handler *handlers.BorrowerHandler) {
	router.Get("/", handler.List)
	router.Post("/", handler.Create)
	router.Get("/:id", handler.GetByID)
	router.Put("/:id", handler.Update)
	router.Delete("/:id", handler.Delete)
	router.Get("/:id/loans", handler.GetLoans)
}

// setupLoanRoutes configures loan routes. Mutations take row locks and
// run behind a stricter rate limiter.
func setupLoanRoutes(router fiber.Router, handler *handlers.LoanHandler) {
	router.Get("/", handler.List)
	router.Get("/overdue", handler.ListOverdue)
	router.Post("/", middleware.LoanRateLimiter(), handler.Create)
	router.Put("/:id/return", middleware.LoanRateLimiter(), handler.Return)
	router.Get("/:id", handler.GetByID)
	router.Get("/:id/status", handler.GetStatus)
	router.Delete("/:id", handler.Delete)
}

// setupStatsRoutes configures dashboard statistics routes
func setupStatsRoutes(router fiber.Router, handler *handlers.StatsHandler) {
	router.Get("/dashboard", handler.Dashboard)
}
