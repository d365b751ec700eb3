package routes

import (
	"xcr-courtage/internal/adapters/http/handlers"
	"xcr-courtage/internal/adapters/http/middleware"
	"xcr-courtage/internal/adapters/neoliane"
	"xcr-courtage/internal/adapters/persistence/repositories"
	"xcr-courtage/internal/config"
	"xcr-courtage/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, client *neoliane.Client, cfg *config.Config) {
	// Initialize repositories
	advisorRepo := repositories.NewAdvisorRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	leadRepo := repositories.NewLeadRepository(db)
	subscriptionRepo := repositories.NewSubscriptionRepository(db)

	// Initialize services
	authService := services.NewAuthService(advisorRepo, refreshTokenRepo, cfg)
	tarificationService := services.NewTarificationService(client, leadRepo)
	subscriptionService := services.NewSubscriptionService(client, subscriptionRepo)
	documentService := services.NewDocumentService(client)
	leadService := services.NewLeadService(leadRepo, subscriptionRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, client)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	quoteHandler := handlers.NewQuoteHandler(tarificationService)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)
	documentHandler := handlers.NewDocumentHandler(documentService, client)
	leadHandler := handlers.NewLeadHandler(leadService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.Health)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	// Auth routes (stricter rate limit on credential endpoints)
	auth := apiV1.Group("/auth")
	auth.Post("/register", middleware.AuthRateLimiter(), authHandler.Register)
	auth.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)
	auth.Post("/logout-all", middleware.AuthMiddleware(cfg), authHandler.LogoutAll)
	auth.Get("/me", middleware.AuthMiddleware(cfg), authHandler.Me)

	// Public quoting routes
	quotes := apiV1.Group("/quotes")
	quotes.Post("/tarification", middleware.QuoteRateLimiter(), quoteHandler.Tarify)

	// Public product catalog routes
	products := apiV1.Group("/products")
	products.Get("/", documentHandler.ListProducts)
	products.Get("/:id/documents", documentHandler.ListDocuments)
	products.Get("/:id/documents/:doc_id/download", documentHandler.DownloadDocument)

	// Public subscription flow routes
	subscriptions := apiV1.Group("/subscriptions")
	subscriptions.Post("/", subscriptionHandler.StartFlow)
	subscriptions.Get("/:id", subscriptionHandler.GetSubscription)
	subscriptions.Put("/:id/concern/:step_id", subscriptionHandler.SubmitConcern)
	subscriptions.Put("/:id/bank/:step_id", subscriptionHandler.SubmitBank)
	subscriptions.Post("/:id/documents", subscriptionHandler.UploadDocument)
	subscriptions.Get("/:id/prefilled", subscriptionHandler.PrefilledDocuments)

	contracts := apiV1.Group("/contracts")
	contracts.Put("/:id/validate", subscriptionHandler.ValidateContract)

	// Advisor management (admin only)
	advisors := apiV1.Group("/advisors", middleware.AuthMiddleware(cfg), middleware.AdminOnly())
	advisors.Get("/", authHandler.ListAdvisors)

	// Advisor routes (JWT protected)
	leads := apiV1.Group("/leads", middleware.AuthMiddleware(cfg))
	leads.Get("/", leadHandler.ListLeads)
	leads.Get("/:quote_ref", leadHandler.GetLead)

	flows := apiV1.Group("/flows", middleware.AuthMiddleware(cfg))
	flows.Get("/", leadHandler.ListFlows)
	flows.Get("/:id", leadHandler.GetFlow)
}
