package main

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"

	"lenslink_backend/internal/controller"
	"lenslink_backend/internal/middleware"
	"lenslink_backend/internal/model"
	"lenslink_backend/pkg/cron"
	"lenslink_backend/pkg/database"
	"lenslink_backend/pkg/email"
	"lenslink_backend/pkg/seed"
	"lenslink_backend/pkg/utils/storage"
)

func setupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Auth Routes
	auth := api.Group("/auth")
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)

	// Public Routes
	api.Get("/p/:username", controller.GetCreativeProfile)
	api.Get("/subscriptions/plans", controller.ListPlans)

	// Protected Routes
	protected := api.Group("/", middleware.AuthMiddleware())
	protected.Get("/me", controller.GetMe)
	protected.Get("/dashboard/stats", controller.GetDashboardStats)

	// Request routes
	requests := protected.Group("/requests")
	requests.Post("/", middleware.RequireRole(model.RoleClient), middleware.CheckRequestQuota(), controller.CreateRequest)
	requests.Get("/my", controller.ListMyRequests)
	requests.Get("/browse", middleware.RequireRole(model.RoleCreative), controller.BrowseRequests)
	requests.Get("/:id", controller.GetRequest)
	requests.Get("/:id/proposals", middleware.CheckRequestOwnership(), controller.GetRequestProposals)
	requests.Put("/:id/close", middleware.CheckRequestOwnership(), controller.CloseRequest)
	requests.Put("/:id/reopen", middleware.CheckRequestOwnership(), controller.ReopenRequest)
	requests.Put("/:id/status", middleware.RequireRole(model.RoleAdmin), middleware.CheckRequestOwnership(), controller.UpdateRequestStatus)
	requests.Delete("/:id", middleware.CheckRequestOwnership(), controller.DeleteRequest)

	// Proposal routes
	proposals := protected.Group("/proposals")
	proposals.Post("/", middleware.RequireRole(model.RoleCreative), controller.SubmitProposal)
	proposals.Get("/my", controller.GetMyProposals)
	proposals.Put("/:id", controller.UpdateProposal)
	proposals.Put("/:id/accept", controller.AcceptProposal)
	proposals.Put("/:id/reject", controller.RejectProposal)
	proposals.Put("/:id/withdraw", controller.WithdrawProposal)
	proposals.Post("/:id/contact-link", controller.GenerateContactLink)

	// Creative profile routes
	profiles := protected.Group("/profiles")
	profiles.Get("/me", controller.GetMyProfile)
	profiles.Put("/me", middleware.RequireRole(model.RoleCreative), controller.UpsertMyProfile)
	profiles.Post("/me/portfolio", middleware.RequireRole(model.RoleCreative), controller.UploadPortfolioImage)
	profiles.Delete("/me/portfolio", middleware.RequireRole(model.RoleCreative), controller.DeletePortfolioImage)

	// Subscription routes
	subscriptions := protected.Group("/subscriptions")
	subscriptions.Get("/my", controller.GetMySubscription)
	subscriptions.Post("/free", controller.CreateFreeSubscription)
	subscriptions.Post("/", controller.CreatePaidSubscription)
	subscriptions.Post("/upgrade", controller.UpgradeSubscription)
	subscriptions.Post("/cancel", controller.CancelSubscription)
	subscriptions.Post("/:id/cancel", middleware.RequireRole(model.RoleAdmin), controller.CancelSubscription)

	// Payment provider webhook
	api.Post("/webhook/paystack", controller.HandlePaymentWebhook)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if apiKey := os.Getenv("RESEND_API_KEY"); apiKey != "" {
		if err := email.InitEmailService(apiKey); err != nil {
			log.Fatal("Could not initialize email service:", err)
		}
	} else {
		log.Println("RESEND_API_KEY not set, emails disabled")
	}

	controller.InitAuthController()
	controller.InitRequestController()
	controller.InitProposalController()
	controller.InitSubscriptionController()
	cron.InitSubscriptionExpiryCron()
	cron.InitLifecycleSweepCron()

	if err := storage.InitStorage(); err != nil {
		log.Printf("Storage init warning: %v", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set in .env")
	}

	database.InitDB(dbURL)
	err := database.MigrateDatabase(
		&model.User{},
		&model.CreativeProfile{},
		&model.ServiceRequest{},
		&model.Proposal{},
		&model.Subscription{},
	)
	if err != nil {
		log.Printf("Migration warning: %v", err)
	}

	seed.SeedAdmin(database.DB)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal server error",
			})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New())

	setupRoutes(app)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("Server is running on port %s", port)
	log.Fatal(app.Listen(":" + port))
}
