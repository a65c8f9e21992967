package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/ndagijimanapazo/ikaze-backend/database"
	"github.com/ndagijimanapazo/ikaze-backend/internal/config"
	"github.com/ndagijimanapazo/ikaze-backend/internal/handlers"
	"github.com/ndagijimanapazo/ikaze-backend/internal/models"
	"github.com/ndagijimanapazo/ikaze-backend/internal/realtime"
	"github.com/ndagijimanapazo/ikaze-backend/internal/routes"
	"github.com/ndagijimanapazo/ikaze-backend/internal/services"
	"github.com/ndagijimanapazo/ikaze-backend/internal/storage"
)

func main() {
	// Load .env file for local development
	if err := godotenv.Load(".env"); err != nil {
		if err := godotenv.Load("environments/.env.development"); err != nil {
			log.Println("⚠️  No .env file found - checking environment variables")
		}
	}

	// Fails hard when JWT_SECRET or STRIPE_SECRET_KEY is missing
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	// Initialize storage
	var store storage.Store
	storageType := "PostgreSQL Database"

	if cfg.UseMemoryStore {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
		storageType = "In-Memory (Testing)"
	} else {
		log.Println("📦 Connecting to PostgreSQL database...")
		if err := database.Connect(); err != nil {
			log.Fatal(err)
		}

		log.Println("🔄 Running database migrations...")
		err := database.DB.AutoMigrate(
			&models.User{},
			&models.OTP{},
			&models.Payment{},
			&models.Booking{},
			&models.Notification{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
	}

	// Realtime hub - connection registry + notification routing
	hub := realtime.NewHub()

	// Initialize all services
	mailService := services.NewMailService(cfg)
	smsService := services.NewSMSService(cfg)
	gateway := services.NewStripeGateway(cfg.StripeSecretKey)
	otpService := services.NewOTPService(store, mailService, smsService, hub)
	paymentService := services.NewPaymentService(store, gateway, hub, cfg)

	log.Println("✅ All services initialized")

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: cfg.AppName,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, platform, x-platform",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Health check endpoint for monitoring
	app.Get("/health", handlers.HealthCheck(storageType, hub.Registry().Count))

	routes.SetupRoutes(app, cfg, store, hub, otpService, paymentService)

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	log.Println("========================================")
	log.Printf("🚀 %s starting on port %s", cfg.AppName, cfg.Port)
	log.Printf("📊 Storage: %s", storageType)
	log.Printf("🌍 Environment: %s", cfg.Environment)
	log.Println("========================================")

	log.Fatal(app.Listen(":" + cfg.Port))
}
