package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/ndagijimanapazo/ikaze-backend/internal/config"
	"github.com/ndagijimanapazo/ikaze-backend/internal/handlers"
	"github.com/ndagijimanapazo/ikaze-backend/internal/middleware"
	"github.com/ndagijimanapazo/ikaze-backend/internal/realtime"
	"github.com/ndagijimanapazo/ikaze-backend/internal/services"
	"github.com/ndagijimanapazo/ikaze-backend/internal/storage"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, cfg *config.Config, store storage.Store, hub *realtime.Hub,
	otpService *services.OTPService, paymentService *services.PaymentService) {

	otpHandler := handlers.NewOTPHandler(otpService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, cfg.StripeWebhookSecret)
	notificationHandler := handlers.NewNotificationHandler(store)

	protected := middleware.Protected(cfg.JWTSecret)
	adminOnly := middleware.AdminOnly()

	// ========== REALTIME ==========
	app.Use("/ws", realtime.UpgradeRequired)
	app.Get("/ws", realtime.Handler(hub, cfg.JWTSecret))

	// ========== OTP ROUTES ==========
	otp := app.Group("/otp")
	otp.Post("/request-reset", otpHandler.RequestPasswordReset)
	otp.Post("/request-verification", otpHandler.RequestEmailVerification)
	otp.Post("/request-registration", otpHandler.RequestRegistrationVerification)
	otp.Post("/verify", otpHandler.Verify)
	otp.Post("/resend", otpHandler.Resend)

	// ========== PAYMENT ROUTES ==========
	payment := app.Group("/payment", protected)
	payment.Post("/", paymentHandler.ProcessPayment)
	payment.Get("/", adminOnly, paymentHandler.GetAllPayments)
	payment.Get("/:id", paymentHandler.GetPayment)
	payment.Put("/:id/status", adminOnly, paymentHandler.UpdateStatus)
	payment.Get("/:id/receipt", paymentHandler.GetReceipt)

	// ========== NOTIFICATION ROUTES ==========
	notifications := app.Group("/notifications", protected)
	notifications.Get("/", notificationHandler.List)
	notifications.Put("/read-all", notificationHandler.MarkAllRead)
	notifications.Put("/:id/read", notificationHandler.MarkRead)

	// ========== WEBHOOK ROUTES ==========
	if cfg.StripeWebhookSecret == "" && cfg.IsDevelopment() {
		log.Println("⚠️  Stripe webhook signature validation DISABLED for development")
	}
	app.Post("/webhook/stripe", paymentHandler.HandleStripeWebhook)
}
