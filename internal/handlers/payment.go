package handlers

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/ndagijimanapazo/ikaze-backend/internal/models"
	"github.com/ndagijimanapazo/ikaze-backend/internal/services"
	"github.com/ndagijimanapazo/ikaze-backend/internal/storage"
)

// PaymentHandler handles payment-related requests
type PaymentHandler struct {
	svc           *services.PaymentService
	webhookSecret string
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(svc *services.PaymentService, webhookSecret string) *PaymentHandler {
	return &PaymentHandler{svc: svc, webhookSecret: webhookSecret}
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}

// ProcessPayment handles POST /payment
func (h *PaymentHandler) ProcessPayment(c *fiber.Ctx) error {
	var req models.PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.UserID == "" || req.BookingID == "" || req.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "User ID, booking ID and a positive amount are required",
		})
	}
	if !models.ValidPaymentMethod(req.Method) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid payment method",
		})
	}

	platform := platformFromHeader(c, "x-platform")
	result, err := h.svc.Process(c.Context(), &req, platform)
	if err != nil {
		log.Printf("Payment processing failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Payment processing failed",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// GetAllPayments handles GET /payment (admin only)
func (h *PaymentHandler) GetAllPayments(c *fiber.Ctx) error {
	platform := c.Get("x-platform")
	if platform != "" && !models.ValidPlatform(platform) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid platform",
		})
	}

	payments, err := h.svc.List(platform)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch payment records",
		})
	}

	return c.JSON(fiber.Map{
		"payments": payments,
		"count":    len(payments),
	})
}

// GetPayment handles GET /payment/:id
func (h *PaymentHandler) GetPayment(c *fiber.Ctx) error {
	payment, err := h.svc.Get(c.Params("id"))
	if err != nil {
		if isNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Payment not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch payment",
		})
	}
	return c.JSON(payment)
}

// UpdateStatus handles PUT /payment/:id/status (admin only)
func (h *PaymentHandler) UpdateStatus(c *fiber.Ctx) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if !models.ValidPaymentStatus(req.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid status value",
		})
	}

	payment, err := h.svc.UpdateStatus(c.Params("id"), req.Status)
	if err != nil {
		switch {
		case isNotFound(err):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Payment not found",
			})
		case errors.Is(err, services.ErrInvalidTransition):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Invalid payment status transition",
			})
		default:
			log.Printf("Payment status update failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update payment status",
			})
		}
	}

	return c.JSON(fiber.Map{
		"message": "Payment status updated successfully",
		"payment": payment,
	})
}

// GetReceipt handles GET /payment/:id/receipt
func (h *PaymentHandler) GetReceipt(c *fiber.Ctx) error {
	receipt, err := h.svc.GenerateReceipt(c.Params("id"))
	if err != nil {
		if isNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Payment not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate receipt",
		})
	}
	return c.JSON(receipt)
}

// HandleStripeWebhook handles POST /webhook/stripe. The signature is
// verified when a webhook secret is configured; without one the
// payload is trusted, which is only acceptable in development.
func (h *PaymentHandler) HandleStripeWebhook(c *fiber.Ctx) error {
	payload := c.Body()

	var event stripe.Event
	if h.webhookSecret != "" {
		var err error
		event, err = webhook.ConstructEvent(payload, c.Get("Stripe-Signature"), h.webhookSecret)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid signature",
			})
		}
	} else if err := json.Unmarshal(payload, &event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid payload",
		})
	}

	var intent stripe.PaymentIntent
	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid event payload",
			})
		}
		if err := h.svc.ProcessGatewayEvent(string(event.Type), intent.ID); err != nil {
			log.Printf("Webhook processing failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Webhook processing failed",
			})
		}
	default:
		log.Printf("Unhandled webhook event: %s", event.Type)
	}

	return c.JSON(fiber.Map{"received": true})
}
