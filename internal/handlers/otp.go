package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/ndagijimanapazo/ikaze-backend/internal/models"
	"github.com/ndagijimanapazo/ikaze-backend/internal/services"
)

// OTPHandler handles OTP-related requests
type OTPHandler struct {
	svc *services.OTPService
}

// NewOTPHandler creates a new OTP handler
func NewOTPHandler(svc *services.OTPService) *OTPHandler {
	return &OTPHandler{svc: svc}
}

// platformFromHeader reads the platform header, defaulting to web.
func platformFromHeader(c *fiber.Ctx, header string) string {
	platform := c.Get(header)
	if !models.ValidPlatform(platform) {
		return models.PlatformWeb
	}
	return platform
}

// RequestPasswordReset handles POST /otp/request-reset
func (h *OTPHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email is required",
		})
	}

	platform := platformFromHeader(c, "platform")
	if err := h.svc.RequestPasswordReset(req.Email, platform); err != nil {
		return otpError(c, err)
	}

	return c.JSON(fiber.Map{"message": "OTP sent successfully"})
}

// RequestEmailVerification handles POST /otp/request-verification
func (h *OTPHandler) RequestEmailVerification(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email is required",
		})
	}

	platform := platformFromHeader(c, "platform")
	if err := h.svc.RequestEmailVerification(req.Email, platform); err != nil {
		return otpError(c, err)
	}

	return c.JSON(fiber.Map{"message": "OTP sent successfully"})
}

// RequestRegistrationVerification handles POST /otp/request-registration.
// Same flow as request-verification with the shorter registration
// expiry window.
func (h *OTPHandler) RequestRegistrationVerification(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email is required",
		})
	}

	platform := platformFromHeader(c, "platform")
	if err := h.svc.RequestRegistrationVerification(req.Email, platform); err != nil {
		return otpError(c, err)
	}

	return c.JSON(fiber.Map{"message": "OTP sent successfully"})
}

// Verify handles POST /otp/verify
func (h *OTPHandler) Verify(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
		Type  string `json:"type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Email == "" || req.Code == "" || !models.ValidOTPPurpose(req.Type) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email, code and type are required",
		})
	}

	if err := h.svc.Verify(req.Email, req.Code, req.Type); err != nil {
		return otpError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "OTP verified successfully",
		"isValid": true,
	})
}

// Resend handles POST /otp/resend
func (h *OTPHandler) Resend(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
		Type  string `json:"type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Email == "" || !models.ValidOTPPurpose(req.Type) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email and type are required",
		})
	}

	platform := platformFromHeader(c, "platform")
	if err := h.svc.Resend(req.Email, req.Type, platform); err != nil {
		return otpError(c, err)
	}

	return c.JSON(fiber.Map{"message": "OTP resent successfully"})
}

// otpError maps service errors to responses. The invalid/expired case
// stays generic on purpose; anything unexpected is logged and hidden.
func otpError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidOTP):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid or expired OTP",
		})
	case errors.Is(err, services.ErrEmailAlreadyVerified):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email is already verified",
		})
	case isNotFound(err):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "User not found",
		})
	default:
		log.Printf("OTP request failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process OTP request",
		})
	}
}
