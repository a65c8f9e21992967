package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ndagijimanapazo/ikaze-backend/internal/auth"
	"github.com/ndagijimanapazo/ikaze-backend/internal/models"
)

// Locals keys populated by Protected
const (
	LocalUserID = "userId"
	LocalRole   = "role"
)

// Protected validates the bearer token and stores the caller identity
// in locals. Same secret and algorithm as the websocket handshake.
func Protected(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing or malformed token",
			})
		}

		claims, err := auth.ParseValidate(jwtSecret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals(LocalUserID, claims.Subject)
		c.Locals(LocalRole, claims.Role)
		return c.Next()
	}
}

// AdminOnly is the capability check performed ahead of admin routes.
// Must run after Protected.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalRole).(string)
		if role != models.RoleSystemAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Admin access required",
			})
		}
		return c.Next()
	}
}
