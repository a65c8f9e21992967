package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// HealthCheck returns service health for monitoring.
func HealthCheck(storageType string, connections func() int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"version": "1.0.0",
			"storage": storageType,
			"realtime": fiber.Map{
				"connections": connections(),
			},
		})
	}
}
