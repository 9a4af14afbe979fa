package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// DevOnly hides maintenance routes unless enabled is true.
func DevOnly(enabled bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !enabled {
			return JsonResponse(c, fiber.StatusNotFound, false, "Maintenance endpoints are disabled!", nil)
		}
		return c.Next()
	}
}
