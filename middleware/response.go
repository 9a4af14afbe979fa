package middleware

import (
	"errors"

	"github.com/Sean-Brix/RiderMind-sub003/apperr"
	"github.com/Sean-Brix/RiderMind-sub003/logger"

	"github.com/gofiber/fiber/v2"
)

func JsonResponse(c *fiber.Ctx, statusCode int, success bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"success": success,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "Validation failed!",
		"data":    errors,
		"error":   fiber.Map{"kind": "VALIDATION"},
	})
}

// ErrorResponse reports err with the status of its kind. Storage failures are
// logged and hidden behind a generic message; cancelled runs keep theirs.
func ErrorResponse(c *fiber.Ctx, log *logger.Logger, err error) error {
	status := apperr.Status(err)
	body := fiber.Map{"kind": apperr.KindOf(err)}
	message := err.Error()

	var ae *apperr.Error
	if errors.As(err, &ae) {
		if ae.Entity != "" {
			body["entity"] = ae.Entity
		}
		if ae.ID != "" {
			body["id"] = ae.ID
		}
		if ae.Detail != "" && ae.Kind != apperr.KindStorage {
			body["detail"] = ae.Detail
		}
	}
	switch {
	case apperr.KindOf(err) == apperr.KindCancelled:
		log.Warn("request cancelled", "method", c.Method(), "path", c.Path(), "error", err)
	case status >= fiber.StatusInternalServerError:
		log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		message = "Internal server error!"
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
		"error":   body,
	})
}
