package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"stockflow/internal/domain"
	applog "stockflow/internal/log"
)

// fail maps domain error kinds to HTTP status codes and writes a JSON error
// body. Uses errors.Is so wrapped sentinels match.
func fail(c *fiber.Ctx, action string, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInsufficientStock):
		status = fiber.StatusConflict
	}
	if status == fiber.StatusInternalServerError {
		applog.Error(c, action, err, nil)
		return c.Status(status).JSON(fiber.Map{"error": "internal error"})
	}
	applog.Info(c, action, map[string]any{"error": err.Error()})
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
