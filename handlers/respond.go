package handlers

import (
	"errors"

	"party-snap-system/services"
	"party-snap-system/store"

	"github.com/gofiber/fiber/v2"
)

// fail maps service/store errors onto the response taxonomy. Everything
// surfaces as a user-visible message; nothing is retried here.
func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, store.ErrCodeInvalid):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid license code"})
	case errors.Is(err, store.ErrCodeUsed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "license code already used by another event"})
	case errors.Is(err, store.ErrAlreadyRejected):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "submission already rejected"})
	case errors.Is(err, services.ErrInvalidState):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidArgument):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrUpload):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "photo upload failed, please retry"})
	case errors.Is(err, store.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "conflicting update, please retry"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}
