package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	applog "storefront/internal/log"
)

// envelope is the uniform response shape: failures are returned, never
// thrown, and the message says whether to retry or fix the input.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respondOK(c *fiber.Ctx, message string, data any) error {
	return c.JSON(envelope{Success: true, Message: message, Data: data})
}

func respondCreated(c *fiber.Ctx, message string, data any) error {
	return c.Status(fiber.StatusCreated).JSON(envelope{Success: true, Message: message, Data: data})
}

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindValidation:
		return fiber.StatusBadRequest
	case domain.KindAuthorization:
		return fiber.StatusForbidden
	case domain.KindConflict, domain.KindStateViolation:
		return fiber.StatusConflict
	case domain.KindTransient:
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// fail maps a service error onto the envelope. Untyped errors are logged and
// masked; typed messages are already safe for callers.
func fail(c *fiber.Ctx, action string, err error) error {
	kind := domain.KindOf(err)
	message := err.Error()
	if kind == domain.KindInternal {
		applog.Error(c, action, err, nil)
		message = "Something went wrong. Please try again."
	}
	return c.Status(statusFor(kind)).JSON(envelope{Success: false, Message: message})
}
