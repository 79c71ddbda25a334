package utils

import (
	"errors"

	"commitsonic/internal/errmsg"

	"github.com/gofiber/fiber/v3"
)

func Error(c fiber.Ctx, statusCode int, err error) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func StatusError(c fiber.Ctx, se errmsg.StatusError) error {
	return c.Status(se.StatusCode).JSON(fiber.Map{
		"error": se.Message,
	})
}

// AnyError renders err as a StatusError when it is one and as a 500 otherwise.
func AnyError(c fiber.Ctx, err error) error {
	var se errmsg.StatusError
	if errors.As(err, &se) {
		return StatusError(c, se)
	}
	return StatusError(c, errmsg.InternalServerError(err))
}
