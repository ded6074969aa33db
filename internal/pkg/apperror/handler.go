package apperror

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

// ErrorHandler is installed as fiber's ErrorHandler. It renders every error as
// {"error": code, "message": text} and never exposes internal error text.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var appErr *Error
	if errors.As(err, &appErr) {
		status := appErr.Status()
		if status >= fiber.StatusInternalServerError {
			fiberlog.Errorf("%s %s: %v", c.Method(), c.Path(), appErr)
		}
		return c.Status(status).JSON(fiber.Map{"error": string(appErr.Kind), "message": appErr.Message})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": codeForStatus(fiberErr.Code), "message": fiberErr.Message})
	}

	fiberlog.Errorf("%s %s: unhandled error: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   string(KindPersistence),
		"message": "Erreur interne du serveur",
	})
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return string(KindValidation)
	case fiber.StatusUnauthorized:
		return string(KindAuthentication)
	case fiber.StatusForbidden:
		return string(KindForbidden)
	case fiber.StatusNotFound:
		return string(KindNotFound)
	case fiber.StatusTooManyRequests:
		return "too_many_requests"
	default:
		if status >= fiber.StatusInternalServerError {
			return string(KindPersistence)
		}
		return "error"
	}
}
