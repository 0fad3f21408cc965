package http

import (
	"github.com/gofiber/fiber/v2"
)

// OK writes a 200 response with the given payload as its JSON body.
func OK(c *fiber.Ctx, payload any) error {
	return c.Status(fiber.StatusOK).JSON(payload)
}

// Created writes a 201 response with the given payload as its JSON body.
func Created(c *fiber.Ctx, payload any) error {
	return c.Status(fiber.StatusCreated).JSON(payload)
}

// Accepted writes a 202 response, used for operations that complete async
// (large imports, restores).
func Accepted(c *fiber.Ctx, payload any) error {
	return c.Status(fiber.StatusAccepted).JSON(payload)
}

// NoContent writes an empty 204 response.
func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

// BadRequest writes a 400 response built from err, which is expected to be
// one of ValidationKnownFieldsError, ValidationUnknownFieldsError, or a type
// whose Error() is already operator-safe.
func BadRequest(c *fiber.Ctx, err error) error {
	switch e := err.(type) {
	case ValidationKnownFieldsError:
		return c.Status(fiber.StatusBadRequest).JSON(e)
	case *ValidationKnownFieldsError:
		return c.Status(fiber.StatusBadRequest).JSON(e)
	case ValidationUnknownFieldsError:
		return c.Status(fiber.StatusBadRequest).JSON(e)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(ResponseError{Message: err.Error()})
	}
}

// Unauthorized writes a 401 response: missing or invalid bearer credential.
func Unauthorized(c *fiber.Ctx, code, title, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ResponseError{Code: code, Title: title, Message: message})
}

// Forbidden writes a 403 response: credential valid but not authorized for
// the target resource.
func Forbidden(c *fiber.Ctx, code, title, message string) error {
	return c.Status(fiber.StatusForbidden).JSON(ResponseError{Code: code, Title: title, Message: message})
}

// NotFound writes a 404 response.
func NotFound(c *fiber.Ctx, code, title, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(ResponseError{Code: code, Title: title, Message: message})
}

// Conflict writes a 409 response.
func Conflict(c *fiber.Ctx, code, title, message string) error {
	return c.Status(fiber.StatusConflict).JSON(ResponseError{Code: code, Title: title, Message: message})
}

// UnprocessableEntity writes a 422 response.
func UnprocessableEntity(c *fiber.Ctx, code, title, message string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(ResponseError{Code: code, Title: title, Message: message})
}

// TooManyRequests writes a 429 response: quota or file-descriptor exhaustion.
func TooManyRequests(c *fiber.Ctx, code, title, message string) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(ResponseError{Code: code, Title: title, Message: message})
}

// InternalServerError writes a 500 response.
func InternalServerError(c *fiber.Ctx, code, title, message string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(ResponseError{Code: code, Title: title, Message: message})
}

// ServiceUnavailable writes a 503 response: a transient engine/IO condition
// where retrying may succeed.
func ServiceUnavailable(c *fiber.Ctx, code, title, message string) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(ResponseError{Code: code, Title: title, Message: message})
}

// GatewayTimeout writes a 504 response: the operation exceeded its deadline.
func GatewayTimeout(c *fiber.Ctx, code, title, message string) error {
	return c.Status(fiber.StatusGatewayTimeout).JSON(ResponseError{Code: code, Title: title, Message: message})
}

// JSONResponseError writes a ResponseError with status 400 when it carries an
// error code, and 500 when its Code is empty.
func JSONResponseError(c *fiber.Ctx, err ResponseError) error {
	status := fiber.StatusInternalServerError
	if err.Code != "" {
		status = fiber.StatusBadRequest
	}

	return c.Status(status).JSON(err)
}
