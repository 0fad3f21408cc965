package http

import (
	"errors"

	"github.com/padak/keboola-storage-duckdb-sub001/common"

	"github.com/gofiber/fiber/v2"
)

// ResponseError is the JSON envelope written for any dispatched error.
type ResponseError struct {
	Code    string `json:"code,omitempty"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message,omitempty"`
}

func (r ResponseError) Error() string {
	return r.Message
}

// ValidationKnownFieldsError records a validation failure for one or more
// known request fields.
type ValidationKnownFieldsError struct {
	EntityType string           `json:"entityType,omitempty"`
	Title      string           `json:"title,omitempty"`
	Code       string           `json:"code,omitempty"`
	Message    string           `json:"message,omitempty"`
	Fields     FieldValidations `json:"fields,omitempty"`
}

func (r ValidationKnownFieldsError) Error() string {
	return r.Message
}

// FieldValidations is a map of known fields and their validation errors.
type FieldValidations map[string]string

// ValidationUnknownFieldsError records request fields the schema does not
// recognize.
type ValidationUnknownFieldsError struct {
	EntityType string        `json:"entityType,omitempty"`
	Title      string        `json:"title,omitempty"`
	Code       string        `json:"code,omitempty"`
	Message    string        `json:"message,omitempty"`
	Fields     UnknownFields `json:"fields,omitempty"`
}

func (r ValidationUnknownFieldsError) Error() string {
	return r.Message
}

// UnknownFields maps an unrecognized field name to its submitted value.
type UnknownFields map[string]any

// WithError dispatches a typed error from common onto the matching HTTP
// status and JSON envelope. This is the single place the REST transport
// translates the nine-kind error taxonomy into status codes; the gRPC
// transport performs the analogous switch onto codes.Code.
func WithError(c *fiber.Ctx, err error) error {
	switch e := err.(type) {
	case common.EntityNotFoundError:
		return NotFound(c, e.Code, e.Title, e.Message)
	case common.EntityConflictError:
		return Conflict(c, e.Code, e.Title, e.Message)
	case common.ValidationError:
		return BadRequest(c, ValidationKnownFieldsError{
			Code:    e.Code,
			Title:   e.Title,
			Message: e.Message,
		})
	case common.UnauthenticatedError:
		return Unauthorized(c, e.Code, e.Title, e.Message)
	case common.ForbiddenError:
		return Forbidden(c, e.Code, e.Title, e.Message)
	case common.ResourceExhaustedError:
		return TooManyRequests(c, e.Code, e.Title, e.Message)
	case common.DeadlineExceededError:
		return GatewayTimeout(c, e.Code, e.Title, e.Message)
	case common.UnavailableError:
		return ServiceUnavailable(c, e.Code, e.Title, e.Message)
	case *ValidationKnownFieldsError:
		return BadRequest(c, *e)
	case ValidationKnownFieldsError:
		return BadRequest(c, e)
	case ValidationUnknownFieldsError:
		return BadRequest(c, e)
	case ResponseError:
		var rErr ResponseError
		_ = errors.As(err, &rErr)

		return JSONResponseError(c, rErr)
	default:
		var iErr common.InternalServerError
		_ = errors.As(common.ValidateInternalError(err, ""), &iErr)

		return InternalServerError(c, iErr.Code, iErr.Title, iErr.Message)
	}
}
