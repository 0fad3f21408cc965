// Package in holds the REST transport's fiber handlers: one file per
// module, each a thin translation from HTTP request to a command/query
// UseCase call and back to a JSON response.
package in

import (
	"github.com/gofiber/fiber/v2"
)

// requestHeaderCorrelationID mirrors the unexported constant WithCorrelationID
// sets in common/net/http; duplicated here since handlers live in a
// different package and the header name is part of the wire contract, not
// an implementation detail worth exporting a getter for.
const requestHeaderCorrelationID = "X-Correlation-ID"

// requestIDFromContext returns the correlation id WithCorrelationID attached
// to this request, used as the requestID every command operation threads
// through to its audit record.
func requestIDFromContext(c *fiber.Ctx) string {
	return c.GetRespHeader(requestHeaderCorrelationID)
}
