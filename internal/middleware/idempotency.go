// Package middleware holds fiber middleware that sits between the router
// and the command/query handlers: idempotency replay today, the same place
// auth and correlation-id middleware are wired in routes.go.
package middleware

import (
	"github.com/gofiber/fiber/v2"

	libhttp "github.com/padak/keboola-storage-duckdb-sub001/common/net/http"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/idempotency"
)

// WithIdempotency de-duplicates requests carrying an X-Idempotency-Key
// header against store: a replay within the TTL window returns the first
// response byte-for-byte, including a cached failure, and a key reused
// against a different body is rejected as a conflict rather than silently
// served from the first request's cache.
func WithIdempotency(store *idempotency.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(libhttp.HeaderIdempotencyKey)
		if key == "" {
			return c.Next()
		}

		ctx := c.UserContext()
		method := c.Method()
		path := c.Path()
		bodyHash := idempotency.HashBody(c.Body())

		cached, err := store.Lookup(ctx, key, method, path, bodyHash)
		if err != nil {
			return libhttp.WithError(c, err)
		}

		if cached != nil {
			for k, v := range cached.Headers {
				c.Set(k, v)
			}

			c.Set(libhttp.HeaderIdempotencyHit, "true")

			return c.Status(cached.StatusCode).Send(cached.Body)
		}

		if err := c.Next(); err != nil {
			return err
		}

		resp := idempotency.CachedResponse{
			StatusCode: c.Response().StatusCode(),
			Body:       append([]byte(nil), c.Response().Body()...),
			Headers:    map[string]string{"Content-Type": string(c.Response().Header.ContentType())},
		}

		// The response already reached the client; a cache-write failure here
		// must not turn a successful request into an error response.
		_ = store.Save(ctx, key, method, path, bodyHash, resp)

		return nil
	}
}
