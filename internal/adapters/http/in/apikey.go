package in

import (
	"github.com/gofiber/fiber/v2"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	libhttp "github.com/padak/keboola-storage-duckdb-sub001/common/net/http"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/services/command"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/services/query"
)

// APIKeyHandler issues and revokes the per-project bearer keys the
// two-tier auth scheme authenticates requests against.
type APIKeyHandler struct {
	Command *command.UseCase
	Query   *query.UseCase
}

// CreateAPIKey mints a new project-scoped key, shown exactly once.
func (handler *APIKeyHandler) CreateAPIKey(c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.create_api_key")
	defer span.End()

	projectID := c.Params("id")
	if err := libhttp.RequireProject(c, projectID); err != nil {
		return err
	}

	out, err := handler.Command.CreateAPIKey(ctx, requestIDFromContext(c), projectID)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to create API key", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.Created(c, out)
}

// RevokeAPIKey marks a key revoked; the auth middleware rejects any further
// request bearing it.
func (handler *APIKeyHandler) RevokeAPIKey(c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.revoke_api_key")
	defer span.End()

	projectID := c.Params("id")
	if err := libhttp.RequireProject(c, projectID); err != nil {
		return err
	}

	if err := handler.Command.RevokeAPIKey(ctx, requestIDFromContext(c), projectID, c.Params("kid")); err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to revoke API key", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.NoContent(c)
}

// ListAPIKeys lists every key issued for a project (hashes withheld).
func (handler *APIKeyHandler) ListAPIKeys(c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.list_api_keys")
	defer span.End()

	projectID := c.Params("id")
	if err := libhttp.RequireProject(c, projectID); err != nil {
		return err
	}

	keys, err := handler.Query.ListAPIKeys(ctx, projectID)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to list API keys", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.OK(c, keys)
}
