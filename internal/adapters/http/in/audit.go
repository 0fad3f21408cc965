package in

import (
	"github.com/gofiber/fiber/v2"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	libhttp "github.com/padak/keboola-storage-duckdb-sub001/common/net/http"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/services/query"
)

// AuditHandler exposes the append-only audit trail every state-changing
// command writes an entry to, win or lose.
type AuditHandler struct {
	Query *query.UseCase
}

// ListAuditLog lists a project's audit trail, newest first, bounded by an
// optional limit query parameter.
func (handler *AuditHandler) ListAuditLog(c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.list_audit_log")
	defer span.End()

	projectID := c.Params("id")
	if err := libhttp.RequireProject(c, projectID); err != nil {
		return err
	}

	params := libhttp.ValidateParameters(c.Queries())

	records, err := handler.Query.ListAuditLog(ctx, projectID, int64(params.Limit))
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to list audit log", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.OK(c, records)
}
