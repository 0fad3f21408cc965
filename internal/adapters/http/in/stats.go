package in

import (
	"github.com/gofiber/fiber/v2"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	libhttp "github.com/padak/keboola-storage-duckdb-sub001/common/net/http"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/services/command"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/services/query"
)

// ProjectOpsHandler exposes project-wide maintenance operations: stats
// recomputed from disk, and the reconcile sweep that reconciles the
// catalog against what actually sits on the filesystem.
type ProjectOpsHandler struct {
	Command *command.UseCase
	Query   *query.UseCase
}

// GetProjectStats recomputes row counts and byte sizes directly from each
// table's engine file, never from the cached catalog counters.
func (handler *ProjectOpsHandler) GetProjectStats(c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.get_project_stats")
	defer span.End()

	projectID := c.Params("id")
	if err := libhttp.RequireProject(c, projectID); err != nil {
		return err
	}

	stats, err := handler.Query.GetProjectStats(ctx, projectID)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to compute project stats", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.OK(c, stats)
}

// ReconcileProject walks the catalog against the filesystem, rebuilding
// rows whose files reappeared and flagging rows whose files vanished. This
// mutates catalog state; DryRunReconcile below reports the same
// classification without touching it.
func (handler *ProjectOpsHandler) ReconcileProject(c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.reconcile_project")
	defer span.End()

	projectID := c.Params("id")
	if err := libhttp.RequireProject(c, projectID); err != nil {
		return err
	}

	report, err := handler.Command.ReconcileProject(ctx, requestIDFromContext(c), projectID)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to reconcile project", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.OK(c, report)
}

// DryRunReconcile reports the same classification ReconcileProject would
// apply, without mutating any catalog row.
func (handler *ProjectOpsHandler) DryRunReconcile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.dry_run_reconcile")
	defer span.End()

	projectID := c.Params("id")
	if err := libhttp.RequireProject(c, projectID); err != nil {
		return err
	}

	report, err := handler.Query.DryRunReconcile(ctx, projectID)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to dry-run reconcile", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.OK(c, report)
}
