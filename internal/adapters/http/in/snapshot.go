package in

import (
	"github.com/gofiber/fiber/v2"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	libhttp "github.com/padak/keboola-storage-duckdb-sub001/common/net/http"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/services/command"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/services/query"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// SnapshotHandler exposes manual snapshot creation and restore on top of
// the automatic pre-destructive-operation snapshots the settings module
// triggers internally.
type SnapshotHandler struct {
	Command *command.UseCase
	Query   *query.UseCase
}

// CreateSnapshot takes a manual, on-demand snapshot of one table.
func (handler *SnapshotHandler) CreateSnapshot(p any, c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.create_snapshot")
	defer span.End()

	projectID := c.Params("id")
	if err := libhttp.RequireProject(c, projectID); err != nil {
		return err
	}

	payload := p.(*mmodel.CreateSnapshotInput)

	principal, _ := libhttp.PrincipalFromContext(c)

	snapshot, err := handler.Command.CreateSnapshot(ctx, requestIDFromContext(c), projectID, payload.BranchID, payload.Bucket, payload.Table, payload.Description, principal.KeyID)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to create snapshot", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.Created(c, snapshot)
}

// RestoreSnapshot restores a snapshot into a target (branch, bucket, table),
// defaulting to the snapshot's original location when the target fields are
// left blank.
func (handler *SnapshotHandler) RestoreSnapshot(p any, c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.restore_snapshot")
	defer span.End()

	projectID := c.Params("id")
	if err := libhttp.RequireProject(c, projectID); err != nil {
		return err
	}

	payload := p.(*mmodel.RestoreSnapshotInput)

	table, err := handler.Command.RestoreSnapshot(ctx, requestIDFromContext(c), projectID, c.Params("sid"), payload.BranchID, payload.Bucket, payload.TargetName)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to restore snapshot", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.OK(c, table)
}

// DeleteSnapshot removes a snapshot's catalog row and backing file.
func (handler *SnapshotHandler) DeleteSnapshot(c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.delete_snapshot")
	defer span.End()

	projectID := c.Params("id")
	if err := libhttp.RequireProject(c, projectID); err != nil {
		return err
	}

	if err := handler.Command.DeleteSnapshot(ctx, requestIDFromContext(c), projectID, c.Params("sid")); err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to delete snapshot", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.NoContent(c)
}

// GetSnapshot retrieves one snapshot.
func (handler *SnapshotHandler) GetSnapshot(c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.get_snapshot")
	defer span.End()

	projectID := c.Params("id")
	if err := libhttp.RequireProject(c, projectID); err != nil {
		return err
	}

	snapshot, err := handler.Query.GetSnapshot(ctx, c.Params("sid"))
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to retrieve snapshot", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.OK(c, snapshot)
}

// ListSnapshotsForTable lists every snapshot taken of one table.
func (handler *SnapshotHandler) ListSnapshotsForTable(c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.list_snapshots_for_table")
	defer span.End()

	projectID := c.Params("id")
	if err := libhttp.RequireProject(c, projectID); err != nil {
		return err
	}

	snapshots, err := handler.Query.ListSnapshotsForTable(ctx, projectID, c.Params("bucket"), c.Params("table"))
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to list snapshots", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.OK(c, snapshots)
}
