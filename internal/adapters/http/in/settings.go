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

// SettingsHandler exposes the four-level snapshot-settings inheritance
// chain (system, project, bucket, table) for read and write at the three
// overridable levels. A DELETE at any level clears that level's override
// by writing a nil payload, restoring inheritance from the level above;
// there is no separate delete path in the catalog.
type SettingsHandler struct {
	Command *command.UseCase
	Query   *query.UseCase
}

// PutProjectSettings sets the project-level override.
func (handler *SettingsHandler) PutProjectSettings(p any, c *fiber.Ctx) error {
	return handler.put(c, p.(*mmodel.SnapshotSettings), c.Params("id"), mmodel.DefaultBranchID, "", "")
}

// GetProjectSettings resolves the effective settings at the project level.
func (handler *SettingsHandler) GetProjectSettings(c *fiber.Ctx) error {
	return handler.get(c, c.Params("id"), mmodel.DefaultBranchID, "", "")
}

// DeleteProjectSettings clears the project-level override.
func (handler *SettingsHandler) DeleteProjectSettings(c *fiber.Ctx) error {
	return handler.put(c, nil, c.Params("id"), mmodel.DefaultBranchID, "", "")
}

// PutBucketSettings sets the bucket-level override.
func (handler *SettingsHandler) PutBucketSettings(p any, c *fiber.Ctx) error {
	return handler.put(c, p.(*mmodel.SnapshotSettings), c.Params("id"), c.Params("bid"), c.Params("bucket"), "")
}

// GetBucketSettings resolves the effective settings at the bucket level.
func (handler *SettingsHandler) GetBucketSettings(c *fiber.Ctx) error {
	return handler.get(c, c.Params("id"), c.Params("bid"), c.Params("bucket"), "")
}

// DeleteBucketSettings clears the bucket-level override.
func (handler *SettingsHandler) DeleteBucketSettings(c *fiber.Ctx) error {
	return handler.put(c, nil, c.Params("id"), c.Params("bid"), c.Params("bucket"), "")
}

// PutTableSettings sets the table-level override.
func (handler *SettingsHandler) PutTableSettings(p any, c *fiber.Ctx) error {
	return handler.put(c, p.(*mmodel.SnapshotSettings), c.Params("id"), c.Params("bid"), c.Params("bucket"), c.Params("table"))
}

// GetTableSettings resolves the effective settings at the table level.
func (handler *SettingsHandler) GetTableSettings(c *fiber.Ctx) error {
	return handler.get(c, c.Params("id"), c.Params("bid"), c.Params("bucket"), c.Params("table"))
}

// DeleteTableSettings clears the table-level override.
func (handler *SettingsHandler) DeleteTableSettings(c *fiber.Ctx) error {
	return handler.put(c, nil, c.Params("id"), c.Params("bid"), c.Params("bucket"), c.Params("table"))
}

func (handler *SettingsHandler) put(c *fiber.Ctx, settings *mmodel.SnapshotSettings, projectID, branchID, bucket, table string) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.put_settings")
	defer span.End()

	if err := libhttp.RequireProject(c, projectID); err != nil {
		return err
	}

	requestID := requestIDFromContext(c)

	var err error

	switch {
	case table != "":
		err = handler.Command.PutTableSettings(ctx, requestID, projectID, branchID, bucket, table, settings)
	case bucket != "":
		err = handler.Command.PutBucketSettings(ctx, requestID, projectID, branchID, bucket, settings)
	default:
		err = handler.Command.PutProjectSettings(ctx, requestID, projectID, settings)
	}

	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to write snapshot settings", err)
		return libhttp.WithError(c, err)
	}

	return handler.get(c, projectID, branchID, bucket, table)
}

func (handler *SettingsHandler) get(c *fiber.Ctx, projectID, branchID, bucket, table string) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.get_settings")
	defer span.End()

	if err := libhttp.RequireProject(c, projectID); err != nil {
		return err
	}

	effective, err := handler.Query.GetEffectiveSettings(ctx, projectID, branchID, bucket, table)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to resolve effective snapshot settings", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.OK(c, effective)
}
