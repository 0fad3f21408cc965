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

// TableHandler exposes the table catalog: creation, schema alteration,
// truncate/drop, preview and listing. Every route is scoped under a
// (project, branch, bucket) triple.
type TableHandler struct {
	Command *command.UseCase
	Query   *query.UseCase
}

func (handler *TableHandler) scope(c *fiber.Ctx) (projectID, branchID, bucket string, err error) {
	projectID = c.Params("id")
	if err = libhttp.RequireProject(c, projectID); err != nil {
		return
	}

	branchID = c.Params("bid")
	bucket = c.Params("bucket")

	return
}

// CreateTable creates a table's engine file and catalog row.
func (handler *TableHandler) CreateTable(p any, c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.create_table")
	defer span.End()

	projectID, branchID, bucket, err := handler.scope(c)
	if err != nil {
		return err
	}

	payload := p.(*mmodel.CreateTableInput)

	table, err := handler.Command.CreateTable(ctx, requestIDFromContext(c), projectID, branchID, bucket, payload)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to create table", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.Created(c, table)
}

// AlterTableAddColumn adds a new, always-nullable column.
func (handler *TableHandler) AlterTableAddColumn(p any, c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.alter_table_add_column")
	defer span.End()

	projectID, branchID, bucket, err := handler.scope(c)
	if err != nil {
		return err
	}

	payload := p.(*mmodel.AlterTableAddColumnInput)

	table, err := handler.Command.AlterTableAddColumn(ctx, requestIDFromContext(c), projectID, branchID, bucket, c.Params("table"), payload)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to add column", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.OK(c, table)
}

// AlterTableSetNotNull tightens a previously-added nullable column.
func (handler *TableHandler) AlterTableSetNotNull(p any, c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.alter_table_set_not_null")
	defer span.End()

	projectID, branchID, bucket, err := handler.scope(c)
	if err != nil {
		return err
	}

	payload := p.(*mmodel.AlterTableSetNotNullInput)

	table, err := handler.Command.AlterTableSetNotNull(ctx, requestIDFromContext(c), projectID, branchID, bucket, c.Params("table"), payload)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to set column not null", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.OK(c, table)
}

// AlterTableDropColumn drops a non primary-key column.
func (handler *TableHandler) AlterTableDropColumn(p any, c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.alter_table_drop_column")
	defer span.End()

	projectID, branchID, bucket, err := handler.scope(c)
	if err != nil {
		return err
	}

	payload := p.(*mmodel.AlterTableDropColumnInput)

	table, err := handler.Command.AlterTableDropColumn(ctx, requestIDFromContext(c), projectID, branchID, bucket, c.Params("table"), payload)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to drop column", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.OK(c, table)
}

// DropTable removes a table's engine file and marks its catalog row
// deleted, auto-snapshotting first if the effective settings require it.
func (handler *TableHandler) DropTable(c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.drop_table")
	defer span.End()

	projectID, branchID, bucket, err := handler.scope(c)
	if err != nil {
		return err
	}

	if err := handler.Command.DropTable(ctx, requestIDFromContext(c), projectID, branchID, bucket, c.Params("table")); err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to drop table", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.NoContent(c)
}

// TruncateTable removes every row from a table, preserving its schema.
func (handler *TableHandler) TruncateTable(c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.truncate_table")
	defer span.End()

	projectID, branchID, bucket, err := handler.scope(c)
	if err != nil {
		return err
	}

	if err := handler.Command.TruncateTable(ctx, requestIDFromContext(c), projectID, branchID, bucket, c.Params("table")); err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to truncate table", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.NoContent(c)
}

// GetTable retrieves one table's catalog row.
func (handler *TableHandler) GetTable(c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.get_table")
	defer span.End()

	projectID, branchID, bucket, err := handler.scope(c)
	if err != nil {
		return err
	}

	table, err := handler.Query.GetTable(ctx, projectID, branchID, bucket, c.Params("table"))
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to retrieve table", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.OK(c, table)
}

// ListTables lists every table in a bucket, optionally narrowed with a
// `name` query parameter (accent-insensitive substring match).
func (handler *TableHandler) ListTables(c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.list_tables")
	defer span.End()

	projectID, branchID, bucket, err := handler.scope(c)
	if err != nil {
		return err
	}

	tables, err := handler.Query.ListTables(ctx, projectID, branchID, bucket, c.Query("name"))
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to list tables", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.OK(c, tables)
}

// PreviewTable returns a bounded sample of a table's rows.
func (handler *TableHandler) PreviewTable(c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.preview_table")
	defer span.End()

	projectID, branchID, bucket, err := handler.scope(c)
	if err != nil {
		return err
	}

	preview, err := handler.Query.PreviewTable(ctx, projectID, branchID, bucket, c.Params("table"))
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to preview table", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.OK(c, preview)
}
