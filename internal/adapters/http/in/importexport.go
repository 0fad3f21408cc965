package in

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	libhttp "github.com/padak/keboola-storage-duckdb-sub001/common/net/http"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/importexport"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/services/command"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/services/query"
)

// ImportExportHandler stages uploaded files into target tables and writes
// table contents back out, the two symmetric halves of the reconcile
// pipeline.
type ImportExportHandler struct {
	Command *command.UseCase
	Query   *query.UseCase
}

// ExportTableInput is the JSON body of POST .../export. Unlike an upload,
// an export never invents its own output path: the caller names one.
//
// swagger:model ExportTableInput
type ExportTableInput struct {
	Format           string   `json:"format" validate:"required,oneof=parquet csv"`
	Where            string   `json:"where,omitempty"`
	Columns          []string `json:"columns,omitempty"`
	OrderBy          string   `json:"orderBy,omitempty"`
	RowLimit         int64    `json:"rowLimit,omitempty"`
	Compression      string   `json:"compression,omitempty"`
	DestinationPath  string   `json:"destinationPath" validate:"required"`
}

func (handler *ImportExportHandler) scope(c *fiber.Ctx) (projectID, branchID, bucket, table string, err error) {
	projectID = c.Params("id")
	if err = libhttp.RequireProject(c, projectID); err != nil {
		return
	}

	branchID = c.Params("bid")
	bucket = c.Params("bucket")
	table = c.Params("table")

	return
}

// ImportTable reads a multipart file upload plus its reconcile options and
// runs the stage -> merge -> cleanup pipeline against the target table. The
// staged copy this handler creates is unlinked on every exit path: it is
// never registered as a durable File row.
func (handler *ImportExportHandler) ImportTable(c *fiber.Ctx) error {
	ctx := c.UserContext()

	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.import_table")
	defer span.End()

	projectID, branchID, bucket, table, err := handler.scope(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to read multipart file field", err)
		return libhttp.WithError(c, err)
	}

	stagingPath := handler.Command.Files.StagingPath(extOf(fileHeader.Filename))

	if err := c.SaveFile(fileHeader, stagingPath); err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to stage import source", err)
		return libhttp.WithError(c, err)
	}

	req := importexport.ImportRequest{
		Project:         projectID,
		Branch:          branchID,
		Bucket:          bucket,
		Table:           table,
		SourcePath:      stagingPath,
		Format:          importexport.SourceFormat(c.FormValue("format", string(importexport.FormatDelimited))),
		Incremental:     c.FormValue("incremental") == "true",
		DedupMode:       importexport.DedupMode(c.FormValue("dedupMode")),
		PrimaryKey:      splitCSV(c.FormValue("primaryKey")),
		ColumnMapping:   splitCSV(c.FormValue("columnMapping")),
		TombstoneColumn: c.FormValue("tombstoneColumn"),
		Delimited: importexport.DelimitedOptions{
			Delimiter:     firstNonEmpty(c.FormValue("delimiter"), ","),
			Quote:         firstNonEmpty(c.FormValue("quote"), "\""),
			Escape:        c.FormValue("escape"),
			HeaderPresent: c.FormValue("headerPresent", "true") == "true",
			NullLiteral:   c.FormValue("nullLiteral"),
		},
	}

	logger.Infof("Request to import %s into table %s/%s", fileHeader.Filename, bucket, table)

	result, err := handler.Command.ImportTable(ctx, requestIDFromContext(c), req)

	removeStagingFile(stagingPath)

	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to run import pipeline", err)
		return libhttp.WithError(c, err)
	}

	RowsProcessedTotal.WithLabelValues("import").Add(float64(result.RowsImported))

	return libhttp.OK(c, result)
}

// ExportTable writes a table's contents to the destination path named in
// the request body and registers the result as a non-staging File row.
func (handler *ImportExportHandler) ExportTable(p any, c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.export_table")
	defer span.End()

	projectID, branchID, bucket, table, err := handler.scope(c)
	if err != nil {
		return err
	}

	payload := p.(*ExportTableInput)

	req := importexport.ExportRequest{
		Project:         projectID,
		Branch:          branchID,
		Bucket:          bucket,
		Table:           table,
		Format:          importexport.ExportFormat(payload.Format),
		Where:           payload.Where,
		Columns:         payload.Columns,
		OrderBy:         payload.OrderBy,
		RowLimit:        payload.RowLimit,
		Compression:     payload.Compression,
		DestinationPath: payload.DestinationPath,
	}

	file, err := handler.Command.ExportTable(ctx, requestIDFromContext(c), req)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to run export pipeline", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.OK(c, file)
}

func extOf(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx == -1 {
		return ""
	}

	return name[idx:]
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	return parts
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}

// removeStagingFile unlinks the import's staging copy on every exit path,
// per the ownership rule that a staging file belongs to its request alone.
func removeStagingFile(path string) {
	_ = os.Remove(path)
}
