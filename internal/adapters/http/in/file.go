package in

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	libhttp "github.com/padak/keboola-storage-duckdb-sub001/common/net/http"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/services/command"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/services/query"
)

// FileHandler exposes user-uploaded blobs: staged uploads awaiting an
// import, and files a completed export registered.
type FileHandler struct {
	Command *command.UseCase
	Query   *query.UseCase
}

// UploadFile stages a multipart upload and registers it as a staging File
// row, pending promotion by a later import.
func (handler *FileHandler) UploadFile(c *fiber.Ctx) error {
	ctx := c.UserContext()

	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.upload_file")
	defer span.End()

	projectID := c.Params("id")
	if err := libhttp.RequireProject(c, projectID); err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to read multipart file field", err)
		return libhttp.WithError(c, err)
	}

	content, err := libhttp.GetFileFromHeader(c)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to read uploaded content", err)
		return libhttp.WithError(c, err)
	}

	contentType := fileHeader.Header.Get("Content-Type")

	logger.Infof("Request to upload file %s for project %s", fileHeader.Filename, projectID)

	file, err := handler.Command.UploadFile(ctx, requestIDFromContext(c), projectID, fileHeader.Filename, contentType, strings.NewReader(content))
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to stage uploaded file", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.Created(c, file)
}

// PromoteFile clears a file's staging flag once an import has consumed it.
func (handler *FileHandler) PromoteFile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.promote_file")
	defer span.End()

	projectID := c.Params("id")
	if err := libhttp.RequireProject(c, projectID); err != nil {
		return err
	}

	if err := handler.Command.PromoteFile(ctx, requestIDFromContext(c), projectID, c.Params("fid")); err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to promote file", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.NoContent(c)
}

// DeleteFile removes a file's catalog row and backing blob.
func (handler *FileHandler) DeleteFile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.delete_file")
	defer span.End()

	projectID := c.Params("id")
	if err := libhttp.RequireProject(c, projectID); err != nil {
		return err
	}

	if err := handler.Command.DeleteFile(ctx, requestIDFromContext(c), projectID, c.Params("fid")); err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to delete file", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.NoContent(c)
}

// GetFile retrieves one file's catalog row.
func (handler *FileHandler) GetFile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.get_file")
	defer span.End()

	projectID := c.Params("id")
	if err := libhttp.RequireProject(c, projectID); err != nil {
		return err
	}

	file, err := handler.Query.GetFile(ctx, c.Params("fid"))
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to retrieve file", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.OK(c, file)
}
