package in

import (
	"github.com/gofiber/fiber/v2"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	cn "github.com/padak/keboola-storage-duckdb-sub001/common/constant"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mpostgres"
	libhttp "github.com/padak/keboola-storage-duckdb-sub001/common/net/http"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/services/command"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/services/query"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// ProjectHandler exposes the top-level tenant lifecycle: every other module
// is scoped under a project id.
type ProjectHandler struct {
	Command *command.UseCase
	Query   *query.UseCase
}

// CreateProject creates a new project and mints its per-project admin key.
func (handler *ProjectHandler) CreateProject(p any, c *fiber.Ctx) error {
	ctx := c.UserContext()

	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.create_project")
	defer span.End()

	payload := p.(*mmodel.CreateProjectInput)
	logger.Infof("Request to create project %s", payload.ID)

	requestID := requestIDFromContext(c)

	out, err := handler.Command.CreateProject(ctx, requestID, payload)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to create project", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.Created(c, out)
}

// UpdateProject applies a partial update to a project's mutable fields.
func (handler *ProjectHandler) UpdateProject(p any, c *fiber.Ctx) error {
	ctx := c.UserContext()

	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.update_project")
	defer span.End()

	id := c.Params("id")
	payload := p.(*mmodel.UpdateProjectInput)

	if err := libhttp.RequireProject(c, id); err != nil {
		return err
	}

	requestID := requestIDFromContext(c)

	project, err := handler.Command.UpdateProject(ctx, requestID, id, payload)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to update project", err)
		logger.Errorf("Failed to update project %s: %s", id, err.Error())

		return libhttp.WithError(c, err)
	}

	return libhttp.OK(c, project)
}

// GetProjectByID retrieves one project.
func (handler *ProjectHandler) GetProjectByID(c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.get_project_by_id")
	defer span.End()

	id := c.Params("id")

	if err := libhttp.RequireProject(c, id); err != nil {
		return err
	}

	project, err := handler.Query.GetProjectByID(ctx, id)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to retrieve project", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.OK(c, project)
}

// ListProjects lists projects; restricted to the admin principal.
func (handler *ProjectHandler) ListProjects(c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.list_projects")
	defer span.End()

	principal, ok := libhttp.PrincipalFromContext(c)
	if !ok || !principal.IsAdmin {
		return libhttp.WithError(c, common.ValidateBusinessError(cn.ErrKeyNotAuthorized, "auth"))
	}

	params := libhttp.ValidateParameters(c.Queries())

	projects, err := handler.Query.ListProjects(ctx, params.Limit, (params.Page-1)*params.Limit)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to list projects", err)
		return libhttp.WithError(c, err)
	}

	page := &mpostgres.Pagination{Page: params.Page, Limit: params.Limit}
	page.SetItems(projects)

	return libhttp.OK(c, page)
}

// DeleteProject removes a project and cascades its branches, buckets,
// tables, files and snapshots.
func (handler *ProjectHandler) DeleteProject(c *fiber.Ctx) error {
	ctx := c.UserContext()

	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.delete_project")
	defer span.End()

	id := c.Params("id")

	if err := libhttp.RequireProject(c, id); err != nil {
		return err
	}

	requestID := requestIDFromContext(c)

	if err := handler.Command.DeleteProject(ctx, requestID, id); err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to delete project", err)
		logger.Errorf("Failed to delete project %s: %s", id, err.Error())

		return libhttp.WithError(c, err)
	}

	return libhttp.NoContent(c)
}
