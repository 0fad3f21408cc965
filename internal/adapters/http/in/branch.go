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

// BranchHandler exposes the copy-on-write branch overlay: every branch but
// "default" starts empty and lazily copies tables from the production
// branch on first write.
type BranchHandler struct {
	Command *command.UseCase
	Query   *query.UseCase
}

// CreateBranch creates a new branch under a project.
func (handler *BranchHandler) CreateBranch(p any, c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.create_branch")
	defer span.End()

	projectID := c.Params("id")
	if err := libhttp.RequireProject(c, projectID); err != nil {
		return err
	}

	payload := p.(*mmodel.CreateBranchInput)

	principal, _ := libhttp.PrincipalFromContext(c)
	createdBy := principal.KeyID

	branch, err := handler.Command.CreateBranch(ctx, requestIDFromContext(c), projectID, createdBy, payload)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to create branch", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.Created(c, branch)
}

// DeleteBranch drops a branch's overlay files. No merge into the
// production branch ever happens: this discards branch-local tables.
func (handler *BranchHandler) DeleteBranch(c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.delete_branch")
	defer span.End()

	projectID := c.Params("id")
	if err := libhttp.RequireProject(c, projectID); err != nil {
		return err
	}

	branchID := c.Params("bid")

	if err := handler.Command.DeleteBranch(ctx, requestIDFromContext(c), projectID, branchID); err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to delete branch", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.NoContent(c)
}

// GetBranch retrieves one branch.
func (handler *BranchHandler) GetBranch(c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.get_branch")
	defer span.End()

	projectID := c.Params("id")
	if err := libhttp.RequireProject(c, projectID); err != nil {
		return err
	}

	branch, err := handler.Query.GetBranch(ctx, projectID, c.Params("bid"))
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to retrieve branch", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.OK(c, branch)
}

// ListBranches lists every branch of a project.
func (handler *BranchHandler) ListBranches(c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.list_branches")
	defer span.End()

	projectID := c.Params("id")
	if err := libhttp.RequireProject(c, projectID); err != nil {
		return err
	}

	branches, err := handler.Query.ListBranches(ctx, projectID)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to list branches", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.OK(c, branches)
}
