package query

import (
	"context"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// GetBranch retrieves a branch by its id.
func (uc *UseCase) GetBranch(ctx context.Context, projectID, branchID string) (*mmodel.Branch, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "query.get_branch")
	defer span.End()

	logger.Infof("Retrieving branch for id: %s", branchID)

	branch, err := uc.BranchRepo.GetBranch(ctx, projectID, branchID)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get branch", err)
		return nil, err
	}

	return branch, nil
}

// ListBranches returns every branch of a project.
func (uc *UseCase) ListBranches(ctx context.Context, projectID string) ([]*mmodel.Branch, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "query.list_branches")
	defer span.End()

	logger.Infof("Retrieving branches for project %s", projectID)

	branches, err := uc.BranchRepo.FindAll(ctx, projectID)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to list branches", err)
		return nil, err
	}

	return branches, nil
}
