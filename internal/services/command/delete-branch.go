package command

import (
	"context"
	"time"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
)

// DeleteBranch removes a branch's directory and catalog row. Branch-local
// changes are lost; callers needing to preserve them must export first.
func (uc *UseCase) DeleteBranch(ctx context.Context, requestID, projectID, branchID string) error {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "command.delete_branch")
	defer span.End()

	start := time.Now()

	logger.Infof("Trying to delete branch %s in project %s", branchID, projectID)

	err := uc.Overlay.DeleteBranch(ctx, projectID, branchID)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to delete branch directory", err)
		uc.emitAudit(ctx, requestID, projectID, "delete", "branch", branchID, start, err)

		return err
	}

	err = uc.BranchRepo.Delete(ctx, projectID, branchID)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to delete branch row", err)
	}

	uc.emitAudit(ctx, requestID, projectID, "delete", "branch", branchID, start, err)

	return err
}
