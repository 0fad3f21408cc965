package command

import (
	"context"
	"time"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
)

// DeleteProject soft-deletes a project. Its default branch, buckets and
// tables remain on disk; only the catalog row is marked deleted.
func (uc *UseCase) DeleteProject(ctx context.Context, requestID, id string) error {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "command.delete_project")
	defer span.End()

	start := time.Now()

	logger.Infof("Trying to delete project: %s", id)

	err := uc.ProjectRepo.Delete(ctx, id)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to delete project", err)
	}

	uc.emitAudit(ctx, requestID, id, "delete", "project", id, start, err)

	return err
}
