package command

import (
	"context"
	"time"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
)

// PromoteFile clears a file's Staging flag once an import has consumed it.
func (uc *UseCase) PromoteFile(ctx context.Context, requestID, projectID, fileID string) error {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "command.promote_file")
	defer span.End()

	start := time.Now()

	logger.Infof("Trying to promote file %s", fileID)

	err := uc.FileRepo.Promote(ctx, fileID)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to promote file", err)
	}

	uc.emitAudit(ctx, requestID, projectID, "promote", "file", fileID, start, err)

	return err
}
