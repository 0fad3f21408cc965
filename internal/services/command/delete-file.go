package command

import (
	"context"
	"os"
	"time"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
)

// DeleteFile removes a file's catalog row and its backing blob.
func (uc *UseCase) DeleteFile(ctx context.Context, requestID, projectID, fileID string) error {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "command.delete_file")
	defer span.End()

	start := time.Now()

	logger.Infof("Trying to delete file %s", fileID)

	f, err := uc.FileRepo.Find(ctx, fileID)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to load file", err)
		uc.emitAudit(ctx, requestID, projectID, "delete", "file", fileID, start, err)

		return err
	}

	err = uc.FileRepo.Delete(ctx, fileID)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to delete file row", err)
		uc.emitAudit(ctx, requestID, projectID, "delete", "file", fileID, start, err)

		return err
	}

	if rmErr := os.Remove(f.Path); rmErr != nil && !os.IsNotExist(rmErr) {
		logger.Warnf("Failed to remove file blob %s: %v", f.Path, rmErr)
	}

	uc.emitAudit(ctx, requestID, projectID, "delete", "file", fileID, start, nil)

	return nil
}
