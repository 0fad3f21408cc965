package command

import (
	"context"
	"os"
	"time"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
)

// DeleteSnapshot removes a snapshot's catalog row and its backing file.
func (uc *UseCase) DeleteSnapshot(ctx context.Context, requestID, projectID, snapshotID string) error {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "command.delete_snapshot")
	defer span.End()

	start := time.Now()

	logger.Infof("Trying to delete snapshot %s", snapshotID)

	snap, err := uc.SnapshotRepo.GetSnapshot(ctx, snapshotID)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to load snapshot", err)
		uc.emitAudit(ctx, requestID, projectID, "delete", "snapshot", snapshotID, start, err)

		return err
	}

	if rmErr := os.Remove(snap.Path); rmErr != nil && !os.IsNotExist(rmErr) {
		mopentelemetry.HandleSpanError(&span, "Failed to remove snapshot file", rmErr)
		uc.emitAudit(ctx, requestID, projectID, "delete", "snapshot", snapshotID, start, rmErr)

		return rmErr
	}

	err = uc.SnapshotRepo.DeleteSnapshotRow(ctx, snapshotID)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to delete snapshot row", err)
	}

	uc.emitAudit(ctx, requestID, projectID, "delete", "snapshot", snapshotID, start, err)

	return err
}
