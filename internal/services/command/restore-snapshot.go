package command

import (
	"context"
	"encoding/json"
	"time"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// RestoreSnapshot rebuilds (targetBranch, targetBucket, targetTable) from a
// previously taken snapshot, replacing the catalog row's schema with the
// one captured at snapshot time.
func (uc *UseCase) RestoreSnapshot(ctx context.Context, requestID, projectID, snapshotID, targetBranch, targetBucket, targetTable string) (*mmodel.Table, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "command.restore_snapshot")
	defer span.End()

	start := time.Now()

	logger.Infof("Trying to restore snapshot %s into table %s", snapshotID, targetTable)

	snap, err := uc.SnapshotRepo.GetSnapshot(ctx, snapshotID)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to load snapshot", err)
		uc.emitAudit(ctx, requestID, projectID, "restore", "snapshot", targetBucket+"/"+targetTable, start, err)

		return nil, err
	}

	var columns []mmodel.Column
	if unmarshalErr := json.Unmarshal([]byte(snap.SchemaJSON), &columns); unmarshalErr != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to decode snapshot schema", unmarshalErr)
		uc.emitAudit(ctx, requestID, projectID, "restore", "snapshot", targetBucket+"/"+targetTable, start, unmarshalErr)

		return nil, unmarshalErr
	}

	table := &mmodel.Table{
		Name:      targetTable,
		ProjectID: projectID,
		BranchID:  targetBranch,
		Bucket:    targetBucket,
		Columns:   columns,
		RowCount:  snap.RowCount,
		Status:    mmodel.TableStatusActive,
		CreatedAt: time.Now(),
	}

	registrar := &tableRegistrar{repo: uc.TableRepo, table: table}

	err = uc.Snapshots.Restore(ctx, snap, projectID, targetBranch, targetBucket, targetTable, registrar)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to restore snapshot", err)
	}

	uc.emitAudit(ctx, requestID, projectID, "restore", "snapshot", targetBucket+"/"+targetTable, start, err)

	if err != nil {
		return nil, err
	}

	return table, nil
}
