package command

import (
	"context"
	"time"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// CreateSnapshot takes a manual, named snapshot of a table.
func (uc *UseCase) CreateSnapshot(ctx context.Context, requestID, projectID, branchID, bucket, table, description, createdBy string) (*mmodel.Snapshot, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "command.create_snapshot")
	defer span.End()

	start := time.Now()

	logger.Infof("Trying to create snapshot of table %s in bucket %s", table, bucket)

	eff, err := uc.resolveEffectiveSettings(ctx, projectID, branchID, bucket, table)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to resolve snapshot settings", err)
		uc.emitAudit(ctx, requestID, projectID, "create", "snapshot", bucket+"/"+table, start, err)

		return nil, err
	}

	snap, err := uc.Snapshots.Create(ctx, projectID, branchID, bucket, table, mmodel.SnapshotTypeManual, description, createdBy, eff.Retention, time.Now())
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to create snapshot", err)
	}

	uc.emitAudit(ctx, requestID, projectID, "create", "snapshot", bucket+"/"+table, start, err)

	if err != nil {
		return nil, err
	}

	return snap, nil
}
