package query

import (
	"context"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// GetSnapshot retrieves a snapshot's catalog row by id.
func (uc *UseCase) GetSnapshot(ctx context.Context, id string) (*mmodel.Snapshot, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "query.get_snapshot")
	defer span.End()

	logger.Infof("Retrieving snapshot for id: %s", id)

	snap, err := uc.SnapshotRepo.GetSnapshot(ctx, id)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get snapshot", err)
		return nil, err
	}

	return snap, nil
}

// ListSnapshotsForTable returns every snapshot taken of a table.
func (uc *UseCase) ListSnapshotsForTable(ctx context.Context, projectID, bucket, table string) ([]mmodel.Snapshot, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "query.list_snapshots_for_table")
	defer span.End()

	logger.Infof("Retrieving snapshots for table %s", table)

	snaps, err := uc.SnapshotRepo.ListForTable(ctx, projectID, bucket, table)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to list snapshots", err)
		return nil, err
	}

	return snaps, nil
}
