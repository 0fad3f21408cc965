package command

import (
	"context"
	"time"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// PutProjectSettings replaces the project-level snapshot settings override.
func (uc *UseCase) PutProjectSettings(ctx context.Context, requestID, projectID string, settings *mmodel.SnapshotSettings) error {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "command.put_project_settings")
	defer span.End()

	start := time.Now()

	logger.Infof("Trying to update project settings for %s", projectID)

	err := uc.SettingsRepo.PutProjectSettings(ctx, projectID, settings)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to put project settings", err)
	}

	uc.emitAudit(ctx, requestID, projectID, "put_settings", "project", projectID, start, err)

	return err
}

// PutBucketSettings replaces the bucket-level snapshot settings override.
func (uc *UseCase) PutBucketSettings(ctx context.Context, requestID, projectID, branchID, bucket string, settings *mmodel.SnapshotSettings) error {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "command.put_bucket_settings")
	defer span.End()

	start := time.Now()

	logger.Infof("Trying to update bucket settings for %s", bucket)

	err := uc.SettingsRepo.PutBucketSettings(ctx, projectID, branchID, bucket, settings)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to put bucket settings", err)
	}

	uc.emitAudit(ctx, requestID, projectID, "put_settings", "bucket", bucket, start, err)

	return err
}

// PutTableSettings replaces the table-level snapshot settings override.
func (uc *UseCase) PutTableSettings(ctx context.Context, requestID, projectID, branchID, bucket, table string, settings *mmodel.SnapshotSettings) error {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "command.put_table_settings")
	defer span.End()

	start := time.Now()

	logger.Infof("Trying to update table settings for %s", table)

	err := uc.SettingsRepo.PutTableSettings(ctx, projectID, branchID, bucket, table, settings)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to put table settings", err)
	}

	uc.emitAudit(ctx, requestID, projectID, "put_settings", "table", bucket+"/"+table, start, err)

	return err
}
