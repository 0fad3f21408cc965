package command

import (
	"context"
	"reflect"
	"time"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// UpdateBucket patches a bucket's sharing list and/or metadata.
func (uc *UseCase) UpdateBucket(ctx context.Context, requestID, projectID, branchID, name string, input *mmodel.UpdateBucketInput) (*mmodel.Bucket, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "command.update_bucket")
	defer span.End()

	start := time.Now()

	logger.Infof("Trying to update bucket %s in project %s", name, projectID)

	if err := common.CheckMetadataKeyAndValueLength(2000, input.Metadata); err != nil {
		businessErr := common.ValidateBusinessError(err, reflect.TypeOf(mmodel.Bucket{}).Name())
		mopentelemetry.HandleSpanError(&span, "Failed to validate bucket metadata", err)
		uc.emitAudit(ctx, requestID, projectID, "update", "bucket", name, start, businessErr)

		return nil, businessErr
	}

	existing, err := uc.BucketRepo.GetBucket(ctx, projectID, branchID, name)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to find bucket", err)
		uc.emitAudit(ctx, requestID, projectID, "update", "bucket", name, start, err)

		return nil, err
	}

	if input.SharedWith != nil {
		existing.SharedWith = input.SharedWith
	}

	if input.Metadata != nil {
		existing.Metadata = input.Metadata
	}

	updated, err := uc.BucketRepo.Update(ctx, projectID, branchID, name, existing)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to update bucket", err)
	}

	uc.emitAudit(ctx, requestID, projectID, "update", "bucket", name, start, err)

	if err != nil {
		return nil, err
	}

	return updated, nil
}
