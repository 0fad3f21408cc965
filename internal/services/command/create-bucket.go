package command

import (
	"context"
	"reflect"
	"time"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	cn "github.com/padak/keboola-storage-duckdb-sub001/common/constant"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// CreateBucket registers a new bucket namespace under a branch. A linked
// bucket is validated against its source eagerly, since a dangling or
// doubly-linked target would otherwise only surface on first read.
func (uc *UseCase) CreateBucket(ctx context.Context, requestID, projectID, branchID string, input *mmodel.CreateBucketInput) (*mmodel.Bucket, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "command.create_bucket")
	defer span.End()

	start := time.Now()

	logger.Infof("Trying to create bucket %s in project %s", input.Name, projectID)

	if err := common.CheckMetadataKeyAndValueLength(2000, input.Metadata); err != nil {
		businessErr := common.ValidateBusinessError(err, reflect.TypeOf(mmodel.Bucket{}).Name())
		mopentelemetry.HandleSpanError(&span, "Failed to validate bucket metadata", err)
		uc.emitAudit(ctx, requestID, projectID, "create", "bucket", input.Name, start, businessErr)

		return nil, businessErr
	}

	if input.LinkedFrom != nil {
		source, err := uc.BucketRepo.GetBucket(ctx, input.LinkedFrom.ProjectID, mmodel.DefaultBranchID, input.LinkedFrom.Bucket)
		if err != nil {
			businessErr := common.ValidateBusinessError(cn.ErrLinkTargetNotFound, reflect.TypeOf(mmodel.Bucket{}).Name())
			mopentelemetry.HandleSpanError(&span, "Failed to resolve link target", err)
			uc.emitAudit(ctx, requestID, projectID, "create", "bucket", input.Name, start, businessErr)

			return nil, businessErr
		}

		if source.LinkedFrom != nil {
			err := common.ValidateBusinessError(cn.ErrLinkChainTooDeep, reflect.TypeOf(mmodel.Bucket{}).Name())
			mopentelemetry.HandleSpanError(&span, "Failed to validate link depth", err)
			uc.emitAudit(ctx, requestID, projectID, "create", "bucket", input.Name, start, err)

			return nil, err
		}
	}

	bucket := &mmodel.Bucket{
		Name:       input.Name,
		ProjectID:  projectID,
		BranchID:   branchID,
		Stage:      input.Stage,
		SharedWith: input.SharedWith,
		LinkedFrom: input.LinkedFrom,
		Metadata:   input.Metadata,
		CreatedAt:  time.Now(),
	}

	created, err := uc.BucketRepo.Create(ctx, bucket)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to create bucket", err)
	}

	uc.emitAudit(ctx, requestID, projectID, "create", "bucket", input.Name, start, err)

	if err != nil {
		return nil, err
	}

	return created, nil
}
