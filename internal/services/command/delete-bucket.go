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

// DeleteBucket removes an empty bucket. A bucket that still owns tables is
// rejected with ErrBucketNotEmpty.
func (uc *UseCase) DeleteBucket(ctx context.Context, requestID, projectID, branchID, name string) error {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "command.delete_bucket")
	defer span.End()

	start := time.Now()

	logger.Infof("Trying to delete bucket %s in project %s", name, projectID)

	tables, err := uc.TableRepo.FindAll(ctx, projectID, branchID, name, "")
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to list tables in bucket", err)
		uc.emitAudit(ctx, requestID, projectID, "delete", "bucket", name, start, err)

		return err
	}

	if len(tables) > 0 {
		err := common.ValidateBusinessError(cn.ErrBucketNotEmpty, reflect.TypeOf(mmodel.Bucket{}).Name())
		mopentelemetry.HandleSpanError(&span, "Failed to delete bucket, still has tables", err)
		uc.emitAudit(ctx, requestID, projectID, "delete", "bucket", name, start, err)

		return err
	}

	err = uc.BucketRepo.Delete(ctx, projectID, branchID, name)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to delete bucket", err)
	}

	uc.emitAudit(ctx, requestID, projectID, "delete", "bucket", name, start, err)

	return err
}
