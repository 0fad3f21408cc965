package query

import (
	"context"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// GetBucket retrieves a bucket by name.
func (uc *UseCase) GetBucket(ctx context.Context, projectID, branchID, name string) (*mmodel.Bucket, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "query.get_bucket")
	defer span.End()

	logger.Infof("Retrieving bucket for name: %s", name)

	bucket, err := uc.BucketRepo.GetBucket(ctx, projectID, branchID, name)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get bucket", err)
		return nil, err
	}

	return bucket, nil
}

// ListBuckets returns every bucket visible on a branch, optionally narrowed
// to names matching nameFilter.
func (uc *UseCase) ListBuckets(ctx context.Context, projectID, branchID, nameFilter string) ([]*mmodel.Bucket, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "query.list_buckets")
	defer span.End()

	logger.Infof("Retrieving buckets for branch %s", branchID)

	buckets, err := uc.BucketRepo.FindAll(ctx, projectID, branchID, nameFilter)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to list buckets", err)
		return nil, err
	}

	return buckets, nil
}
