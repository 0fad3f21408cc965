package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

func TestGetBucket_ReturnsRow(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.BucketRepo.Create(context.Background(), &mmodel.Bucket{Name: "sales", ProjectID: "p1", BranchID: mmodel.DefaultBranchID, Stage: mmodel.BucketStageIn})
	require.NoError(t, err)

	bucket, err := h.UseCase.GetBucket(context.Background(), "p1", mmodel.DefaultBranchID, "sales")
	require.NoError(t, err)
	assert.Equal(t, "sales", bucket.Name)
}

func TestListBuckets_ReturnsAllOnBranch(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.BucketRepo.Create(context.Background(), &mmodel.Bucket{Name: "sales", ProjectID: "p1", BranchID: mmodel.DefaultBranchID, Stage: mmodel.BucketStageIn})
	require.NoError(t, err)
	_, err = h.BucketRepo.Create(context.Background(), &mmodel.Bucket{Name: "marketing", ProjectID: "p1", BranchID: mmodel.DefaultBranchID, Stage: mmodel.BucketStageIn})
	require.NoError(t, err)

	buckets, err := h.UseCase.ListBuckets(context.Background(), "p1", mmodel.DefaultBranchID, "")
	require.NoError(t, err)
	assert.Len(t, buckets, 2)
}

func TestListBuckets_FiltersByName(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.BucketRepo.Create(context.Background(), &mmodel.Bucket{Name: "sales", ProjectID: "p1", BranchID: mmodel.DefaultBranchID, Stage: mmodel.BucketStageIn})
	require.NoError(t, err)
	_, err = h.BucketRepo.Create(context.Background(), &mmodel.Bucket{Name: "marketing", ProjectID: "p1", BranchID: mmodel.DefaultBranchID, Stage: mmodel.BucketStageIn})
	require.NoError(t, err)

	buckets, err := h.UseCase.ListBuckets(context.Background(), "p1", mmodel.DefaultBranchID, "sal")
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, "sales", buckets[0].Name)
}
