package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	cn "github.com/padak/keboola-storage-duckdb-sub001/common/constant"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

func TestCreateBucket_CreatesNamespace(t *testing.T) {
	h := newTestHarness(t)

	bucket, err := h.UseCase.CreateBucket(context.Background(), "req-1", "p1", mmodel.DefaultBranchID, &mmodel.CreateBucketInput{
		Name:  "sales",
		Stage: mmodel.BucketStageIn,
	})
	require.NoError(t, err)
	assert.Equal(t, "sales", bucket.Name)
}

func TestCreateBucket_RejectsLinkToAlreadyLinkedBucket(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.UseCase.CreateBucket(context.Background(), "req-1", "p1", mmodel.DefaultBranchID, &mmodel.CreateBucketInput{
		Name:  "source",
		Stage: mmodel.BucketStageIn,
	})
	require.NoError(t, err)

	_, err = h.UseCase.CreateBucket(context.Background(), "req-2", "p1", mmodel.DefaultBranchID, &mmodel.CreateBucketInput{
		Name:  "mirror",
		Stage: mmodel.BucketStageIn,
		LinkedFrom: &mmodel.BucketLink{
			ProjectID: "p1",
			Bucket:    "source",
		},
	})
	require.NoError(t, err)

	_, err = h.UseCase.CreateBucket(context.Background(), "req-3", "p1", mmodel.DefaultBranchID, &mmodel.CreateBucketInput{
		Name:  "double-mirror",
		Stage: mmodel.BucketStageIn,
		LinkedFrom: &mmodel.BucketLink{
			ProjectID: "p1",
			Bucket:    "mirror",
		},
	})
	require.Error(t, err)

	var validationErr common.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, cn.ErrLinkChainTooDeep.Error(), validationErr.Code)
}

func TestUpdateBucket_PatchesSharedWithAndMetadata(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.UseCase.CreateBucket(context.Background(), "req-1", "p1", mmodel.DefaultBranchID, &mmodel.CreateBucketInput{
		Name:  "sales",
		Stage: mmodel.BucketStageIn,
	})
	require.NoError(t, err)

	updated, err := h.UseCase.UpdateBucket(context.Background(), "req-2", "p1", mmodel.DefaultBranchID, "sales", &mmodel.UpdateBucketInput{
		SharedWith: []string{"p2"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, updated.SharedWith)
}

func TestDeleteBucket_RejectsWhenTablesRemain(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.UseCase.CreateBucket(context.Background(), "req-1", "p1", mmodel.DefaultBranchID, &mmodel.CreateBucketInput{
		Name:  "sales",
		Stage: mmodel.BucketStageIn,
	})
	require.NoError(t, err)

	createTestTable(t, h, "p1", mmodel.DefaultBranchID, "sales", "orders")

	err = h.UseCase.DeleteBucket(context.Background(), "req-2", "p1", mmodel.DefaultBranchID, "sales")
	require.Error(t, err)

	var conflictErr common.EntityConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, cn.ErrBucketNotEmpty.Error(), conflictErr.Code)
}

func TestDeleteBucket_SucceedsWhenEmpty(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.UseCase.CreateBucket(context.Background(), "req-1", "p1", mmodel.DefaultBranchID, &mmodel.CreateBucketInput{
		Name:  "sales",
		Stage: mmodel.BucketStageIn,
	})
	require.NoError(t, err)

	err = h.UseCase.DeleteBucket(context.Background(), "req-2", "p1", mmodel.DefaultBranchID, "sales")
	require.NoError(t, err)

	_, err = h.BucketRepo.GetBucket(context.Background(), "p1", mmodel.DefaultBranchID, "sales")
	assert.ErrorIs(t, err, errNotFound)
}
