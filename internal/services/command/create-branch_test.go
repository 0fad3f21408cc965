package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

func TestCreateBranch_RegistersRowAndEmitsAudit(t *testing.T) {
	h := newTestHarness(t)

	branch, err := h.UseCase.CreateBranch(context.Background(), "req-1", "p1", "user-1", &mmodel.CreateBranchInput{ID: "feature-1"})
	require.NoError(t, err)
	assert.Equal(t, "feature-1", branch.ID)
	assert.Equal(t, "p1", branch.ProjectID)

	require.Len(t, h.AuditRepo.records, 1)
	assert.Equal(t, mmodel.AuditStatusSuccess, h.AuditRepo.records[0].Status)
}

func TestDeleteBranch_RemovesOverlayAndCatalogRow(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.UseCase.CreateBranch(context.Background(), "req-1", "p1", "user-1", &mmodel.CreateBranchInput{ID: "feature-1"})
	require.NoError(t, err)

	err = h.UseCase.DeleteBranch(context.Background(), "req-2", "p1", "feature-1")
	require.NoError(t, err)

	_, ok := h.BranchRepo.branches["p1/feature-1"]
	assert.False(t, ok)
}
