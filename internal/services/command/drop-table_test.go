package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

func createTestTable(t *testing.T, h *testHarness, project, branch, bucket, name string) {
	t.Helper()

	_, err := h.UseCase.CreateTable(context.Background(), "req-1", project, branch, bucket, &mmodel.CreateTableInput{
		Name:    name,
		Columns: []mmodel.Column{{Name: "id", Type: "INTEGER"}},
	})
	require.NoError(t, err)
}

func TestDropTable_RemovesCatalogRowOnDefaultBranch(t *testing.T) {
	h := newTestHarness(t)
	createTestTable(t, h, "p1", mmodel.DefaultBranchID, "sales", "orders")

	err := h.UseCase.DropTable(context.Background(), "req-1", "p1", mmodel.DefaultBranchID, "sales", "orders")
	require.NoError(t, err)

	_, err = h.TableRepo.Find(context.Background(), "p1", mmodel.DefaultBranchID, "sales", "orders")
	assert.ErrorIs(t, err, errNotFound)
}

func TestDropTable_OnNonDefaultBranchNeverCopiedLeavesDefaultRowUntouched(t *testing.T) {
	h := newTestHarness(t)
	createTestTable(t, h, "p1", mmodel.DefaultBranchID, "sales", "orders")

	err := h.UseCase.DropTable(context.Background(), "req-1", "p1", "feature-1", "sales", "orders")
	require.NoError(t, err)

	_, err = h.TableRepo.Find(context.Background(), "p1", mmodel.DefaultBranchID, "sales", "orders")
	assert.NoError(t, err)
}
