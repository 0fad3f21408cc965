package command

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

func TestReconcileProject_RebuildsOrphanedRowWhoseFileReappeared(t *testing.T) {
	h := newTestHarness(t)
	createTestTable(t, h, "p1", mmodel.DefaultBranchID, "sales", "orders")
	require.NoError(t, h.TableRepo.MarkOrphaned(context.Background(), "p1", mmodel.DefaultBranchID, "sales", "orders"))

	report, err := h.UseCase.ReconcileProject(context.Background(), "req-1", "p1")
	require.NoError(t, err)

	assert.Contains(t, report.RebuiltRows, "sales/orders")

	table, err := h.TableRepo.Find(context.Background(), "p1", mmodel.DefaultBranchID, "sales", "orders")
	require.NoError(t, err)
	assert.Equal(t, mmodel.TableStatusActive, table.Status)
}

func TestReconcileProject_RemovesActiveRowWhoseFileIsGone(t *testing.T) {
	h := newTestHarness(t)
	createTestTable(t, h, "p1", mmodel.DefaultBranchID, "sales", "orders")

	path, err := h.UseCase.Resolver.Resolve(context.Background(), "p1", mmodel.DefaultBranchID, "sales", "orders")
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	report, err := h.UseCase.ReconcileProject(context.Background(), "req-1", "p1")
	require.NoError(t, err)

	assert.Contains(t, report.RemovedRows, "sales/orders")

	_, err = h.TableRepo.Find(context.Background(), "p1", mmodel.DefaultBranchID, "sales", "orders")
	assert.ErrorIs(t, err, errNotFound)
}
