package query

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

func TestDryRunReconcile_ClassifiesWithoutMutatingCatalog(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.BranchRepo.Create(context.Background(), &mmodel.Branch{ID: mmodel.DefaultBranchID, ProjectID: "p1"})
	require.NoError(t, err)
	_, err = h.BucketRepo.Create(context.Background(), &mmodel.Bucket{Name: "sales", ProjectID: "p1", BranchID: mmodel.DefaultBranchID, Stage: mmodel.BucketStageIn})
	require.NoError(t, err)

	createTable(t, h, "p1", mmodel.DefaultBranchID, "sales", "orders", []mmodel.Column{{Name: "id", Type: "INTEGER"}})
	require.NoError(t, h.TableRepo.MarkOrphaned(context.Background(), "p1", mmodel.DefaultBranchID, "sales", "orders"))

	path, err := h.UseCase.Resolver.Resolve(context.Background(), "p1", mmodel.DefaultBranchID, "sales", "orders")
	require.NoError(t, err)
	_, statErr := os.Stat(path)
	require.NoError(t, statErr)

	report, err := h.UseCase.DryRunReconcile(context.Background(), "p1")
	require.NoError(t, err)
	assert.Contains(t, report.RebuiltRows, "sales/orders")

	table, err := h.TableRepo.Find(context.Background(), "p1", mmodel.DefaultBranchID, "sales", "orders")
	require.NoError(t, err)
	assert.Equal(t, mmodel.TableStatusOrphaned, table.Status, "dry run must not mutate the catalog row")
}

func TestDryRunReconcile_DetectsActiveRowWithMissingFile(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.BranchRepo.Create(context.Background(), &mmodel.Branch{ID: mmodel.DefaultBranchID, ProjectID: "p1"})
	require.NoError(t, err)
	_, err = h.BucketRepo.Create(context.Background(), &mmodel.Bucket{Name: "sales", ProjectID: "p1", BranchID: mmodel.DefaultBranchID, Stage: mmodel.BucketStageIn})
	require.NoError(t, err)

	createTable(t, h, "p1", mmodel.DefaultBranchID, "sales", "orders", []mmodel.Column{{Name: "id", Type: "INTEGER"}})

	path, err := h.UseCase.Resolver.Resolve(context.Background(), "p1", mmodel.DefaultBranchID, "sales", "orders")
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	report, err := h.UseCase.DryRunReconcile(context.Background(), "p1")
	require.NoError(t, err)
	assert.Contains(t, report.RemovedRows, "sales/orders")

	table, err := h.TableRepo.Find(context.Background(), "p1", mmodel.DefaultBranchID, "sales", "orders")
	require.NoError(t, err)
	assert.Equal(t, mmodel.TableStatusActive, table.Status, "dry run must not mutate the catalog row")
}
