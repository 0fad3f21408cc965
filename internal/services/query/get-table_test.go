package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

func TestGetTable_OnDefaultBranch(t *testing.T) {
	h := newTestHarness(t)
	createTable(t, h, "p1", mmodel.DefaultBranchID, "sales", "orders", []mmodel.Column{{Name: "id", Type: "INTEGER"}})

	table, err := h.UseCase.GetTable(context.Background(), "p1", mmodel.DefaultBranchID, "sales", "orders")
	require.NoError(t, err)
	assert.Equal(t, "orders", table.Name)
}

func TestGetTable_OnNonDefaultBranchFallsBackToDefaultRow(t *testing.T) {
	h := newTestHarness(t)
	createTable(t, h, "p1", mmodel.DefaultBranchID, "sales", "orders", []mmodel.Column{{Name: "id", Type: "INTEGER"}})

	table, err := h.UseCase.GetTable(context.Background(), "p1", "feature-1", "sales", "orders")
	require.NoError(t, err)
	assert.Equal(t, mmodel.DefaultBranchID, table.BranchID)
}

func TestListTables_MergesBranchOwnRowsOverDefault(t *testing.T) {
	h := newTestHarness(t)

	createTable(t, h, "p1", mmodel.DefaultBranchID, "sales", "orders", []mmodel.Column{{Name: "id", Type: "INTEGER"}})
	createTable(t, h, "p1", mmodel.DefaultBranchID, "sales", "refunds", []mmodel.Column{{Name: "id", Type: "INTEGER"}})

	_, err := h.BranchRepo.Create(context.Background(), &mmodel.Branch{
		ID: "feature-1", ProjectID: "p1",
		Deleted: []mmodel.TableRef{{Bucket: "sales", Table: "refunds"}},
	})
	require.NoError(t, err)

	createTable(t, h, "p1", "feature-1", "sales", "orders", []mmodel.Column{{Name: "id", Type: "INTEGER"}, {Name: "note", Type: "VARCHAR", Nullable: true}})

	tables, err := h.UseCase.ListTables(context.Background(), "p1", "feature-1", "sales", "")
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "orders", tables[0].Name)
	assert.Equal(t, "feature-1", tables[0].BranchID)
}

func TestListTables_FiltersByName(t *testing.T) {
	h := newTestHarness(t)

	createTable(t, h, "p1", mmodel.DefaultBranchID, "sales", "orders", []mmodel.Column{{Name: "id", Type: "INTEGER"}})
	createTable(t, h, "p1", mmodel.DefaultBranchID, "sales", "refunds", []mmodel.Column{{Name: "id", Type: "INTEGER"}})

	tables, err := h.UseCase.ListTables(context.Background(), "p1", mmodel.DefaultBranchID, "sales", "ref")
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "refunds", tables[0].Name)
}
