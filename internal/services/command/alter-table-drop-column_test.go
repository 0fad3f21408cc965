package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

func TestAlterTableDropColumn_RemovesColumn(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.UseCase.CreateTable(context.Background(), "req-1", "p1", mmodel.DefaultBranchID, "sales", &mmodel.CreateTableInput{
		Name:    "orders",
		Columns: []mmodel.Column{{Name: "id", Type: "INTEGER"}, {Name: "note", Type: "VARCHAR", Nullable: true}},
	})
	require.NoError(t, err)

	table, err := h.UseCase.AlterTableDropColumn(context.Background(), "req-2", "p1", mmodel.DefaultBranchID, "sales", "orders", &mmodel.AlterTableDropColumnInput{
		ColumnName: "note",
	})
	require.NoError(t, err)

	for _, c := range table.Columns {
		assert.NotEqual(t, "note", c.Name)
	}
}

func TestAlterTableDropColumn_RejectsPrimaryKeyColumn(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.UseCase.CreateTable(context.Background(), "req-1", "p1", mmodel.DefaultBranchID, "sales", &mmodel.CreateTableInput{
		Name:       "orders",
		Columns:    []mmodel.Column{{Name: "id", Type: "INTEGER"}},
		PrimaryKey: []string{"id"},
	})
	require.NoError(t, err)

	_, err = h.UseCase.AlterTableDropColumn(context.Background(), "req-2", "p1", mmodel.DefaultBranchID, "sales", "orders", &mmodel.AlterTableDropColumnInput{
		ColumnName: "id",
	})
	require.Error(t, err)

	var validationErr common.ValidationError
	require.ErrorAs(t, err, &validationErr)
}
