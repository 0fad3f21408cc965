package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

func TestAlterTableAddColumn_AppendsNullableColumn(t *testing.T) {
	h := newTestHarness(t)
	createTestTable(t, h, "p1", mmodel.DefaultBranchID, "sales", "orders")

	table, err := h.UseCase.AlterTableAddColumn(context.Background(), "req-1", "p1", mmodel.DefaultBranchID, "sales", "orders", &mmodel.AlterTableAddColumnInput{
		Column: mmodel.Column{Name: "note", Type: "VARCHAR"},
	})
	require.NoError(t, err)

	var found *mmodel.Column
	for i := range table.Columns {
		if table.Columns[i].Name == "note" {
			found = &table.Columns[i]
		}
	}

	require.NotNil(t, found)
	assert.True(t, found.Nullable)
}

func TestAlterTableAddColumn_RejectsDuplicateName(t *testing.T) {
	h := newTestHarness(t)
	createTestTable(t, h, "p1", mmodel.DefaultBranchID, "sales", "orders")

	_, err := h.UseCase.AlterTableAddColumn(context.Background(), "req-1", "p1", mmodel.DefaultBranchID, "sales", "orders", &mmodel.AlterTableAddColumnInput{
		Column: mmodel.Column{Name: "id", Type: "INTEGER"},
	})
	require.Error(t, err)

	var validationErr common.ValidationError
	require.ErrorAs(t, err, &validationErr)
}
