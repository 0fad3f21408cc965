package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/enginefile"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

func TestAlterTableSetNotNull_RejectsWhenColumnHasNulls(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.UseCase.CreateTable(context.Background(), "req-1", "p1", mmodel.DefaultBranchID, "sales", &mmodel.CreateTableInput{
		Name:    "orders",
		Columns: []mmodel.Column{{Name: "id", Type: "INTEGER"}, {Name: "note", Type: "VARCHAR", Nullable: true}},
	})
	require.NoError(t, err)

	require.NoError(t, h.UseCase.Overlay.Write(context.Background(), "p1", mmodel.DefaultBranchID, "sales", "orders", func(ctx context.Context, conn *enginefile.Conn) error {
		_, err := conn.DB.ExecContext(ctx, "INSERT INTO orders (id, note) VALUES (1, NULL)")
		return err
	}))

	_, err = h.UseCase.AlterTableSetNotNull(context.Background(), "req-1", "p1", mmodel.DefaultBranchID, "sales", "orders", &mmodel.AlterTableSetNotNullInput{ColumnName: "note"})
	require.Error(t, err)
}

func TestAlterTableSetNotNull_SucceedsWithoutNulls(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.UseCase.CreateTable(context.Background(), "req-1", "p1", mmodel.DefaultBranchID, "sales", &mmodel.CreateTableInput{
		Name:    "orders",
		Columns: []mmodel.Column{{Name: "id", Type: "INTEGER"}, {Name: "note", Type: "VARCHAR", Nullable: true}},
	})
	require.NoError(t, err)

	require.NoError(t, h.UseCase.Overlay.Write(context.Background(), "p1", mmodel.DefaultBranchID, "sales", "orders", func(ctx context.Context, conn *enginefile.Conn) error {
		_, err := conn.DB.ExecContext(ctx, "INSERT INTO orders (id, note) VALUES (1, 'hi')")
		return err
	}))

	table, err := h.UseCase.AlterTableSetNotNull(context.Background(), "req-1", "p1", mmodel.DefaultBranchID, "sales", "orders", &mmodel.AlterTableSetNotNullInput{ColumnName: "note"})
	require.NoError(t, err)

	for _, c := range table.Columns {
		if c.Name == "note" {
			assert.False(t, c.Nullable)
		}
	}
}
