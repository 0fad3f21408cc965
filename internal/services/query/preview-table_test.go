package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/enginefile"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

func TestPreviewTable_ReturnsColumnsAndRows(t *testing.T) {
	h := newTestHarness(t)

	createTable(t, h, "p1", mmodel.DefaultBranchID, "sales", "orders", []mmodel.Column{
		{Name: "id", Type: "INTEGER"},
		{Name: "note", Type: "VARCHAR"},
	})

	err := h.UseCase.Overlay.Write(context.Background(), "p1", mmodel.DefaultBranchID, "sales", "orders", func(ctx context.Context, conn *enginefile.Conn) error {
		_, execErr := conn.DB.ExecContext(ctx, "INSERT INTO orders VALUES (1, 'hello')")
		return execErr
	})
	require.NoError(t, err)

	preview, err := h.UseCase.PreviewTable(context.Background(), "p1", mmodel.DefaultBranchID, "sales", "orders")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "note"}, preview.Columns)
	require.Len(t, preview.Rows, 1)
}

func TestPreviewTable_EmptyTableReturnsNoRows(t *testing.T) {
	h := newTestHarness(t)

	createTable(t, h, "p1", mmodel.DefaultBranchID, "sales", "orders", []mmodel.Column{
		{Name: "id", Type: "INTEGER"},
	})

	preview, err := h.UseCase.PreviewTable(context.Background(), "p1", mmodel.DefaultBranchID, "sales", "orders")
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, preview.Columns)
	assert.Len(t, preview.Rows, 0)
}
