package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/enginefile"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

func countRows(t *testing.T, h *testHarness, project, branch, bucket, table string) int64 {
	t.Helper()

	conn, err := h.UseCase.Overlay.Read(context.Background(), project, branch, bucket, table)
	require.NoError(t, err)
	defer conn.Close()

	var count int64
	require.NoError(t, conn.DB.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&count))

	return count
}

func TestTruncateTable_ZeroesCountersAndEmptiesRows(t *testing.T) {
	h := newTestHarness(t)
	createTestTable(t, h, "p1", mmodel.DefaultBranchID, "sales", "orders")

	err := h.UseCase.Overlay.Write(context.Background(), "p1", mmodel.DefaultBranchID, "sales", "orders", func(ctx context.Context, conn *enginefile.Conn) error {
		_, err := conn.DB.ExecContext(ctx, "INSERT INTO orders (id) VALUES (1), (2)")
		return err
	})
	require.NoError(t, err)

	err = h.UseCase.TruncateTable(context.Background(), "req-1", "p1", mmodel.DefaultBranchID, "sales", "orders")
	require.NoError(t, err)

	table, err := h.TableRepo.Find(context.Background(), "p1", mmodel.DefaultBranchID, "sales", "orders")
	require.NoError(t, err)
	assert.Equal(t, int64(0), table.RowCount)

	assert.Equal(t, int64(0), countRows(t, h, "p1", mmodel.DefaultBranchID, "sales", "orders"))
}
