package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/enginefile"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

func TestRestoreSnapshot_RebuildsTargetFromCapturedSchema(t *testing.T) {
	h := newTestHarness(t)
	createTestTable(t, h, "p1", mmodel.DefaultBranchID, "sales", "orders")

	require.NoError(t, h.UseCase.Overlay.Write(context.Background(), "p1", mmodel.DefaultBranchID, "sales", "orders", func(ctx context.Context, conn *enginefile.Conn) error {
		_, err := conn.DB.ExecContext(ctx, "INSERT INTO orders (id) VALUES (1), (2), (3)")
		return err
	}))

	snap, err := h.UseCase.CreateSnapshot(context.Background(), "req-1", "p1", mmodel.DefaultBranchID, "sales", "orders", "", "user-1")
	require.NoError(t, err)

	require.NoError(t, h.UseCase.DropTable(context.Background(), "req-2", "p1", mmodel.DefaultBranchID, "sales", "orders"))

	table, err := h.UseCase.RestoreSnapshot(context.Background(), "req-3", "p1", snap.ID, mmodel.DefaultBranchID, "sales", "orders")
	require.NoError(t, err)
	assert.Equal(t, int64(3), table.RowCount)

	got, err := h.TableRepo.Find(context.Background(), "p1", mmodel.DefaultBranchID, "sales", "orders")
	require.NoError(t, err)
	assert.Equal(t, mmodel.TableStatusActive, got.Status)
}
