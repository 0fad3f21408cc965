package command

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

func TestDeleteSnapshot_RemovesRowAndFile(t *testing.T) {
	h := newTestHarness(t)
	createTestTable(t, h, "p1", mmodel.DefaultBranchID, "sales", "orders")

	snap, err := h.UseCase.CreateSnapshot(context.Background(), "req-1", "p1", mmodel.DefaultBranchID, "sales", "orders", "", "user-1")
	require.NoError(t, err)

	err = h.UseCase.DeleteSnapshot(context.Background(), "req-2", "p1", snap.ID)
	require.NoError(t, err)

	_, ok := h.SnapshotRepo.snapshots[snap.ID]
	assert.False(t, ok)

	_, statErr := os.Stat(snap.Path)
	assert.True(t, os.IsNotExist(statErr))
}
