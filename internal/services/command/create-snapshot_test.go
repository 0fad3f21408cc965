package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

func TestCreateSnapshot_RegistersManualSnapshot(t *testing.T) {
	h := newTestHarness(t)
	createTestTable(t, h, "p1", mmodel.DefaultBranchID, "sales", "orders")

	snap, err := h.UseCase.CreateSnapshot(context.Background(), "req-1", "p1", mmodel.DefaultBranchID, "sales", "orders", "before cleanup", "user-1")
	require.NoError(t, err)

	assert.Equal(t, mmodel.SnapshotTypeManual, snap.Type)
	assert.Equal(t, "before cleanup", snap.Description)

	_, ok := h.SnapshotRepo.snapshots[snap.ID]
	assert.True(t, ok)
}
