package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

func TestGetSnapshot_ReturnsRow(t *testing.T) {
	h := newTestHarness(t)

	snap := &mmodel.Snapshot{ID: "snap-1", ProjectID: "p1", Bucket: "sales", Table: "orders", Type: mmodel.SnapshotTypeManual}
	require.NoError(t, h.SnapshotRepo.RegisterSnapshot(context.Background(), snap))

	got, err := h.UseCase.GetSnapshot(context.Background(), "snap-1")
	require.NoError(t, err)
	assert.Equal(t, "sales", got.Bucket)
}

func TestListSnapshotsForTable_FiltersByTable(t *testing.T) {
	h := newTestHarness(t)

	require.NoError(t, h.SnapshotRepo.RegisterSnapshot(context.Background(), &mmodel.Snapshot{ID: "snap-1", ProjectID: "p1", Bucket: "sales", Table: "orders"}))
	require.NoError(t, h.SnapshotRepo.RegisterSnapshot(context.Background(), &mmodel.Snapshot{ID: "snap-2", ProjectID: "p1", Bucket: "sales", Table: "refunds"}))

	snaps, err := h.UseCase.ListSnapshotsForTable(context.Background(), "p1", "sales", "orders")
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "snap-1", snaps[0].ID)
}
