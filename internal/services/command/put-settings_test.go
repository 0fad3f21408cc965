package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

func TestPutProjectSettings_Persists(t *testing.T) {
	h := newTestHarness(t)

	enabled := true
	err := h.UseCase.PutProjectSettings(context.Background(), "req-1", "p1", &mmodel.SnapshotSettings{Enabled: &enabled})
	require.NoError(t, err)

	got, err := h.SettingsRepo.GetProjectSettings(context.Background(), "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, *got.Enabled)
}

func TestPutBucketSettings_Persists(t *testing.T) {
	h := newTestHarness(t)

	enabled := false
	err := h.UseCase.PutBucketSettings(context.Background(), "req-1", "p1", mmodel.DefaultBranchID, "sales", &mmodel.SnapshotSettings{Enabled: &enabled})
	require.NoError(t, err)

	got, err := h.SettingsRepo.GetBucketSettings(context.Background(), "p1", mmodel.DefaultBranchID, "sales")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, *got.Enabled)
}

func TestPutTableSettings_Persists(t *testing.T) {
	h := newTestHarness(t)

	enabled := true
	err := h.UseCase.PutTableSettings(context.Background(), "req-1", "p1", mmodel.DefaultBranchID, "sales", "orders", &mmodel.SnapshotSettings{Enabled: &enabled})
	require.NoError(t, err)

	got, err := h.SettingsRepo.GetTableSettings(context.Background(), "p1", mmodel.DefaultBranchID, "sales", "orders")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, *got.Enabled)
}
