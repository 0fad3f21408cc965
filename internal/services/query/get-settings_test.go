package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

func TestGetEffectiveSettings_MergesProjectOverrideWithSystemDefaults(t *testing.T) {
	h := newTestHarness(t)

	truncateEnabled := true
	require.NoError(t, h.SettingsRepo.PutProjectSettings(context.Background(), "p1", &mmodel.SnapshotSettings{
		AutoSnapshotTriggers: &mmodel.AutoSnapshotTriggers{TruncateTable: &truncateEnabled},
	}))

	eff, err := h.UseCase.GetEffectiveSettings(context.Background(), "p1", mmodel.DefaultBranchID, "", "")
	require.NoError(t, err)
	assert.True(t, eff.AutoSnapshotTriggers.DropTable, "system default must survive an override elsewhere")
	assert.True(t, eff.AutoSnapshotTriggers.TruncateTable)
	assert.Equal(t, mmodel.SettingsLevelProject, eff.SourceMap.AutoSnapshotTriggers.TruncateTable)
	assert.Equal(t, mmodel.SettingsLevelSystem, eff.SourceMap.AutoSnapshotTriggers.DropTable)
}

func TestGetEffectiveSettings_BucketOverrideWinsOverProject(t *testing.T) {
	h := newTestHarness(t)

	disabled := false
	require.NoError(t, h.SettingsRepo.PutBucketSettings(context.Background(), "p1", mmodel.DefaultBranchID, "sales", &mmodel.SnapshotSettings{Enabled: &disabled}))

	eff, err := h.UseCase.GetEffectiveSettings(context.Background(), "p1", mmodel.DefaultBranchID, "sales", "")
	require.NoError(t, err)
	assert.False(t, eff.Enabled)
	assert.Equal(t, mmodel.SettingsLevelBucket, eff.SourceMap.Enabled)
}
