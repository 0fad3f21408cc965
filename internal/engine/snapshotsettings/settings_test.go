package snapshotsettings

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/padak/keboola-storage-duckdb-sub001/common/mpointers"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

func TestResolve_NoOverridesReturnsSystemDefaults(t *testing.T) {
	eff := Resolve(nil, nil, nil)

	assert.True(t, eff.Enabled)
	assert.True(t, eff.AutoSnapshotTriggers.DropTable)
	assert.False(t, eff.AutoSnapshotTriggers.TruncateTable)
	assert.Equal(t, 90, eff.Retention.ManualDays)
	assert.Equal(t, mmodel.SettingsLevelSystem, eff.SourceMap.Retention.ManualDays)
}

func TestResolve_ProjectOverrideWinsOverSystem(t *testing.T) {
	project := &mmodel.SnapshotSettings{
		AutoSnapshotTriggers: &mmodel.AutoSnapshotTriggers{TruncateTable: mpointers.Bool(true)},
	}

	eff := Resolve(project, nil, nil)

	assert.True(t, eff.AutoSnapshotTriggers.TruncateTable)
	assert.Equal(t, mmodel.SettingsLevelProject, eff.SourceMap.AutoSnapshotTriggers.TruncateTable)
	assert.True(t, eff.AutoSnapshotTriggers.DropTable, "unrelated leaves keep inheriting")
}

func TestResolve_TableOverrideWinsOverBucketAndProject(t *testing.T) {
	project := &mmodel.SnapshotSettings{Retention: &mmodel.RetentionConfig{ManualDays: mpointers.Int(30)}}
	bucket := &mmodel.SnapshotSettings{Retention: &mmodel.RetentionConfig{ManualDays: mpointers.Int(60)}}
	table := &mmodel.SnapshotSettings{Retention: &mmodel.RetentionConfig{ManualDays: mpointers.Int(10)}}

	eff := Resolve(project, bucket, table)

	assert.Equal(t, 10, eff.Retention.ManualDays)
	assert.Equal(t, mmodel.SettingsLevelTable, eff.SourceMap.Retention.ManualDays)
	assert.Equal(t, 7, eff.Retention.AutoDays, "auto retention keeps the system default")
}

func TestTriggerEnabled_RespectsGlobalEnabledFlag(t *testing.T) {
	eff := Resolve(&mmodel.SnapshotSettings{Enabled: mpointers.Bool(false)}, nil, nil)

	assert.False(t, TriggerEnabled(eff, OpDropTable), "disabled settings suppress every trigger")
}

func TestTriggerEnabled_UnknownOpIsFalse(t *testing.T) {
	eff := Resolve(nil, nil, nil)
	assert.False(t, TriggerEnabled(eff, "not_a_real_op"))
}
