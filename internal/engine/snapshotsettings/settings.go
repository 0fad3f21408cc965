// Package snapshotsettings implements the four-level hierarchical
// snapshot-settings resolver (system -> project -> bucket -> table) and
// the columnar snapshot create/restore/retention-sweep operations that
// consult it.
package snapshotsettings

import "github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"

// Resolve deep-merges the effective settings for (project, bucket, table),
// starting from hard-coded system defaults and applying any stored
// partial override at each level in order. A nil leaf in an override
// leaves the inherited value untouched; this is how a stored `null` leaf
// "restores inheritance" per the merge rule.
func Resolve(project, bucket, table *mmodel.SnapshotSettings) mmodel.EffectiveSnapshotSettings {
	eff := mmodel.SystemDefaultSettings()

	applyLevel(&eff, project, mmodel.SettingsLevelProject)
	applyLevel(&eff, bucket, mmodel.SettingsLevelBucket)
	applyLevel(&eff, table, mmodel.SettingsLevelTable)

	return eff
}

func applyLevel(eff *mmodel.EffectiveSnapshotSettings, partial *mmodel.SnapshotSettings, level string) {
	if partial == nil {
		return
	}

	if partial.Enabled != nil {
		eff.Enabled = *partial.Enabled
		eff.SourceMap.Enabled = level
	}

	if t := partial.AutoSnapshotTriggers; t != nil {
		applyTriggerLeaf(&eff.AutoSnapshotTriggers.DropTable, &eff.SourceMap.AutoSnapshotTriggers.DropTable, t.DropTable, level)
		applyTriggerLeaf(&eff.AutoSnapshotTriggers.TruncateTable, &eff.SourceMap.AutoSnapshotTriggers.TruncateTable, t.TruncateTable, level)
		applyTriggerLeaf(&eff.AutoSnapshotTriggers.DeleteAllRows, &eff.SourceMap.AutoSnapshotTriggers.DeleteAllRows, t.DeleteAllRows, level)
		applyTriggerLeaf(&eff.AutoSnapshotTriggers.DropColumn, &eff.SourceMap.AutoSnapshotTriggers.DropColumn, t.DropColumn, level)
		applyTriggerLeaf(&eff.AutoSnapshotTriggers.AlterColumn, &eff.SourceMap.AutoSnapshotTriggers.AlterColumn, t.AlterColumn, level)
	}

	if r := partial.Retention; r != nil {
		if r.ManualDays != nil {
			eff.Retention.ManualDays = *r.ManualDays
			eff.SourceMap.Retention.ManualDays = level
		}

		if r.AutoDays != nil {
			eff.Retention.AutoDays = *r.AutoDays
			eff.SourceMap.Retention.AutoDays = level
		}
	}
}

func applyTriggerLeaf(dst *bool, src *string, override *bool, level string) {
	if override == nil {
		return
	}

	*dst = *override
	*src = level
}

// TriggerEnabled reports whether op's auto-snapshot trigger is enabled in
// eff, given settings are enabled at all.
func TriggerEnabled(eff mmodel.EffectiveSnapshotSettings, op string) bool {
	if !eff.Enabled {
		return false
	}

	switch op {
	case OpDropTable:
		return eff.AutoSnapshotTriggers.DropTable
	case OpTruncateTable:
		return eff.AutoSnapshotTriggers.TruncateTable
	case OpDeleteAllRows:
		return eff.AutoSnapshotTriggers.DeleteAllRows
	case OpDropColumn:
		return eff.AutoSnapshotTriggers.DropColumn
	case OpAlterColumn:
		return eff.AutoSnapshotTriggers.AlterColumn
	default:
		return false
	}
}

// Destructive operation identifiers consulted against the effective
// auto-snapshot trigger settings.
const (
	OpDropTable     = "drop_table"
	OpTruncateTable = "truncate_table"
	OpDeleteAllRows = "delete_all_rows"
	OpDropColumn    = "drop_column"
	OpAlterColumn   = "alter_column"
)
