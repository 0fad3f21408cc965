package mmodel

// Settings entity levels, used both as catalog row discriminators and as
// inheritance-source labels in EffectiveSnapshotSettings.SourceMap.
const (
	SettingsLevelSystem  = "system"
	SettingsLevelProject = "project"
	SettingsLevelBucket  = "bucket"
	SettingsLevelTable   = "table"
)

// AutoSnapshotTriggers controls which destructive operations trigger an
// automatic pre-operation snapshot. Every field is a tri-state pointer: nil
// means "inherit", non-nil means "set at this level, overriding lower
// levels" (a stored `null` leaf removes an override and restores
// inheritance, per the hierarchical configuration resolver).
type AutoSnapshotTriggers struct {
	DropTable     *bool `json:"dropTable,omitempty"`
	TruncateTable *bool `json:"truncateTable,omitempty"`
	DeleteAllRows *bool `json:"deleteAllRows,omitempty"`
	DropColumn    *bool `json:"dropColumn,omitempty"`
	AlterColumn   *bool `json:"alterColumn,omitempty"`
}

// RetentionConfig is the number of days a snapshot of each type is kept
// before the retention sweeper deletes it.
type RetentionConfig struct {
	ManualDays *int `json:"manualDays,omitempty"`
	AutoDays   *int `json:"autoDays,omitempty"`
}

// SnapshotSettings is a partial override stored at one level (system,
// project, bucket or table) of the four-level inheritance chain.
//
// swagger:model SnapshotSettings
type SnapshotSettings struct {
	Enabled              *bool                 `json:"enabled,omitempty"`
	AutoSnapshotTriggers *AutoSnapshotTriggers `json:"autoSnapshotTriggers,omitempty"`
	Retention            *RetentionConfig      `json:"retention,omitempty"`
}

// EffectiveAutoSnapshotTriggers is the fully-resolved (non-pointer) form of
// AutoSnapshotTriggers after deep-merging all four levels.
type EffectiveAutoSnapshotTriggers struct {
	DropTable     bool `json:"dropTable"`
	TruncateTable bool `json:"truncateTable"`
	DeleteAllRows bool `json:"deleteAllRows"`
	DropColumn    bool `json:"dropColumn"`
	AlterColumn   bool `json:"alterColumn"`
}

// EffectiveRetentionConfig is the fully-resolved form of RetentionConfig.
type EffectiveRetentionConfig struct {
	ManualDays int `json:"manualDays"`
	AutoDays   int `json:"autoDays"`
}

// EffectiveSnapshotSettings is the result of deep-merging system defaults
// with any stored project/bucket/table partial overrides, together with a
// parallel map identifying which level contributed each leaf.
//
// swagger:model EffectiveSnapshotSettings
type EffectiveSnapshotSettings struct {
	Enabled              bool                          `json:"enabled"`
	AutoSnapshotTriggers EffectiveAutoSnapshotTriggers `json:"autoSnapshotTriggers"`
	Retention            EffectiveRetentionConfig      `json:"retention"`
	SourceMap            SettingsSourceMap             `json:"sourceMap"`
}

// SettingsSourceMap mirrors the shape of EffectiveSnapshotSettings but every
// leaf holds the level ("system"/"project"/"bucket"/"table") that supplied
// the effective value.
type SettingsSourceMap struct {
	Enabled              string                   `json:"enabled"`
	AutoSnapshotTriggers AutoSnapshotTriggersSourceMap `json:"autoSnapshotTriggers"`
	Retention            RetentionSourceMap       `json:"retention"`
}

// AutoSnapshotTriggersSourceMap is the per-leaf source map for
// AutoSnapshotTriggers.
type AutoSnapshotTriggersSourceMap struct {
	DropTable     string `json:"dropTable"`
	TruncateTable string `json:"truncateTable"`
	DeleteAllRows string `json:"deleteAllRows"`
	DropColumn    string `json:"dropColumn"`
	AlterColumn   string `json:"alterColumn"`
}

// RetentionSourceMap is the per-leaf source map for RetentionConfig.
type RetentionSourceMap struct {
	ManualDays string `json:"manualDays"`
	AutoDays   string `json:"autoDays"`
}

// SystemDefaultSettings are the hard-coded system-level defaults: only
// drop_table triggers an auto-snapshot out of the box, retention is 90 days
// for manual snapshots and 7 for automatic ones, and settings are enabled
// unless a higher level overrides it.
func SystemDefaultSettings() EffectiveSnapshotSettings {
	return EffectiveSnapshotSettings{
		Enabled: true,
		AutoSnapshotTriggers: EffectiveAutoSnapshotTriggers{
			DropTable: true,
		},
		Retention: EffectiveRetentionConfig{
			ManualDays: 90,
			AutoDays:   7,
		},
		SourceMap: SettingsSourceMap{
			Enabled: SettingsLevelSystem,
			AutoSnapshotTriggers: AutoSnapshotTriggersSourceMap{
				DropTable:     SettingsLevelSystem,
				TruncateTable: SettingsLevelSystem,
				DeleteAllRows: SettingsLevelSystem,
				DropColumn:    SettingsLevelSystem,
				AlterColumn:   SettingsLevelSystem,
			},
			Retention: RetentionSourceMap{
				ManualDays: SettingsLevelSystem,
				AutoDays:   SettingsLevelSystem,
			},
		},
	}
}
