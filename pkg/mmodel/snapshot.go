package mmodel

import "time"

// Snapshot type values.
const (
	SnapshotTypeManual             = "manual"
	SnapshotTypeAutoPreDrop        = "auto_predrop"
	SnapshotTypeAutoPreTruncate    = "auto_pretruncate"
	SnapshotTypeAutoPreAlterColumn = "auto_prealtercolumn"
)

// Snapshot is a point-in-time columnar export of one table.
//
// swagger:model Snapshot
type Snapshot struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"projectId"`
	Bucket      string     `json:"bucket"`
	Table       string     `json:"table"`
	Type        string     `json:"type"`
	Path        string     `json:"path"`
	RowCount    int64      `json:"rowCount"`
	SizeBytes   int64      `json:"sizeBytes"`
	SchemaJSON  string     `json:"schemaJson"`
	Description string     `json:"description,omitempty"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

// CreateSnapshotInput is the payload for POST /projects/{id}/snapshots.
//
// swagger:model CreateSnapshotInput
type CreateSnapshotInput struct {
	BranchID    string `json:"branchId" validate:"required"`
	Bucket      string `json:"bucket" validate:"required"`
	Table       string `json:"table" validate:"required"`
	Description string `json:"description,omitempty"`
}

// RestoreSnapshotInput is the payload for POST .../snapshots/{sid}/restore.
//
// swagger:model RestoreSnapshotInput
type RestoreSnapshotInput struct {
	BranchID   string `json:"branchId,omitempty"`
	Bucket     string `json:"bucket,omitempty"`
	TargetName string `json:"targetName,omitempty"`
}
