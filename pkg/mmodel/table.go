package mmodel

import "time"

// Column describes one ordered column of a table's schema.
//
// swagger:model Column
type Column struct {
	Name     string `json:"name" validate:"required"`
	Type     string `json:"type" validate:"required"`
	Nullable bool   `json:"nullable"`
	Default  *string `json:"default,omitempty"`
}

// Table is a row-oriented relation stored in a single engine file under
// <project>/<bucket>/<table>.<ext> (or the branch-overlay equivalent).
//
// swagger:model Table
type Table struct {
	Name       string     `json:"name"`
	ProjectID  string     `json:"projectId"`
	BranchID   string     `json:"branchId"`
	Bucket     string     `json:"bucket"`
	Columns    []Column   `json:"columns"`
	PrimaryKey []string   `json:"primaryKey,omitempty"`
	RowCount   int64      `json:"rowCount"`
	SizeBytes  int64      `json:"sizeBytes"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Table status values.
const (
	TableStatusActive   = "active"
	TableStatusOrphaned = "orphaned"
)

// CreateTableInput is the payload for POST .../tables.
//
// swagger:model CreateTableInput
type CreateTableInput struct {
	Name       string   `json:"name" validate:"required,max=128"`
	Columns    []Column `json:"columns" validate:"required,min=1,dive"`
	PrimaryKey []string `json:"primaryKey,omitempty"`
}

// AlterTableAddColumnInput is the payload for adding a column. Added columns
// are always nullable; see AlterTableSetNotNullInput for the tightening step.
//
// swagger:model AlterTableAddColumnInput
type AlterTableAddColumnInput struct {
	Column Column `json:"column" validate:"required"`
}

// AlterTableSetNotNullInput tightens a previously-added nullable column to
// NOT NULL, validated against existing NULLs in the target table.
//
// swagger:model AlterTableSetNotNullInput
type AlterTableSetNotNullInput struct {
	ColumnName string `json:"columnName" validate:"required"`
}

// AlterTableDropColumnInput drops a non primary-key column. Dropping a
// primary-key column is rejected (ErrUnmodifiableColumn).
//
// swagger:model AlterTableDropColumnInput
type AlterTableDropColumnInput struct {
	ColumnName string `json:"columnName" validate:"required"`
}

// TablePreview is the response of a read-only preview request: column names
// and a bounded sample of rows.
//
// swagger:model TablePreview
type TablePreview struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}
