// Package mmodel holds the domain entities of the storage control service:
// projects, branches, buckets, tables, files, snapshots, settings, api keys
// and audit records, plus the request payloads that create/update them.
package mmodel

import "time"

// Project status values.
const (
	ProjectStatusActive  = "active"
	ProjectStatusDeleted = "deleted"
)

// Project is the top-level tenant: it owns a directory on the filesystem and
// a set of branches, buckets, tables, files and snapshots.
//
// swagger:model Project
type Project struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Status    string         `json:"status"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt *time.Time     `json:"deletedAt,omitempty"`
}

// CreateProjectInput is the payload for POST /projects.
//
// swagger:model CreateProjectInput
type CreateProjectInput struct {
	ID       string         `json:"id" validate:"required,max=64"`
	Name     string         `json:"name" validate:"required,max=256"`
	Metadata map[string]any `json:"metadata,omitempty" validate:"keymax=100,valuemax=2000,nonested"`
}

// CreateProjectOutput is the response of POST /projects: it carries the
// freshly minted per-project admin key, shown exactly once.
//
// swagger:model CreateProjectOutput
type CreateProjectOutput struct {
	Project
	APIKey string `json:"apiKey"`
}

// UpdateProjectInput is the payload for PATCH /projects/{id}.
//
// swagger:model UpdateProjectInput
type UpdateProjectInput struct {
	Name     *string        `json:"name,omitempty" validate:"omitempty,max=256"`
	Metadata map[string]any `json:"metadata,omitempty" validate:"keymax=100,valuemax=2000,nonested"`
}

// ProjectStats is the computed response of GET /projects/{id}/stats: row
// counts and sizes recomputed from the files on disk, never from cached
// catalog counters.
//
// swagger:model ProjectStats
type ProjectStats struct {
	ProjectID  string       `json:"projectId"`
	TableCount int          `json:"tableCount"`
	TotalRows  int64        `json:"totalRows"`
	TotalBytes int64        `json:"totalBytes"`
	Tables     []TableStats `json:"tables"`
}

// TableStats is one row of ProjectStats.Tables.
type TableStats struct {
	Bucket   string `json:"bucket"`
	Table    string `json:"table"`
	RowCount int64  `json:"rowCount"`
	Bytes    int64  `json:"bytes"`
}

// ReconcileReport is the response of POST /projects/{id}/reconcile.
//
// swagger:model ReconcileReport
type ReconcileReport struct {
	ProjectID      string   `json:"projectId"`
	RebuiltRows    []string `json:"rebuiltRows"`
	RemovedRows    []string `json:"removedRows"`
	StillOrphaned  []string `json:"stillOrphaned"`
}
