package mmodel

import "time"

// DefaultBranchID is the reserved branch id denoting the production branch,
// materialized directly under the project directory.
const DefaultBranchID = "default"

// Branch is a named logical view of a project. The reserved id "default" is
// the production branch; every other branch is a copy-on-write overlay that
// starts out empty and lazily copies tables from default on first write.
//
// swagger:model Branch
type Branch struct {
	ID        string          `json:"id"`
	ProjectID string          `json:"projectId"`
	CreatedBy string          `json:"createdBy"`
	CreatedAt time.Time       `json:"createdAt"`
	Copied    []TableRef      `json:"copied"`
	Deleted   []TableRef      `json:"deleted"`
}

// TableRef identifies a (bucket, table) pair within a branch's copied/deleted
// overlay sets.
type TableRef struct {
	Bucket string `json:"bucket"`
	Table  string `json:"table"`
}

// CreateBranchInput is the payload for POST /projects/{id}/branches.
//
// swagger:model CreateBranchInput
type CreateBranchInput struct {
	ID string `json:"id" validate:"required,max=64"`
}
