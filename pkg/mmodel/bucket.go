package mmodel

import "time"

// Bucket stage values.
const (
	BucketStageIn  = "in"
	BucketStageOut = "out"
	BucketStageSys = "sys"
)

// Bucket is a namespace inside a project branch, materialized as a
// directory. A bucket whose LinkedFrom is set exposes its source bucket's
// tables transparently and is read-only.
//
// swagger:model Bucket
type Bucket struct {
	Name       string     `json:"name"`
	ProjectID  string     `json:"projectId"`
	BranchID   string     `json:"branchId"`
	Stage      string     `json:"stage"`
	SharedWith []string   `json:"sharedWith,omitempty"`
	LinkedFrom *BucketLink `json:"linkedFrom,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// BucketLink is a reference to a source project+bucket that this bucket
// transparently reads through. Links may only be resolved one hop.
type BucketLink struct {
	ProjectID string `json:"projectId"`
	Bucket    string `json:"bucket"`
}

// CreateBucketInput is the payload for POST .../buckets.
//
// swagger:model CreateBucketInput
type CreateBucketInput struct {
	Name       string         `json:"name" validate:"required,max=128"`
	Stage      string         `json:"stage" validate:"required,oneof=in out sys"`
	SharedWith []string       `json:"sharedWith,omitempty"`
	LinkedFrom *BucketLink    `json:"linkedFrom,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty" validate:"keymax=100,valuemax=2000,nonested"`
}

// UpdateBucketInput is the payload for PATCH .../buckets/{b}.
//
// swagger:model UpdateBucketInput
type UpdateBucketInput struct {
	SharedWith []string       `json:"sharedWith,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty" validate:"keymax=100,valuemax=2000,nonested"`
}
