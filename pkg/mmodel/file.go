package mmodel

import "time"

// File is a user-uploaded blob, not a table. Staged files carry an
// ExpiresAt; nothing in this tree removes them once it has passed.
//
// swagger:model File
type File struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"projectId"`
	Name        string     `json:"name"`
	Path        string     `json:"path"`
	SizeBytes   int64      `json:"sizeBytes"`
	SHA256      string     `json:"sha256"`
	ContentType string     `json:"contentType"`
	Staging     bool       `json:"staging"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}
