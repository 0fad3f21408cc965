package mmodel

import "time"

// API key prefixes recognized by the bearer-token auth middleware.
const (
	APIKeyPrefixAdmin       = "admin_"
	APIKeyPrefixProjectAdmin = "proj_"
)

// APIKey is a catalog row recording an issued bearer key. The key itself is
// never stored; only its SHA-256 hash is, and only a prefix/suffix hint is
// kept for display.
//
// swagger:model APIKey
type APIKey struct {
	ID         string     `json:"id"`
	ProjectID  *string    `json:"projectId,omitempty"`
	IsAdmin    bool       `json:"isAdmin"`
	KeyHash    string     `json:"-"`
	KeyHint    string     `json:"keyHint"`
	CreatedAt  time.Time  `json:"createdAt"`
	RevokedAt  *time.Time `json:"revokedAt,omitempty"`
}

// CreateAPIKeyOutput is the response of POST /projects/{id}/keys: the plain
// key is shown exactly once, at creation time.
//
// swagger:model CreateAPIKeyOutput
type CreateAPIKeyOutput struct {
	APIKey
	Key string `json:"key"`
}
