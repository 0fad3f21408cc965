package mmodel

import "time"

// AuditRecord is an append-only entry describing one state-changing
// operation. It is stored in the audit Mongo collection and additionally
// published to the storage.audit topic exchange for external consumers.
//
// swagger:model AuditRecord
type AuditRecord struct {
	ID              string         `json:"id" bson:"_id,omitempty"`
	RequestID       string         `json:"requestId" bson:"request_id"`
	ProjectID       string         `json:"projectId" bson:"project_id"`
	Operation       string         `json:"operation" bson:"operation"`
	ResourceType    string         `json:"resourceType" bson:"resource_type"`
	ResourceID      string         `json:"resourceId" bson:"resource_id"`
	Status          string         `json:"status" bson:"status"`
	DurationMillis  int64          `json:"durationMillis" bson:"duration_millis"`
	ErrorDetails    string         `json:"errorDetails,omitempty" bson:"error_details,omitempty"`
	CorrelationID   string         `json:"correlationId,omitempty" bson:"correlation_id,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt       time.Time      `json:"createdAt" bson:"created_at"`
}

// Audit record status values.
const (
	AuditStatusSuccess = "success"
	AuditStatusFailure = "failure"
)
