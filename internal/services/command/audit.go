package command

import (
	"context"
	"time"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// emitAudit records one append-only audit entry for a state-changing
// operation, writing it to the audit collection and fanning it out to the
// storage.audit topic exchange. opErr is the outcome of the operation being
// audited; a non-nil value is recorded as a failure but never overrides the
// caller's own return value.
func (uc *UseCase) emitAudit(ctx context.Context, requestID, projectID, operation, resourceType, resourceID string, start time.Time, opErr error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "command.emit_audit")
	defer span.End()

	status := mmodel.AuditStatusSuccess

	var errDetails string

	if opErr != nil {
		status = mmodel.AuditStatusFailure
		errDetails = opErr.Error()
	}

	record := &mmodel.AuditRecord{
		ID:             common.GenerateUUIDv7().String(),
		RequestID:      requestID,
		ProjectID:      projectID,
		Operation:      operation,
		ResourceType:   resourceType,
		ResourceID:     resourceID,
		Status:         status,
		DurationMillis: time.Since(start).Milliseconds(),
		ErrorDetails:   errDetails,
		CreatedAt:      time.Now(),
	}

	if uc.AuditRepo != nil {
		if err := uc.AuditRepo.Create(ctx, record); err != nil {
			logger.Errorf("Error writing audit record for %s %s: %v", operation, resourceID, err)
		}
	}

	if uc.AuditPublisher != nil {
		if err := uc.AuditPublisher.PublishAuditRecord(ctx, record); err != nil {
			logger.Errorf("Error publishing audit record for %s %s: %v", operation, resourceID, err)
		}
	}
}
