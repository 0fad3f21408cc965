package query

import (
	"context"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// ListAuditLog returns the most recent audit records for a project.
func (uc *UseCase) ListAuditLog(ctx context.Context, projectID string, limit int64) ([]*mmodel.AuditRecord, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "query.list_audit_log")
	defer span.End()

	logger.Infof("Retrieving audit log for project %s", projectID)

	records, err := uc.AuditRepo.FindByProject(ctx, projectID, limit)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to list audit log", err)
		return nil, err
	}

	return records, nil
}
