package command

import (
	"context"
	"reflect"
	"time"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// UpdateProject patches a project's name and/or metadata.
func (uc *UseCase) UpdateProject(ctx context.Context, requestID, id string, input *mmodel.UpdateProjectInput) (*mmodel.Project, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "command.update_project")
	defer span.End()

	start := time.Now()

	logger.Infof("Trying to update project: %s", id)

	if err := common.CheckMetadataKeyAndValueLength(2000, input.Metadata); err != nil {
		businessErr := common.ValidateBusinessError(err, reflect.TypeOf(mmodel.Project{}).Name())
		mopentelemetry.HandleSpanError(&span, "Failed to validate project metadata", businessErr)
		uc.emitAudit(ctx, requestID, id, "update", "project", id, start, businessErr)

		return nil, businessErr
	}

	existing, err := uc.ProjectRepo.Find(ctx, id)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to find project", err)
		uc.emitAudit(ctx, requestID, id, "update", "project", id, start, err)

		return nil, err
	}

	if input.Name != nil {
		existing.Name = *input.Name
	}

	if input.Metadata != nil {
		existing.Metadata = input.Metadata
	}

	updated, err := uc.ProjectRepo.Update(ctx, id, existing)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to update project", err)
		uc.emitAudit(ctx, requestID, id, "update", "project", id, start, err)

		return nil, err
	}

	uc.emitAudit(ctx, requestID, id, "update", "project", id, start, nil)

	return updated, nil
}
