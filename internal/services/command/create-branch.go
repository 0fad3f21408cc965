package command

import (
	"context"
	"time"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// CreateBranch registers a new, initially-empty branch overlay. Its tables
// are only materialized lazily, on first read-through or write.
func (uc *UseCase) CreateBranch(ctx context.Context, requestID, projectID, createdBy string, input *mmodel.CreateBranchInput) (*mmodel.Branch, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "command.create_branch")
	defer span.End()

	start := time.Now()

	logger.Infof("Trying to create branch %s in project %s", input.ID, projectID)

	branch := &mmodel.Branch{
		ID:        input.ID,
		ProjectID: projectID,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	}

	created, err := uc.BranchRepo.Create(ctx, branch)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to create branch", err)
	}

	uc.emitAudit(ctx, requestID, projectID, "create", "branch", input.ID, start, err)

	if err != nil {
		return nil, err
	}

	return created, nil
}
