package command

import (
	"context"
	"reflect"
	"time"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// CreateProject registers a new project and mints its project-admin key.
// The raw key is returned exactly once; only its hash is ever persisted.
func (uc *UseCase) CreateProject(ctx context.Context, requestID string, input *mmodel.CreateProjectInput) (*mmodel.CreateProjectOutput, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "command.create_project")
	defer span.End()

	start := time.Now()

	logger.Infof("Trying to create project: %s", input.ID)

	if err := common.CheckMetadataKeyAndValueLength(2000, input.Metadata); err != nil {
		businessErr := common.ValidateBusinessError(err, reflect.TypeOf(mmodel.Project{}).Name())
		mopentelemetry.HandleSpanError(&span, "Failed to validate project metadata", businessErr)
		uc.emitAudit(ctx, requestID, input.ID, "create", "project", input.ID, start, businessErr)

		return nil, businessErr
	}

	project := &mmodel.Project{
		ID:        input.ID,
		Name:      input.Name,
		Status:    mmodel.ProjectStatusActive,
		Metadata:  input.Metadata,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	created, err := uc.ProjectRepo.Create(ctx, project)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to create project", err)
		uc.emitAudit(ctx, requestID, input.ID, "create", "project", input.ID, start, err)

		return nil, err
	}

	if _, err := uc.BranchRepo.Create(ctx, &mmodel.Branch{
		ID:        mmodel.DefaultBranchID,
		ProjectID: created.ID,
		CreatedBy: "system",
		CreatedAt: time.Now(),
	}); err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to create default branch", err)
		uc.emitAudit(ctx, requestID, input.ID, "create", "project", input.ID, start, err)

		return nil, err
	}

	raw, hint, err := generateRawKey(mmodel.APIKeyPrefixProjectAdmin)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to generate project admin key", err)
		uc.emitAudit(ctx, requestID, input.ID, "create", "project", input.ID, start, err)

		return nil, err
	}

	projectID := created.ID

	key := &mmodel.APIKey{
		ID:        common.GenerateUUIDv7().String(),
		ProjectID: &projectID,
		IsAdmin:   false,
		KeyHash:   hashKey(raw),
		KeyHint:   hint,
		CreatedAt: time.Now(),
	}

	if _, err := uc.APIKeyRepo.Create(ctx, key); err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to persist project admin key", err)
		uc.emitAudit(ctx, requestID, input.ID, "create", "project", input.ID, start, err)

		return nil, err
	}

	uc.emitAudit(ctx, requestID, input.ID, "create", "project", input.ID, start, nil)

	return &mmodel.CreateProjectOutput{Project: *created, APIKey: raw}, nil
}
