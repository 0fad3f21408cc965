package command

import (
	"context"
	"time"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// CreateAPIKey issues a new project-scoped bearer key. The raw key is
// returned exactly once; only its hash and a display hint are persisted.
func (uc *UseCase) CreateAPIKey(ctx context.Context, requestID, projectID string) (*mmodel.CreateAPIKeyOutput, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "command.create_api_key")
	defer span.End()

	start := time.Now()

	logger.Infof("Trying to create API key for project %s", projectID)

	raw, hint, err := generateRawKey(mmodel.APIKeyPrefixProjectAdmin)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to generate key", err)
		uc.emitAudit(ctx, requestID, projectID, "create", "apikey", projectID, start, err)

		return nil, err
	}

	key := &mmodel.APIKey{
		ProjectID: &projectID,
		IsAdmin:   false,
		KeyHash:   hashKey(raw),
		KeyHint:   hint,
		CreatedAt: time.Now(),
	}

	created, err := uc.APIKeyRepo.Create(ctx, key)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to persist key", err)
	}

	uc.emitAudit(ctx, requestID, projectID, "create", "apikey", projectID, start, err)

	if err != nil {
		return nil, err
	}

	return &mmodel.CreateAPIKeyOutput{APIKey: *created, Key: raw}, nil
}
