package query

import (
	"context"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// ListAPIKeys returns every key issued for a project, hash never included.
func (uc *UseCase) ListAPIKeys(ctx context.Context, projectID string) ([]*mmodel.APIKey, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "query.list_api_keys")
	defer span.End()

	logger.Infof("Retrieving API keys for project %s", projectID)

	keys, err := uc.APIKeyRepo.FindAllForProject(ctx, projectID)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to list API keys", err)
		return nil, err
	}

	return keys, nil
}
