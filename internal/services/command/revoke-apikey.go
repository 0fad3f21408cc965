package command

import (
	"context"
	"time"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
)

// RevokeAPIKey marks an issued key revoked; the auth middleware rejects any
// further request bearing it.
func (uc *UseCase) RevokeAPIKey(ctx context.Context, requestID, projectID, keyID string) error {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "command.revoke_api_key")
	defer span.End()

	start := time.Now()

	logger.Infof("Trying to revoke API key %s", keyID)

	err := uc.APIKeyRepo.Revoke(ctx, keyID)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to revoke key", err)
	}

	uc.emitAudit(ctx, requestID, projectID, "revoke", "apikey", keyID, start, err)

	return err
}
