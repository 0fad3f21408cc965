package query

import (
	"context"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// GetFile retrieves a file's catalog row by id.
func (uc *UseCase) GetFile(ctx context.Context, id string) (*mmodel.File, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "query.get_file")
	defer span.End()

	logger.Infof("Retrieving file for id: %s", id)

	file, err := uc.FileRepo.Find(ctx, id)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get file", err)
		return nil, err
	}

	return file, nil
}
