package command

import (
	"context"
	"time"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/importexport"
)

// ImportTable runs the stage -> merge -> cleanup pipeline against a target
// table, holding its write lock for the whole operation.
func (uc *UseCase) ImportTable(ctx context.Context, requestID string, req importexport.ImportRequest) (importexport.ImportResult, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "command.import_table")
	defer span.End()

	start := time.Now()

	logger.Infof("Trying to import into table %s in bucket %s", req.Table, req.Bucket)

	result, err := uc.ImportExport.Run(ctx, req)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to run import pipeline", err)
	}

	uc.emitAudit(ctx, requestID, req.Project, "import", "table", req.Bucket+"/"+req.Table, start, err)

	if err != nil {
		return importexport.ImportResult{}, err
	}

	err = uc.TableRepo.UpdateCounters(ctx, req.Project, req.Branch, req.Bucket, req.Table, result.RowsAfter, result.BytesAfter)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to update table counters", err)
	}

	return result, nil
}
