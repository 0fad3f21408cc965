package command

import (
	"context"
	"time"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/importexport"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// ExportTable copies a table's rows to an output file and registers the
// result as a non-staging File row.
func (uc *UseCase) ExportTable(ctx context.Context, requestID string, req importexport.ExportRequest) (*mmodel.File, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "command.export_table")
	defer span.End()

	start := time.Now()

	logger.Infof("Trying to export table %s in bucket %s", req.Table, req.Bucket)

	result, err := uc.ImportExport.Export(ctx, req)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to run export pipeline", err)
		uc.emitAudit(ctx, requestID, req.Project, "export", "table", req.Bucket+"/"+req.Table, start, err)

		return nil, err
	}

	file := &mmodel.File{
		ProjectID:   req.Project,
		Name:        req.Table + "-export",
		Path:        result.Path,
		SizeBytes:   result.SizeBytes,
		ContentType: string(req.Format),
		Staging:     false,
		CreatedAt:   time.Now(),
	}

	created, err := uc.FileRepo.Create(ctx, file)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to register exported file", err)
	}

	uc.emitAudit(ctx, requestID, req.Project, "export", "table", req.Bucket+"/"+req.Table, start, err)

	if err != nil {
		return nil, err
	}

	return created, nil
}
