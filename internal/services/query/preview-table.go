package query

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

const previewRowLimit = 100

// PreviewTable reads a bounded sample of rows from a table through the
// copy-on-write overlay.
func (uc *UseCase) PreviewTable(ctx context.Context, projectID, branchID, bucket, table string) (*mmodel.TablePreview, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "query.preview_table")
	defer span.End()

	logger.Infof("Previewing table %s in bucket %s", table, bucket)

	conn, err := uc.Overlay.Read(ctx, projectID, branchID, bucket, table)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to open table", err)
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.DB.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT %d", table, previewRowLimit))
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to query table", err)
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to read columns", err)
		return nil, err
	}

	preview := &mmodel.TablePreview{Columns: columns}

	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))

		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			mopentelemetry.HandleSpanError(&span, "Failed to scan row", err)
			return nil, err
		}

		preview.Rows = append(preview.Rows, normalizeRow(values))
	}

	if err := rows.Err(); err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed iterating rows", err)
		return nil, err
	}

	return preview, nil
}

func normalizeRow(values []any) []any {
	row := make([]any, len(values))

	for i, v := range values {
		if b, ok := v.(sql.RawBytes); ok {
			row[i] = string(b)
			continue
		}

		row[i] = v
	}

	return row
}
