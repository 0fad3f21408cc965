package importexport

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	cn "github.com/padak/keboola-storage-duckdb-sub001/common/constant"
)

// ExportFormat enumerates the recognized export output encodings.
type ExportFormat string

// Recognized export formats.
const (
	ExportFormatParquet ExportFormat = "parquet"
	ExportFormatCSV     ExportFormat = "csv"
)

// ExportRequest configures one export run. Exports take read-only access
// against the source table.
type ExportRequest struct {
	Project, Branch, Bucket, Table string
	Format                         ExportFormat
	Where                          string
	Columns                        []string
	OrderBy                        string
	RowLimit                       int64
	Compression                    string
	DestinationPath                string
}

// ExportResult reports what was written.
type ExportResult struct {
	Path      string
	RowCount  int64
	SizeBytes int64
}

// Export stages a target table to an output file, writing atomically
// (stage then rename) and returning enough for the caller to register it
// in the File service.
func (p *Pipeline) Export(ctx context.Context, req ExportRequest) (ExportResult, error) {
	conn, err := p.Overlay.Read(ctx, req.Project, req.Branch, req.Bucket, req.Table)
	if err != nil {
		return ExportResult{}, err
	}
	defer conn.Close()

	projection := "*"
	if len(req.Columns) > 0 {
		projection = strings.Join(req.Columns, ", ")
	}

	query := fmt.Sprintf("SELECT %s FROM %s", projection, req.Table)

	if req.Where != "" {
		query += " WHERE " + req.Where
	}

	if req.OrderBy != "" {
		query += " ORDER BY " + req.OrderBy
	}

	if req.RowLimit > 0 {
		query += fmt.Sprintf(" LIMIT %d", req.RowLimit)
	}

	stagingPath := req.DestinationPath + ".staging"

	copyStmt, err := copyStatement(query, stagingPath, req.Format, req.Compression)
	if err != nil {
		return ExportResult{}, err
	}

	if _, err := conn.DB.ExecContext(ctx, copyStmt); err != nil {
		os.Remove(stagingPath)
		return ExportResult{}, common.ValidateBusinessError(cn.ErrEngineIO, "Export")
	}

	var rowCount int64

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM (%s)", query)
	if err := conn.DB.QueryRowContext(ctx, countQuery).Scan(&rowCount); err != nil {
		os.Remove(stagingPath)
		return ExportResult{}, common.ValidateBusinessError(cn.ErrEngineIO, "Export")
	}

	if err := os.Rename(stagingPath, req.DestinationPath); err != nil {
		os.Remove(stagingPath)
		return ExportResult{}, common.ValidateBusinessError(cn.ErrEngineIO, "Export")
	}

	info, err := os.Stat(req.DestinationPath)
	if err != nil {
		return ExportResult{}, common.ValidateBusinessError(cn.ErrEngineIO, "Export")
	}

	return ExportResult{Path: req.DestinationPath, RowCount: rowCount, SizeBytes: info.Size()}, nil
}

func copyStatement(query, path string, format ExportFormat, compression string) (string, error) {
	switch format {
	case ExportFormatParquet:
		comp := compression
		if comp == "" {
			comp = "ZSTD"
		}

		return fmt.Sprintf("COPY (%s) TO '%s' (FORMAT PARQUET, COMPRESSION %s)", query, path, comp), nil

	case ExportFormatCSV:
		return fmt.Sprintf("COPY (%s) TO '%s' (FORMAT CSV, HEADER)", query, path), nil

	default:
		return "", common.ValidateBusinessError(cn.ErrExportFilterInvalid, "ExportRequest")
	}
}
