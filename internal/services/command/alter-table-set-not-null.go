package command

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"time"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	cn "github.com/padak/keboola-storage-duckdb-sub001/common/constant"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/enginefile"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/snapshotsettings"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// AlterTableSetNotNull tightens a nullable column to NOT NULL, refusing the
// change if any existing row currently stores a NULL in that column.
func (uc *UseCase) AlterTableSetNotNull(ctx context.Context, requestID, projectID, branchID, bucket, table string, input *mmodel.AlterTableSetNotNullInput) (*mmodel.Table, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "command.alter_table_set_not_null")
	defer span.End()

	start := time.Now()

	logger.Infof("Trying to set column %s of table %s to NOT NULL", input.ColumnName, table)

	if err := uc.maybeAutoSnapshot(ctx, projectID, branchID, bucket, table, snapshotsettings.OpAlterColumn, mmodel.SnapshotTypeAutoPreAlterColumn); err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to take pre-alter snapshot", err)
		uc.emitAudit(ctx, requestID, projectID, "alter_set_not_null", "table", bucket+"/"+table, start, err)

		return nil, err
	}

	owningBranch, err := uc.effectiveCatalogBranch(ctx, projectID, branchID, bucket, table)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to resolve owning branch", err)
		uc.emitAudit(ctx, requestID, projectID, "alter_set_not_null", "table", bucket+"/"+table, start, err)

		return nil, err
	}

	existing, err := uc.TableRepo.Find(ctx, projectID, owningBranch, bucket, table)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to load table", err)
		uc.emitAudit(ctx, requestID, projectID, "alter_set_not_null", "table", bucket+"/"+table, start, err)

		return nil, err
	}

	var hasNull bool

	err = uc.Overlay.Write(ctx, projectID, branchID, bucket, table, func(ctx context.Context, conn *enginefile.Conn) error {
		row := conn.DB.QueryRowContext(ctx, fmt.Sprintf("SELECT 1 FROM %s WHERE %s IS NULL LIMIT 1", table, input.ColumnName))

		var probe int

		switch scanErr := row.Scan(&probe); {
		case scanErr == nil:
			hasNull = true
		case scanErr == sql.ErrNoRows:
			hasNull = false
		default:
			return scanErr
		}

		if hasNull {
			return nil
		}

		_, execErr := conn.DB.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL", table, input.ColumnName))

		return execErr
	})
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to inspect or alter column", err)
		uc.emitAudit(ctx, requestID, projectID, "alter_set_not_null", "table", bucket+"/"+table, start, err)

		return nil, err
	}

	if hasNull {
		businessErr := common.ValidateBusinessError(cn.ErrNotNullViolation, reflect.TypeOf(mmodel.Table{}).Name())
		mopentelemetry.HandleSpanError(&span, "Column contains NULL values", businessErr)
		uc.emitAudit(ctx, requestID, projectID, "alter_set_not_null", "table", bucket+"/"+table, start, businessErr)

		return nil, businessErr
	}

	columns := make([]mmodel.Column, len(existing.Columns))
	copy(columns, existing.Columns)

	for i := range columns {
		if columns[i].Name == input.ColumnName {
			columns[i].Nullable = false
		}
	}

	err = uc.TableRepo.UpdateSchema(ctx, projectID, owningBranch, bucket, table, columns)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to persist schema", err)
	}

	uc.emitAudit(ctx, requestID, projectID, "alter_set_not_null", "table", bucket+"/"+table, start, err)

	if err != nil {
		return nil, err
	}

	existing.Columns = columns

	return existing, nil
}
