package command

import (
	"context"
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

// AlterTableDropColumn removes a non primary-key column from a table's
// schema, taking a pre-alter snapshot first if the effective settings
// enable it.
func (uc *UseCase) AlterTableDropColumn(ctx context.Context, requestID, projectID, branchID, bucket, table string, input *mmodel.AlterTableDropColumnInput) (*mmodel.Table, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "command.alter_table_drop_column")
	defer span.End()

	start := time.Now()

	logger.Infof("Trying to drop column %s from table %s", input.ColumnName, table)

	owningBranch, err := uc.effectiveCatalogBranch(ctx, projectID, branchID, bucket, table)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to resolve owning branch", err)
		uc.emitAudit(ctx, requestID, projectID, "alter_drop_column", "table", bucket+"/"+table, start, err)

		return nil, err
	}

	existing, err := uc.TableRepo.Find(ctx, projectID, owningBranch, bucket, table)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to load table", err)
		uc.emitAudit(ctx, requestID, projectID, "alter_drop_column", "table", bucket+"/"+table, start, err)

		return nil, err
	}

	for _, pk := range existing.PrimaryKey {
		if pk == input.ColumnName {
			businessErr := common.ValidateBusinessError(cn.ErrUnmodifiableColumn, reflect.TypeOf(mmodel.Table{}).Name())
			mopentelemetry.HandleSpanError(&span, "Primary key column cannot be dropped", businessErr)
			uc.emitAudit(ctx, requestID, projectID, "alter_drop_column", "table", bucket+"/"+table, start, businessErr)

			return nil, businessErr
		}
	}

	if err := uc.maybeAutoSnapshot(ctx, projectID, branchID, bucket, table, snapshotsettings.OpDropColumn, mmodel.SnapshotTypeAutoPreAlterColumn); err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to take pre-drop snapshot", err)
		uc.emitAudit(ctx, requestID, projectID, "alter_drop_column", "table", bucket+"/"+table, start, err)

		return nil, err
	}

	columns := make([]mmodel.Column, 0, len(existing.Columns))

	for _, c := range existing.Columns {
		if c.Name != input.ColumnName {
			columns = append(columns, c)
		}
	}

	err = uc.Overlay.Write(ctx, projectID, branchID, bucket, table, func(ctx context.Context, conn *enginefile.Conn) error {
		_, err := conn.DB.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", table, input.ColumnName))
		return err
	})
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to alter table file", err)
		uc.emitAudit(ctx, requestID, projectID, "alter_drop_column", "table", bucket+"/"+table, start, err)

		return nil, err
	}

	err = uc.TableRepo.UpdateSchema(ctx, projectID, owningBranch, bucket, table, columns)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to persist schema", err)
	}

	uc.emitAudit(ctx, requestID, projectID, "alter_drop_column", "table", bucket+"/"+table, start, err)

	if err != nil {
		return nil, err
	}

	existing.Columns = columns

	return existing, nil
}
