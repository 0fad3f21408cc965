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
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// AlterTableAddColumn appends a new nullable column to a table's schema.
func (uc *UseCase) AlterTableAddColumn(ctx context.Context, requestID, projectID, branchID, bucket, table string, input *mmodel.AlterTableAddColumnInput) (*mmodel.Table, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "command.alter_table_add_column")
	defer span.End()

	start := time.Now()

	logger.Infof("Trying to add column %s to table %s", input.Column.Name, table)

	owningBranch, err := uc.effectiveCatalogBranch(ctx, projectID, branchID, bucket, table)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to resolve owning branch", err)
		uc.emitAudit(ctx, requestID, projectID, "alter_add_column", "table", bucket+"/"+table, start, err)

		return nil, err
	}

	existing, err := uc.TableRepo.Find(ctx, projectID, owningBranch, bucket, table)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to load table", err)
		uc.emitAudit(ctx, requestID, projectID, "alter_add_column", "table", bucket+"/"+table, start, err)

		return nil, err
	}

	for _, c := range existing.Columns {
		if c.Name == input.Column.Name {
			businessErr := common.ValidateBusinessError(cn.ErrSchemaMismatch, reflect.TypeOf(mmodel.Table{}).Name())
			mopentelemetry.HandleSpanError(&span, "Column already exists", businessErr)
			uc.emitAudit(ctx, requestID, projectID, "alter_add_column", "table", bucket+"/"+table, start, businessErr)

			return nil, businessErr
		}
	}

	col := input.Column
	col.Nullable = true

	columns := append(append([]mmodel.Column{}, existing.Columns...), col)

	err = uc.Overlay.Write(ctx, projectID, branchID, bucket, table, func(ctx context.Context, conn *enginefile.Conn) error {
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, col.Name, col.Type)
		_, err := conn.DB.ExecContext(ctx, stmt)

		return err
	})
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to alter table file", err)
		uc.emitAudit(ctx, requestID, projectID, "alter_add_column", "table", bucket+"/"+table, start, err)

		return nil, err
	}

	err = uc.TableRepo.UpdateSchema(ctx, projectID, owningBranch, bucket, table, columns)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to persist schema", err)
	}

	uc.emitAudit(ctx, requestID, projectID, "alter_add_column", "table", bucket+"/"+table, start, err)

	if err != nil {
		return nil, err
	}

	existing.Columns = columns

	return existing, nil
}
