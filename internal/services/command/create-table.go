package command

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	cn "github.com/padak/keboola-storage-duckdb-sub001/common/constant"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/enginefile"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// tableRegistrar registers (or rolls back) a table's catalog row in the
// same atomic step enginefile.Manager uses to stage and rename its file.
type tableRegistrar struct {
	repo  interface {
		Create(ctx context.Context, t *mmodel.Table) (*mmodel.Table, error)
		Delete(ctx context.Context, projectID, branchID, bucket, name string) error
	}
	table *mmodel.Table
}

func (r *tableRegistrar) Register(ctx context.Context) error {
	created, err := r.repo.Create(ctx, r.table)
	if err != nil {
		return err
	}

	*r.table = *created

	return nil
}

func (r *tableRegistrar) Rollback(ctx context.Context) error {
	return r.repo.Delete(ctx, r.table.ProjectID, r.table.BranchID, r.table.Bucket, r.table.Name)
}

// CreateTable creates a new table's engine file and catalog row atomically.
func (uc *UseCase) CreateTable(ctx context.Context, requestID, projectID, branchID, bucket string, input *mmodel.CreateTableInput) (*mmodel.Table, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "command.create_table")
	defer span.End()

	start := time.Now()

	logger.Infof("Trying to create table %s in bucket %s", input.Name, bucket)

	if len(input.Columns) == 0 {
		err := common.ValidateBusinessError(cn.ErrSchemaMismatch, reflect.TypeOf(mmodel.Table{}).Name())
		mopentelemetry.HandleSpanError(&span, "Failed to validate columns", err)
		uc.emitAudit(ctx, requestID, projectID, "create", "table", bucket+"/"+input.Name, start, err)

		return nil, err
	}

	table := &mmodel.Table{
		Name:       input.Name,
		ProjectID:  projectID,
		BranchID:   branchID,
		Bucket:     bucket,
		Columns:    input.Columns,
		PrimaryKey: input.PrimaryKey,
		Status:     mmodel.TableStatusActive,
		CreatedAt:  time.Now(),
	}

	registrar := &tableRegistrar{repo: uc.TableRepo, table: table}

	err := uc.Overlay.Create(ctx, projectID, branchID, bucket, input.Name, registrar, func(ctx context.Context, conn *enginefile.Conn) error {
		_, err := conn.DB.ExecContext(ctx, buildCreateTableSQL(input.Name, input.Columns, input.PrimaryKey))
		return err
	})
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to create table", err)
	}

	uc.emitAudit(ctx, requestID, projectID, "create", "table", bucket+"/"+input.Name, start, err)

	if err != nil {
		return nil, err
	}

	return table, nil
}

func buildCreateTableSQL(name string, columns []mmodel.Column, primaryKey []string) string {
	defs := make([]string, 0, len(columns)+1)

	for _, c := range columns {
		def := fmt.Sprintf("%s %s", c.Name, c.Type)

		if !c.Nullable {
			def += " NOT NULL"
		}

		if c.Default != nil {
			def += " DEFAULT " + *c.Default
		}

		defs = append(defs, def)
	}

	if len(primaryKey) > 0 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(primaryKey, ", ")))
	}

	return fmt.Sprintf("CREATE TABLE %s (%s)", name, strings.Join(defs, ", "))
}
