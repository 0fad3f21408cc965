// Package table implements the Postgres-backed catalog rows describing a
// table's schema, primary key, and cached size/row-count counters.
package table

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"reflect"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	cn "github.com/padak/keboola-storage-duckdb-sub001/common/constant"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mpostgres"
	pgerr "github.com/padak/keboola-storage-duckdb-sub001/internal/adapters/postgres"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// Repository provides operations for table catalog entries.
type Repository interface {
	Create(ctx context.Context, t *mmodel.Table) (*mmodel.Table, error)
	Find(ctx context.Context, projectID, branchID, bucket, name string) (*mmodel.Table, error)
	FindAll(ctx context.Context, projectID, branchID, bucket, nameFilter string) ([]*mmodel.Table, error)
	UpdateSchema(ctx context.Context, projectID, branchID, bucket, name string, columns []mmodel.Column) error
	UpdateCounters(ctx context.Context, projectID, branchID, bucket, name string, rowCount, sizeBytes int64) error
	MarkOrphaned(ctx context.Context, projectID, branchID, bucket, name string) error
	MarkActive(ctx context.Context, projectID, branchID, bucket, name string) error
	Delete(ctx context.Context, projectID, branchID, bucket, name string) error
}

// PostgreSQLRepository is a Postgres-specific implementation of Repository.
type PostgreSQLRepository struct {
	connection *mpostgres.PostgresConnection
}

// NewPostgreSQLRepository returns a new PostgreSQLRepository using the given connection.
func NewPostgreSQLRepository(pc *mpostgres.PostgresConnection) *PostgreSQLRepository {
	return &PostgreSQLRepository{connection: pc}
}

// Model is the Postgres row shape for a table.
type Model struct {
	Name       string
	ProjectID  string
	BranchID   string
	Bucket     string
	Columns    []byte
	PrimaryKey []byte
	RowCount   int64
	SizeBytes  int64
	Status     string
	CreatedAt  time.Time
}

// FromEntity populates m from t.
func (m *Model) FromEntity(t *mmodel.Table) {
	m.Name, m.ProjectID, m.BranchID, m.Bucket = t.Name, t.ProjectID, t.BranchID, t.Bucket
	m.RowCount, m.SizeBytes, m.Status, m.CreatedAt = t.RowCount, t.SizeBytes, t.Status, t.CreatedAt
	m.Columns, _ = json.Marshal(t.Columns)
	m.PrimaryKey, _ = json.Marshal(t.PrimaryKey)
}

// ToEntity converts m to its domain entity.
func (m *Model) ToEntity() *mmodel.Table {
	t := &mmodel.Table{
		Name: m.Name, ProjectID: m.ProjectID, BranchID: m.BranchID, Bucket: m.Bucket,
		RowCount: m.RowCount, SizeBytes: m.SizeBytes, Status: m.Status, CreatedAt: m.CreatedAt,
	}

	if len(m.Columns) > 0 {
		_ = json.Unmarshal(m.Columns, &t.Columns)
	}

	if len(m.PrimaryKey) > 0 {
		_ = json.Unmarshal(m.PrimaryKey, &t.PrimaryKey)
	}

	return t
}

// Create inserts a new table catalog row.
func (r *PostgreSQLRepository) Create(ctx context.Context, t *mmodel.Table) (*mmodel.Table, error) {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.create_table")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return nil, err
	}

	record := &Model{}
	record.FromEntity(t)

	_, err = db.ExecContext(ctx,
		`INSERT INTO "table" (name, project_id, branch_id, bucket, columns, primary_key, row_count, size_bytes, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		record.Name, record.ProjectID, record.BranchID, record.Bucket, record.Columns, record.PrimaryKey,
		record.RowCount, record.SizeBytes, record.Status, record.CreatedAt)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute insert query", err)

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return nil, pgerr.ValidatePGError(pgErr, reflect.TypeOf(mmodel.Table{}).Name(), t.Name)
		}

		return nil, err
	}

	return record.ToEntity(), nil
}

// Find retrieves a table by (project, branch, bucket, name).
func (r *PostgreSQLRepository) Find(ctx context.Context, projectID, branchID, bucket, name string) (*mmodel.Table, error) {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.find_table")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return nil, err
	}

	record := &Model{}

	row := db.QueryRowContext(ctx,
		`SELECT name, project_id, branch_id, bucket, columns, primary_key, row_count, size_bytes, status, created_at
		 FROM "table" WHERE project_id = $1 AND branch_id = $2 AND bucket = $3 AND name = $4`,
		projectID, branchID, bucket, name)

	if err := row.Scan(&record.Name, &record.ProjectID, &record.BranchID, &record.Bucket, &record.Columns,
		&record.PrimaryKey, &record.RowCount, &record.SizeBytes, &record.Status, &record.CreatedAt); err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to scan row", err)

		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ValidateBusinessError(cn.ErrTableNotFound, reflect.TypeOf(mmodel.Table{}).Name())
		}

		return nil, err
	}

	return record.ToEntity(), nil
}

// FindAll lists every table registered under (project, branch, bucket),
// optionally narrowed to names matching nameFilter. The filter is
// accent-insensitive: searching "clientes" also matches "cliêntes".
func (r *PostgreSQLRepository) FindAll(ctx context.Context, projectID, branchID, bucket, nameFilter string) ([]*mmodel.Table, error) {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.find_all_tables")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return nil, err
	}

	query := `SELECT name, project_id, branch_id, bucket, columns, primary_key, row_count, size_bytes, status, created_at
	          FROM "table" WHERE project_id = $1 AND branch_id = $2 AND bucket = $3`
	args := []any{projectID, branchID, bucket}

	if nameFilter != "" {
		query += " AND name ~* $4"
		args = append(args, mpostgres.RegexIgnoreAccents(regexp.QuoteMeta(nameFilter)))
	}

	query += " ORDER BY created_at"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute query", err)
		return nil, err
	}
	defer rows.Close()

	var tables []*mmodel.Table

	for rows.Next() {
		record := &Model{}
		if err := rows.Scan(&record.Name, &record.ProjectID, &record.BranchID, &record.Bucket, &record.Columns,
			&record.PrimaryKey, &record.RowCount, &record.SizeBytes, &record.Status, &record.CreatedAt); err != nil {
			mopentelemetry.HandleSpanError(&span, "Failed to scan row", err)
			return nil, err
		}

		tables = append(tables, record.ToEntity())
	}

	return tables, rows.Err()
}

// UpdateSchema replaces the stored column list, e.g. after an add/drop/
// alter-column operation.
func (r *PostgreSQLRepository) UpdateSchema(ctx context.Context, projectID, branchID, bucket, name string, columns []mmodel.Column) error {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.update_table_schema")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return err
	}

	payload, err := json.Marshal(columns)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to marshal columns", err)
		return err
	}

	_, err = db.ExecContext(ctx,
		`UPDATE "table" SET columns = $1 WHERE project_id = $2 AND branch_id = $3 AND bucket = $4 AND name = $5`,
		payload, projectID, branchID, bucket, name)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute update query", err)
	}

	return err
}

// UpdateCounters refreshes the cached row-count/size counters a snapshot
// or reconcile pass recomputed.
func (r *PostgreSQLRepository) UpdateCounters(ctx context.Context, projectID, branchID, bucket, name string, rowCount, sizeBytes int64) error {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.update_table_counters")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return err
	}

	_, err = db.ExecContext(ctx,
		`UPDATE "table" SET row_count = $1, size_bytes = $2 WHERE project_id = $3 AND branch_id = $4 AND bucket = $5 AND name = $6`,
		rowCount, sizeBytes, projectID, branchID, bucket, name)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute update query", err)
	}

	return err
}

// MarkOrphaned flags a table row whose engine file reconcile found missing
// or unregistered, per the reconcile report's "still orphaned" bucket.
func (r *PostgreSQLRepository) MarkOrphaned(ctx context.Context, projectID, branchID, bucket, name string) error {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.mark_table_orphaned")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return err
	}

	_, err = db.ExecContext(ctx,
		`UPDATE "table" SET status = $1 WHERE project_id = $2 AND branch_id = $3 AND bucket = $4 AND name = $5`,
		mmodel.TableStatusOrphaned, projectID, branchID, bucket, name)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute update query", err)
	}

	return err
}

// MarkActive clears a table row's orphaned status once reconciliation finds
// its engine file intact again.
func (r *PostgreSQLRepository) MarkActive(ctx context.Context, projectID, branchID, bucket, name string) error {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.mark_table_active")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return err
	}

	_, err = db.ExecContext(ctx,
		`UPDATE "table" SET status = $1 WHERE project_id = $2 AND branch_id = $3 AND bucket = $4 AND name = $5`,
		mmodel.TableStatusActive, projectID, branchID, bucket, name)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute update query", err)
	}

	return err
}

// Delete removes a table catalog row.
func (r *PostgreSQLRepository) Delete(ctx context.Context, projectID, branchID, bucket, name string) error {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.delete_table")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return err
	}

	result, err := db.ExecContext(ctx,
		`DELETE FROM "table" WHERE project_id = $1 AND branch_id = $2 AND bucket = $3 AND name = $4`,
		projectID, branchID, bucket, name)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute delete query", err)
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get rows affected", err)
		return err
	}

	if rowsAffected == 0 {
		err := common.ValidateBusinessError(cn.ErrTableNotFound, reflect.TypeOf(mmodel.Table{}).Name())
		mopentelemetry.HandleSpanError(&span, "Failed to delete table. Rows affected is 0", err)

		return err
	}

	return nil
}
