// Package bucket implements the Postgres-backed store for buckets,
// including the single-hop link chasing the path resolver depends on.
package bucket

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

// Repository provides operations for bucket entities.
type Repository interface {
	Create(ctx context.Context, b *mmodel.Bucket) (*mmodel.Bucket, error)
	GetBucket(ctx context.Context, projectID, branchID, name string) (*mmodel.Bucket, error)
	FindAll(ctx context.Context, projectID, branchID, nameFilter string) ([]*mmodel.Bucket, error)
	Update(ctx context.Context, projectID, branchID, name string, b *mmodel.Bucket) (*mmodel.Bucket, error)
	Delete(ctx context.Context, projectID, branchID, name string) error
}

// PostgreSQLRepository is a Postgres-specific implementation of Repository.
type PostgreSQLRepository struct {
	connection *mpostgres.PostgresConnection
}

// NewPostgreSQLRepository returns a new PostgreSQLRepository using the given connection.
func NewPostgreSQLRepository(pc *mpostgres.PostgresConnection) *PostgreSQLRepository {
	return &PostgreSQLRepository{connection: pc}
}

// Model is the Postgres row shape for a bucket.
type Model struct {
	Name       string
	ProjectID  string
	BranchID   string
	Stage      string
	SharedWith []byte
	LinkedFrom []byte
	Metadata   []byte
	CreatedAt  time.Time
}

// FromEntity populates m from b.
func (m *Model) FromEntity(b *mmodel.Bucket) {
	m.Name = b.Name
	m.ProjectID = b.ProjectID
	m.BranchID = b.BranchID
	m.Stage = b.Stage
	m.CreatedAt = b.CreatedAt

	if b.SharedWith != nil {
		m.SharedWith, _ = json.Marshal(b.SharedWith)
	}

	if b.LinkedFrom != nil {
		m.LinkedFrom, _ = json.Marshal(b.LinkedFrom)
	}

	if b.Metadata != nil {
		m.Metadata, _ = json.Marshal(b.Metadata)
	}
}

// ToEntity converts m to its domain entity.
func (m *Model) ToEntity() *mmodel.Bucket {
	b := &mmodel.Bucket{Name: m.Name, ProjectID: m.ProjectID, BranchID: m.BranchID, Stage: m.Stage, CreatedAt: m.CreatedAt}

	if len(m.SharedWith) > 0 {
		_ = json.Unmarshal(m.SharedWith, &b.SharedWith)
	}

	if len(m.LinkedFrom) > 0 {
		b.LinkedFrom = &mmodel.BucketLink{}
		_ = json.Unmarshal(m.LinkedFrom, b.LinkedFrom)
	}

	if len(m.Metadata) > 0 {
		_ = json.Unmarshal(m.Metadata, &b.Metadata)
	}

	return b
}

// Create inserts a new bucket row.
func (r *PostgreSQLRepository) Create(ctx context.Context, b *mmodel.Bucket) (*mmodel.Bucket, error) {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.create_bucket")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return nil, err
	}

	record := &Model{}
	record.FromEntity(b)

	_, err = db.ExecContext(ctx,
		`INSERT INTO bucket (name, project_id, branch_id, stage, shared_with, linked_from, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		record.Name, record.ProjectID, record.BranchID, record.Stage, record.SharedWith, record.LinkedFrom, record.Metadata, record.CreatedAt)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute insert query", err)

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return nil, pgerr.ValidatePGError(pgErr, reflect.TypeOf(mmodel.Bucket{}).Name(), b.Name)
		}

		return nil, err
	}

	return record.ToEntity(), nil
}

// GetBucket retrieves a bucket by (project, branch, name) — the narrow
// read the path resolver uses to chase a single link hop.
func (r *PostgreSQLRepository) GetBucket(ctx context.Context, projectID, branchID, name string) (*mmodel.Bucket, error) {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.get_bucket")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return nil, err
	}

	record := &Model{}

	row := db.QueryRowContext(ctx,
		`SELECT name, project_id, branch_id, stage, shared_with, linked_from, metadata, created_at
		 FROM bucket WHERE project_id = $1 AND branch_id = $2 AND name = $3`,
		projectID, branchID, name)

	if err := row.Scan(&record.Name, &record.ProjectID, &record.BranchID, &record.Stage, &record.SharedWith, &record.LinkedFrom, &record.Metadata, &record.CreatedAt); err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to scan row", err)

		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ValidateBusinessError(cn.ErrBucketNotFound, reflect.TypeOf(mmodel.Bucket{}).Name())
		}

		return nil, err
	}

	return record.ToEntity(), nil
}

// FindAll lists every bucket in (project, branch), optionally narrowed to
// names matching nameFilter. The filter is accent-insensitive: searching
// "pais" also matches a bucket named "país".
func (r *PostgreSQLRepository) FindAll(ctx context.Context, projectID, branchID, nameFilter string) ([]*mmodel.Bucket, error) {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.find_all_buckets")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return nil, err
	}

	query := `SELECT name, project_id, branch_id, stage, shared_with, linked_from, metadata, created_at
	          FROM bucket WHERE project_id = $1 AND branch_id = $2`
	args := []any{projectID, branchID}

	if nameFilter != "" {
		query += " AND name ~* $3"
		args = append(args, mpostgres.RegexIgnoreAccents(regexp.QuoteMeta(nameFilter)))
	}

	query += " ORDER BY created_at"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute query", err)
		return nil, err
	}
	defer rows.Close()

	var buckets []*mmodel.Bucket

	for rows.Next() {
		record := &Model{}
		if err := rows.Scan(&record.Name, &record.ProjectID, &record.BranchID, &record.Stage, &record.SharedWith, &record.LinkedFrom, &record.Metadata, &record.CreatedAt); err != nil {
			mopentelemetry.HandleSpanError(&span, "Failed to scan row", err)
			return nil, err
		}

		buckets = append(buckets, record.ToEntity())
	}

	return buckets, rows.Err()
}

// Update patches a bucket's sharedWith/metadata.
func (r *PostgreSQLRepository) Update(ctx context.Context, projectID, branchID, name string, b *mmodel.Bucket) (*mmodel.Bucket, error) {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.update_bucket")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return nil, err
	}

	record := &Model{}
	record.FromEntity(b)

	result, err := db.ExecContext(ctx,
		`UPDATE bucket SET shared_with = $1, metadata = $2 WHERE project_id = $3 AND branch_id = $4 AND name = $5`,
		record.SharedWith, record.Metadata, projectID, branchID, name)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute update query", err)
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get rows affected", err)
		return nil, err
	}

	if rowsAffected == 0 {
		err := common.ValidateBusinessError(cn.ErrBucketNotFound, reflect.TypeOf(mmodel.Bucket{}).Name())
		mopentelemetry.HandleSpanError(&span, "Failed to update bucket. Rows affected is 0", err)

		return nil, err
	}

	record.Name, record.ProjectID, record.BranchID = name, projectID, branchID

	return record.ToEntity(), nil
}

// Delete removes a bucket row. Callers must verify the bucket holds no
// tables before calling this (ErrBucketNotEmpty).
func (r *PostgreSQLRepository) Delete(ctx context.Context, projectID, branchID, name string) error {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.delete_bucket")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return err
	}

	result, err := db.ExecContext(ctx, `DELETE FROM bucket WHERE project_id = $1 AND branch_id = $2 AND name = $3`, projectID, branchID, name)
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
		err := common.ValidateBusinessError(cn.ErrBucketNotFound, reflect.TypeOf(mmodel.Bucket{}).Name())
		mopentelemetry.HandleSpanError(&span, "Failed to delete bucket. Rows affected is 0", err)

		return err
	}

	return nil
}
